package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"press-inventory/internal/ledger"

	"github.com/google/subcommands"
)

type verifyCmd struct {
	repair bool
}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "compare the stock snapshot with the ledger" }
func (*verifyCmd) Usage() string {
	return `verify [-repair]

  Recomputes every stock entry from the transactions and reports the entries
  that differ from the stored snapshot. Exits with status 1 when they differ,
  unless -repair is given, in which case the snapshot is rebuilt.
`
}

func (c *verifyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.repair, "repair", false, "rebuild the snapshot when it diverges")
}

func (c *verifyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, _, err := openEngine()
	if err != nil {
		return fail("%v", err)
	}
	return c.run(engine)
}

func (c *verifyCmd) run(engine *ledger.Engine) subcommands.ExitStatus {
	if c.repair {
		repaired, err := engine.Repair()
		if err != nil {
			return fail("%v", err)
		}
		printMismatches(repaired)
		if len(repaired) > 0 {
			fmt.Printf("rebuilt snapshot, %d entries repaired\n", len(repaired))
		} else {
			fmt.Println("stock snapshot is consistent")
		}
		return subcommands.ExitSuccess
	}

	err := engine.Check()
	var cerr *ledger.ConsistencyError
	if errors.As(err, &cerr) {
		printMismatches(cerr.Mismatches)
		return subcommands.ExitFailure
	}
	if err != nil {
		return fail("%v", err)
	}
	fmt.Println("stock snapshot is consistent")
	return subcommands.ExitSuccess
}

func printMismatches(ms []ledger.Mismatch) {
	for _, m := range ms {
		fmt.Printf("%-40s snapshot=%s ledger=%s\n", m.Key, m.Snapshot, m.Ledger)
	}
}

type rebuildCmd struct{}

func (*rebuildCmd) Name() string     { return "rebuild" }
func (*rebuildCmd) Synopsis() string { return "recompute the whole stock snapshot from the ledger" }
func (*rebuildCmd) Usage() string {
	return `rebuild

  Unconditionally recomputes every stock entry from the transactions.
`
}

func (*rebuildCmd) SetFlags(*flag.FlagSet) {}

func (*rebuildCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, _, err := openEngine()
	if err != nil {
		return fail("%v", err)
	}
	entries, err := engine.Rebuild()
	if err != nil {
		return fail("%v", err)
	}
	fmt.Printf("rebuilt %d stock entries\n", len(entries))
	return subcommands.ExitSuccess
}
