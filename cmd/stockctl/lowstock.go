package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"press-inventory/internal/ledger"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type lowStockCmd struct {
	threshold string
}

func (*lowStockCmd) Name() string     { return "lowstock" }
func (*lowStockCmd) Synopsis() string { return "list stock entries below a threshold" }
func (*lowStockCmd) Usage() string {
	return `lowstock [-t <threshold>]

  Lists the entries whose remaining quantity is strictly below the threshold,
  lowest first. Defaults to LOW_STOCK_THRESHOLD.
`
}

func (c *lowStockCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.threshold, "t", "", "threshold quantity")
}

func (c *lowStockCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, cfg, err := openEngine()
	if err != nil {
		return fail("%v", err)
	}
	threshold := cfg.LowStockThreshold
	if c.threshold != "" {
		if threshold, err = decimal.NewFromString(c.threshold); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid threshold %q\n", c.threshold)
			return subcommands.ExitUsageError
		}
	}
	return c.run(engine, threshold)
}

func (c *lowStockCmd) run(engine *ledger.Engine, threshold decimal.Decimal) subcommands.ExitStatus {
	entries, err := engine.Query.LowStock(threshold)
	if err != nil {
		return fail("%v", err)
	}
	if len(entries) == 0 {
		fmt.Printf("no entries below %s\n", threshold)
		return subcommands.ExitSuccess
	}
	for _, e := range entries {
		fmt.Printf("%-40s %s\n", e.Key(), e.RemainingQty)
	}
	return subcommands.ExitSuccess
}
