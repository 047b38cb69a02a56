package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"press-inventory/internal/importfile"
	"press-inventory/internal/ledger"
	"press-inventory/internal/models"

	"github.com/google/subcommands"
)

type importCmd struct {
	file            string
	category        string
	requireSupplier bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "merge a spreadsheet of movements into the ledger" }
func (*importCmd) Usage() string {
	return `import -f <file.csv|file.xlsx> [-category <category>] [-require-supplier]

  Validates every row, records the valid ones as one batch and recomputes the
  stock of the touched entries. Invalid rows are listed and skipped. Importing
  the same file twice records its movements twice.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "spreadsheet to import (.csv or .xlsx)")
	f.StringVar(&c.category, "category", "", "category of the rows when the sheet has no category column")
	f.BoolVar(&c.requireSupplier, "require-supplier", false, "require a supplier column")
}

func (c *importCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -f is required.")
		return subcommands.ExitUsageError
	}
	engine, _, err := openEngine()
	if err != nil {
		return fail("%v", err)
	}
	return c.run(engine)
}

func (c *importCmd) run(engine *ledger.Engine) subcommands.ExitStatus {
	opts := importfile.Options{RequireSupplier: c.requireSupplier}
	if c.category != "" {
		cat, err := models.ParseCategory(c.category)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		opts.DefaultCategory = cat
	}

	f, err := os.Open(c.file)
	if err != nil {
		return fail("%v", err)
	}
	defer f.Close()

	rows, err := importfile.Parse(c.file, f, opts)
	if err != nil {
		return fail("reading %s: %v", c.file, err)
	}
	res, err := engine.Import(cliSession, rows)
	if err != nil {
		return fail("%v", err)
	}

	for _, r := range res.Rejected {
		fmt.Printf("row %d rejected: %s\n", r.Row, r.Reason)
	}
	fmt.Printf("batch %s: %d rows imported, %d rejected\n", res.BatchID, len(res.Accepted), len(res.Rejected))
	for _, e := range res.Stock {
		fmt.Printf("%-40s %s\n", e.Key(), e.RemainingQty)
	}
	return subcommands.ExitSuccess
}
