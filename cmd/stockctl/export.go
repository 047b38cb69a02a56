package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"press-inventory/internal/export"
	"press-inventory/internal/ledger"

	"github.com/google/subcommands"
)

type exportCmd struct {
	out   string
	stock bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the transactions or the stock to a spreadsheet" }
func (*exportCmd) Usage() string {
	return `export -o <file.csv|file.xlsx> [-stock]

  Writes every transaction, or the stock snapshot with -stock. The format
  follows the extension of the output file.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "", "output file (.csv or .xlsx)")
	f.BoolVar(&c.stock, "stock", false, "export the stock snapshot instead of the transactions")
}

func (c *exportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.out == "" {
		fmt.Fprintln(os.Stderr, "Error: -o is required.")
		return subcommands.ExitUsageError
	}
	engine, _, err := openEngine()
	if err != nil {
		return fail("%v", err)
	}
	return c.run(engine)
}

func (c *exportCmd) run(engine *ledger.Engine) subcommands.ExitStatus {
	xlsx := strings.EqualFold(filepath.Ext(c.out), ".xlsx")

	var buf bytes.Buffer
	var n int
	if c.stock {
		entries, err := engine.Query.Stock(nil)
		if err != nil {
			return fail("%v", err)
		}
		n = len(entries)
		if xlsx {
			err = export.WriteStockXLSX(&buf, entries)
		} else {
			err = export.WriteStockCSV(&buf, entries)
		}
		if err != nil {
			return fail("%v", err)
		}
	} else {
		txs, err := engine.Query.Filter(ledger.Criteria{})
		if err != nil {
			return fail("%v", err)
		}
		n = len(txs)
		if xlsx {
			err = export.WriteTransactionsXLSX(&buf, txs)
		} else {
			err = export.WriteTransactionsCSV(&buf, txs)
		}
		if err != nil {
			return fail("%v", err)
		}
	}

	if err := os.WriteFile(c.out, buf.Bytes(), 0644); err != nil {
		return fail("%v", err)
	}
	fmt.Printf("wrote %d records to %s\n", n, c.out)
	return subcommands.ExitSuccess
}
