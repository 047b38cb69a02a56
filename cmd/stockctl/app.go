package main

import (
	"flag"
	"fmt"
	"os"

	"press-inventory/internal/config"
	"press-inventory/internal/database"
	"press-inventory/internal/ledger"
	"press-inventory/internal/logger"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

// as a short lived CLI, the connection flags are global.
var (
	driverFlag = flag.String("driver", "", "database driver (postgres, mysql, sqlite); defaults to DATABASE_DRIVER")
	dsnFlag    = flag.String("dsn", "", "database connection string; defaults to DATABASE_DSN")
	verbose    = flag.Bool("v", false, "log debug output to stderr")
)

// cliSession is recorded as the author of every mutation made by stockctl.
var cliSession = ledger.Session{UserName: "stockctl"}

func register(c *subcommands.Commander) {
	c.Register(&verifyCmd{}, "stock")
	c.Register(&rebuildCmd{}, "stock")
	c.Register(&lowStockCmd{}, "stock")
	c.Register(&importCmd{}, "ledger")
	c.Register(&exportCmd{}, "ledger")
}

// loadConfig reads the environment (and an optional .env file) then applies
// the command line overrides. The JWT settings are not needed here, so the
// config is not validated as a whole.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if *driverFlag != "" {
		cfg.DatabaseDriver = *driverFlag
	}
	if *dsnFlag != "" {
		cfg.DatabaseDSN = *dsnFlag
	}
	return cfg, nil
}

func openEngine() (*ledger.Engine, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger.InitTo(os.Stderr, level)
	cfg.LogLevel = level

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return ledger.NewEngine(db), cfg, nil
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
