package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/carlschroedl/votelib/cmd/cli/commands"
	"github.com/carlschroedl/votelib/internal/config"
	"github.com/carlschroedl/votelib/pkg/postgres"
	"github.com/carlschroedl/votelib/pkg/utils/logging"
)

var (
	configPath string
	verbose    bool
	app        *commands.AppContext
	pgDB       *postgres.DB
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stv",
		Short: "STV Counter - tabulate single transferable vote elections",
		Long:  `A tool for counting ranked-choice (STV) elections with Hare or Gregory vote transfer.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if pgDB != nil {
				pgDB.Close()
			}
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: stv_config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log the round-by-round count to the console")

	app = &commands.AppContext{}
	rootCmd.AddCommand(commands.CountCmd(app))
	rootCmd.AddCommand(commands.TransferCmd(app))
	rootCmd.AddCommand(commands.ResultsCmd(app))
	rootCmd.AddCommand(commands.ValidateCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and, when configured, the database
func initApp() error {
	logger, err := logging.InitLogger(verbose)
	if err != nil {
		return err
	}
	app.Logger = logger
	app.Ctx = context.Background()

	if configPath != "" {
		app.Cfg, err = config.LoadFromPath(configPath)
	} else {
		app.Cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if app.Cfg.DatabaseURL != "" {
		pgDB, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := pgDB.RunMigrations(app.Ctx); err != nil {
			return err
		}
		app.Database = pgDB
	}

	return nil
}
