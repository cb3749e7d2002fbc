package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/storage/database"
)

var (
	openDBFunc  = database.Open          // mockable
	migrateFunc = database.RunMigrations // mockable

	errNoSQLEngine = errors.New("migrations need a postgres or sqlite database")
)

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose migration command (up, down, status, redo, version...)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.migrate(cmd, args)
		},
	}
}

func (cli *commandLine) migrate(cmd *cobra.Command, args []string) error {
	if cli.conf.Database.Engine == core.EngineMemory {
		return errNoSQLEngine
	}
	if err := database.CreateIfNotExist(cli.conf); err != nil {
		return err
	}
	db, err := openDBFunc(cli.conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return migrateFunc(cmd.Context(), db, args[0], args[1:]...)
}
