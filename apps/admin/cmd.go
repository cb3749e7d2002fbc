package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/history"
	"github.com/trezcool/rastreio/core/metamodel"
	"github.com/trezcool/rastreio/core/requirement"
	"github.com/trezcool/rastreio/core/user"
)

type (
	commandLine struct {
		conf      *core.Config
		container *dig.Container
		out       io.Writer
	}

	// deps are resolved from the container on each command.
	deps struct {
		dig.In
		Tx           core.Transactor
		Users        user.Repository
		Requirements requirement.Repository
		MetaModels   metamodel.Repository
		History      history.Repository
		UserSvc      *user.Service
		ReqSvc       *requirement.Service
		MMSvc        *metamodel.Service
	}
)

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         cli.conf.AppName + " administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(cli.out)
	root.AddCommand(
		cli.migrateCmd(),
		cli.addUserCmd(),
		cli.loadDataCmd(),
		cli.dumpDataCmd(),
		cli.historyCmd(),
	)
	return root
}

// run executes the command named by args, without the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

// invoke runs fn with the dependencies of the configured storage.
func (cli *commandLine) invoke(fn func(d deps) error) error {
	return cli.container.Invoke(fn)
}
