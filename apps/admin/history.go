package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/rastreio/core/history"
)

func (cli *commandLine) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "history requirement|metamodel ID",
		Short:     "Print the change history of a requirement or a meta-model, newest first",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{history.EntityRequirement, history.EntityMetaModel},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.history(cmd, args[0], args[1])
		},
	}
}

func (cli *commandLine) history(cmd *cobra.Command, entity, id string) error {
	return cli.invoke(func(d deps) error {
		var recs []history.Record
		var err error
		switch entity {
		case history.EntityRequirement:
			recs, err = d.ReqSvc.RequirementHistory(cmd.Context(), id)
		case history.EntityMetaModel:
			recs, err = d.MMSvc.MetaModelHistory(cmd.Context(), id)
		default:
			return errors.Errorf("unknown entity %q", entity)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, rec := range recs {
			fmt.Fprintf(out, "%s %s %s %s\n", rec.ChangedAt.Format(time.RFC3339), rec.Type, rec.ID, rec.Snapshot)
		}
		return nil
	})
}
