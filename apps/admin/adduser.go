package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/user"
)

func (cli *commandLine) addUserCmd() *cobra.Command {
	var name, uname, email string
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or update the user with this username",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.addUser(cmd, name, uname, email)
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "the user's username")
	cmd.Flags().StringVar(&email, "email", "", "the user's email")
	cmd.Flags().StringVar(&name, "name", "", "the user's full name (defaults to the username)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(cmd *cobra.Command, name, uname, email string) error {
	if core.CleanString(name) == "" {
		name = uname
	}
	return cli.invoke(func(d deps) error {
		ctx := cmd.Context()

		usr, err := d.UserSvc.GetByUsername(ctx, uname)
		switch {
		case err == nil:
			active := true
			if usr, err = d.UserSvc.Update(ctx, usr.ID, user.UpdateUser{Name: name, Email: email, IsActive: &active}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated user %s (%s)\n", usr.Username, usr.ID)
		case core.IsNotFound(err):
			if usr, err = d.UserSvc.Create(ctx, user.NewUser{Name: name, Username: uname, Email: email}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", usr.Username, usr.ID)
		default:
			return err
		}
		return nil
	})
}
