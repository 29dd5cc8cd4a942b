package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/auth"
	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/tui"
)

func (a *app) signupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a new user",
		Long: `Create a new ledger user. The password is read from LEDGER_PASSWORD,
an interactive prompt, or the first line of standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			creds, err := a.credentials(cmd, tui.ModeSignup)
			if err != nil {
				return err
			}

			store, err := a.initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			svc, err := a.authService(store)
			if err != nil {
				return err
			}

			if err := svc.CreateUser(ctx, creds.Username, creds.Password); err != nil {
				switch {
				case errors.Is(err, common.ErrDuplicateEntry):
					return common.NewUserError(fmt.Sprintf("User %q already exists", creds.Username), err)
				case errors.Is(err, auth.ErrEmptyPassword):
					return common.NewUserError("Password cannot be empty", err)
				}
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created user %s", creds.Username)))
			return nil
		},
	}

	addUserFlag(cmd)
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check a username and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, sess, err := a.session(cmd)
			if err != nil {
				return err
			}
			defer closeStore(store)

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Logged in as %s", sess.UserID)))
			return nil
		},
	}

	addUserFlag(cmd)
	return cmd
}
