package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
)

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the ledger database",
		Long:  `Apply any pending schema migrations. Running it on an up-to-date database does nothing.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			schemaVersion, err := store.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Database %s is at schema version %d", a.cfg.DatabasePath, schemaVersion)))
			return nil
		},
	}
}
