package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func (a *app) transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Record and list transactions",
	}

	cmd.AddCommand(a.listTransactionsCmd())
	cmd.AddCommand(a.addTransactionCmd())

	return cmd
}

func (a *app) listTransactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, sess, err := a.session(cmd)
			if err != nil {
				return err
			}
			defer closeStore(store)

			transactions, err := store.ListTransactions(cmd.Context(), sess.UserID)
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTransactions(transactions))
			return nil
		},
	}

	addUserFlag(cmd)
	return cmd
}

func (a *app) addTransactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Record a transaction",
		Example: `  ledger transactions add --category Groceries --amount 42.10 --date 2024-01-15 --description "Weekly shop" --user alice`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			category, _ := cmd.Flags().GetString("category")
			amountFlag, _ := cmd.Flags().GetString("amount")
			dateFlag, _ := cmd.Flags().GetString("date")
			description, _ := cmd.Flags().GetString("description")

			amount, err := parseAmount(amountFlag)
			if err != nil {
				return err
			}
			date, err := parseDate(dateFlag, today())
			if err != nil {
				return err
			}

			store, sess, err := a.session(cmd)
			if err != nil {
				return err
			}
			defer closeStore(store)

			txn, err := store.AddTransaction(cmd.Context(), sess.UserID, category, amount, date, description)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("Category %q not found", category), err)
				}
				return fmt.Errorf("failed to add transaction: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s in %s on %s",
				cli.FormatAmount(*txn), txn.CategoryName, model.FormatDate(txn.Date))))
			return nil
		},
	}

	cmd.Flags().StringP("category", "c", "", "category to record the transaction under")
	cmd.Flags().StringP("amount", "a", "", "amount, greater than zero")
	cmd.Flags().StringP("date", "d", "", "date as YYYY-MM-DD (default: today)")
	cmd.Flags().String("description", "", "free-form description")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	addUserFlag(cmd)
	return cmd
}
