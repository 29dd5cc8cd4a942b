package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// defaultSummaryDays is how far back summary looks without --from.
const defaultSummaryDays = 7

func (a *app) summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total income and expenses over a date range",
		Long: `Total income and expenses for transactions dated within an inclusive
range. Without flags the range is the last 7 days through today.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fromFlag, _ := cmd.Flags().GetString("from")
			toFlag, _ := cmd.Flags().GetString("to")

			end, err := parseDate(toFlag, today())
			if err != nil {
				return err
			}
			start, err := parseDate(fromFlag, end.AddDate(0, 0, -defaultSummaryDays))
			if err != nil {
				return err
			}
			if start.After(end) {
				return common.NewUserError(fmt.Sprintf("--from %s is after --to %s",
					model.FormatDate(start), model.FormatDate(end)), nil)
			}

			store, sess, err := a.session(cmd)
			if err != nil {
				return err
			}
			defer closeStore(store)

			summary, err := store.Summarize(cmd.Context(), sess.UserID, start, end)
			if err != nil {
				return fmt.Errorf("failed to summarize: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSummary(summary))
			return nil
		},
	}

	cmd.Flags().String("from", "", "first date to include, YYYY-MM-DD (default: 7 days before --to)")
	cmd.Flags().String("to", "", "last date to include, YYYY-MM-DD (default: today)")
	addUserFlag(cmd)
	return cmd
}
