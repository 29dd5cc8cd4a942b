package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/ofx"
	"github.com/Veraticus/spice-ledger/internal/service"
)

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from bank exports",
	}

	cmd.AddCommand(a.importOFXCmd())
	return cmd
}

func (a *app) importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ofx <files...>",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import statement lines from OFX or QFX files exported from your bank.

Credits are recorded under --income-category and debits under
--expense-category. Both categories must already exist with the matching
type. All files are imported in one database transaction, so an error or
interrupt leaves the ledger unchanged.`,
		Example: `  # Import single file
  ledger import ofx ~/Downloads/checking_jan.qfx --income-category Salary --expense-category Spending -u alice

  # Import all QFX files in a directory
  ledger import ofx ~/Downloads/*.qfx --income-category Salary --expense-category Spending -u alice`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImportOFX(cmd, args)
		},
	}

	cmd.Flags().String("income-category", "", "Income category for credits")
	cmd.Flags().String("expense-category", "", "Expense category for debits")
	cmd.Flags().BoolP("dry-run", "n", false, "Preview import without saving")
	_ = cmd.MarkFlagRequired("income-category")
	_ = cmd.MarkFlagRequired("expense-category")
	addUserFlag(cmd)
	return cmd
}

func (a *app) runImportOFX(cmd *cobra.Command, args []string) error {
	incomeName, _ := cmd.Flags().GetString("income-category")
	expenseName, _ := cmd.Flags().GetString("expense-category")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	parser, err := ofx.NewParser(ofx.CategoryMapping{Income: incomeName, Expense: expenseName})
	if err != nil {
		return common.NewUserError("Both --income-category and --expense-category are required", err)
	}

	store, sess, err := a.session(cmd)
	if err != nil {
		return err
	}
	defer closeStore(store)

	ctx := cmd.Context()
	if err := requireCategory(ctx, store, sess.UserID, incomeName, model.CategoryTypeIncome); err != nil {
		return err
	}
	if err := requireCategory(ctx, store, sess.UserID, expenseName, model.CategoryTypeExpense); err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(out, "Import")
	ctx = handler.HandleInterrupts(ctx, "No transactions were recorded.")
	defer handler.Stop()

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	bar := cli.NewProgressBar(out, len(files), "Parsing statements...")
	var transactions []model.Transaction
	skipped := 0
	for _, path := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		stmt, err := parseOFXFile(ctx, parser, path)
		if err != nil {
			return err
		}
		transactions = append(transactions, stmt.Transactions...)
		skipped += stmt.Skipped

		slog.Debug("Parsed statement file",
			"file", path,
			"accounts", stmt.Accounts,
			"transactions", len(stmt.Transactions))
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	if len(transactions) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No transactions found to import"))
		return nil
	}

	if dryRun {
		fmt.Fprintln(out, cli.RenderTransactions(transactions))
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transaction(s) would be imported, %d skipped", len(transactions), skipped)))
		return nil
	}

	count, err := store.AddTransactions(ctx, sess.UserID, transactions)
	if err != nil {
		if handler.WasInterrupted() {
			return common.NewUserError("Import interrupted", err)
		}
		return fmt.Errorf("failed to import transactions: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transaction(s) from %d file(s), %d skipped", count, len(files), skipped)))
	return nil
}

func parseOFXFile(ctx context.Context, parser *ofx.Parser, path string) (*ofx.Statement, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied import path
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	stmt, err := parser.ParseFile(ctx, f)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Could not read %s as OFX", filepath.Base(path)), err)
	}
	return stmt, nil
}

// requireCategory checks that name is one of the user's live categories of
// the wanted type.
func requireCategory(ctx context.Context, store service.CategoryLedger, userID, name string, want model.CategoryType) error {
	category, err := store.GetCategory(ctx, userID, name)
	if err != nil {
		return fmt.Errorf("failed to look up category %s: %w", name, err)
	}
	if category == nil {
		return common.NewUserError(fmt.Sprintf("Category %q not found", name), common.ErrNotFound)
	}
	if category.Type != want {
		return common.NewUserError(fmt.Sprintf("Category %q is an %s category, expected %s", name, category.Type, want), common.ErrInvalidConfig)
	}
	return nil
}

// expandFiles resolves globs, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, common.NewUserError("No files found to import", common.ErrNotFound)
	}
	return files, nil
}
