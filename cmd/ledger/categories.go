package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage income and expense categories",
		Long:  `List, add, and delete the categories your transactions are recorded under.`,
	}

	cmd.AddCommand(a.listCategoriesCmd())
	cmd.AddCommand(a.addCategoryCmd())
	cmd.AddCommand(a.deleteCategoryCmd())

	return cmd
}

func (a *app) listCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, sess, err := a.session(cmd)
			if err != nil {
				return err
			}
			defer closeStore(store)

			categories, err := store.ListCategories(cmd.Context(), sess.UserID)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCategories(categories))
			return nil
		},
	}

	addUserFlag(cmd)
	return cmd
}

func (a *app) addCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Example: `  ledger categories add Salary --type income --user alice
  ledger categories add Groceries --type expense --user alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typeFlag, _ := cmd.Flags().GetString("type")
			categoryType, err := model.ParseCategoryType(typeFlag)
			if err != nil {
				return common.NewUserError("Category type must be income or expense", err)
			}

			store, sess, err := a.session(cmd)
			if err != nil {
				return err
			}
			defer closeStore(store)

			category, err := store.AddCategory(cmd.Context(), sess.UserID, args[0], categoryType)
			if err != nil {
				if errors.Is(err, common.ErrDuplicateEntry) {
					return common.NewUserError(fmt.Sprintf("Category %q already exists", args[0]), err)
				}
				return fmt.Errorf("failed to add category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s category %s", category.Type, category.Name)))
			return nil
		},
	}

	cmd.Flags().StringP("type", "t", "", "category type: income or expense")
	_ = cmd.MarkFlagRequired("type")
	addUserFlag(cmd)
	return cmd
}

func (a *app) deleteCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category",
		Long: `Delete a category. Its transactions are kept but no longer listed or
summarized. Categories that still have transactions are refused unless
--force is given or categories.guard_deletes is off.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			if force {
				a.cfg.GuardDeletes = false
			}

			store, sess, err := a.session(cmd)
			if err != nil {
				return err
			}
			defer closeStore(store)

			name := args[0]
			if force && stdinIsTerminal(cmd.InOrStdin()) {
				confirmed, err := confirmForcedDelete(cmd, store, sess.UserID, name)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Delete canceled"))
					return nil
				}
			}

			if err := store.SoftDeleteCategory(cmd.Context(), sess.UserID, name); err != nil {
				switch {
				case errors.Is(err, common.ErrNotFound):
					return common.NewUserError(fmt.Sprintf("Category %q not found", name), err)
				case errors.Is(err, common.ErrIntegrityViolation):
					count, countErr := store.CountTransactionsByCategory(cmd.Context(), sess.UserID, name)
					if countErr != nil {
						return fmt.Errorf("failed to delete category: %w", err)
					}
					return common.NewUserError(
						fmt.Sprintf("Category %q still has %d transaction(s); use --force to delete it anyway", name, count), err)
				}
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %s", name)))
			return nil
		},
	}

	cmd.Flags().BoolP("force", "f", false, "delete even if transactions reference the category")
	addUserFlag(cmd)
	return cmd
}

// confirmForcedDelete asks before a forced delete hides a live category's
// transactions. Categories without transactions need no confirmation.
func confirmForcedDelete(cmd *cobra.Command, store service.Storage, userID, name string) (bool, error) {
	ctx := cmd.Context()

	category, err := store.GetCategory(ctx, userID, name)
	if err != nil {
		return false, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return true, nil
	}

	count, err := store.CountTransactionsByCategory(ctx, userID, name)
	if err != nil {
		return false, fmt.Errorf("failed to count transactions: %w", err)
	}
	if count == 0 {
		return true, nil
	}

	prompt := fmt.Sprintf("Category %q has %d transaction(s) that will no longer be listed. Delete it?", name, count)
	return cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), cmd.OutOrStdout(), prompt)
}
