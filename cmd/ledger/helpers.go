package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Veraticus/spice-ledger/internal/auth"
	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/storage"
	"github.com/Veraticus/spice-ledger/internal/tui"
)

// initStorage opens the configured database and brings its schema up to date.
func (a *app) initStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(a.cfg.DatabasePath, storage.WithDeleteGuard(a.cfg.GuardDeletes))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (a *app) authService(users service.UserStore) (*auth.Service, error) {
	hasher, err := auth.NewHasher(a.cfg.Hasher, a.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	return auth.NewService(users, hasher), nil
}

// credentials resolves the username and password for a command. The
// password comes from LEDGER_PASSWORD when set, from the interactive prompt
// when stdin is a terminal, and otherwise from the first line of stdin.
func (a *app) credentials(cmd *cobra.Command, mode tui.Mode) (tui.Credentials, error) {
	username, _ := cmd.Flags().GetString("user")
	username = strings.TrimSpace(username)

	if password := a.v.GetString("password"); password != "" {
		if username == "" {
			return tui.Credentials{}, common.NewUserError("--user is required when LEDGER_PASSWORD is set", common.ErrNotAuthenticated)
		}
		return tui.Credentials{Username: username, Password: password}, nil
	}

	in := cmd.InOrStdin()
	if stdinIsTerminal(in) {
		creds, err := tui.PromptCredentials(cmd.Context(), in, cmd.OutOrStdout(), mode, username)
		if errors.Is(err, tui.ErrPromptCanceled) {
			return tui.Credentials{}, common.NewUserError("Canceled", err)
		}
		return creds, err
	}

	if username == "" {
		return tui.Credentials{}, common.NewUserError("--user is required", common.ErrNotAuthenticated)
	}
	return tui.Credentials{Username: username, Password: readPasswordLine(cmd.Context(), in)}, nil
}

// stdinIsTerminal reports whether the command input is an interactive
// terminal. Tests replace it to drive the interactive paths.
var stdinIsTerminal = func(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func readPasswordLine(ctx context.Context, in io.Reader) string {
	line, err := cli.NewNonBlockingReader(in).ReadLine(ctx)
	if err != nil {
		return ""
	}
	return line
}

// session authenticates the caller and returns the open storage along with
// the session. The caller closes the storage.
func (a *app) session(cmd *cobra.Command) (service.Storage, *auth.Session, error) {
	ctx := cmd.Context()

	creds, err := a.credentials(cmd, tui.ModeLogin)
	if err != nil {
		return nil, nil, err
	}

	store, err := a.initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	svc, err := a.authService(store)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	sess, err := svc.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		_ = store.Close()
		if errors.Is(err, common.ErrInvalidCredentials) {
			return nil, nil, common.NewUserError("Invalid username or password", err)
		}
		return nil, nil, err
	}

	return store, sess, nil
}

func addUserFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("user", "u", "", "username to act as")
}

// parseAmount parses a strictly positive, finite amount.
func parseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, common.NewUserError(fmt.Sprintf("Invalid amount %q", s), err)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, common.NewUserError("Amount must be greater than zero", storage.ErrInvalidTransaction)
	}
	return amount, nil
}

// parseDate parses a YYYY-MM-DD date, falling back to def when s is empty.
func parseDate(s string, def time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	d, err := model.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", s), err)
	}
	return d, nil
}

// today returns the current local date at midnight UTC so it compares
// cleanly with parsed dates.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func closeStore(store service.Storage) {
	_ = store.Close()
}
