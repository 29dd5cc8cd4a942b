package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
)

type ledgerCLI struct {
	t      *testing.T
	dbPath string
}

func newLedgerCLI(t *testing.T) *ledgerCLI {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("LEDGER_AUTH_BCRYPT_COST", "4")
	t.Setenv("LEDGER_PASSWORD", "")
	return &ledgerCLI{t: t, dbPath: filepath.Join(dir, "ledger.db")}
}

// run executes one ledger invocation with stdin as the password source.
func (c *ledgerCLI) run(stdin string, args ...string) (string, error) {
	c.t.Helper()

	var out bytes.Buffer
	root := newRootCmd(viper.New())
	root.SetArgs(append([]string{"--db", c.dbPath, "--log-level", "error"}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)

	err := root.Execute()
	return out.String(), err
}

func (c *ledgerCLI) mustRun(stdin string, args ...string) string {
	c.t.Helper()
	out, err := c.run(stdin, args...)
	require.NoError(c.t, err, out)
	return out
}

func TestVersionCmd(t *testing.T) {
	c := newLedgerCLI(t)
	out := c.mustRun("", "version")
	assert.Contains(t, out, "ledger dev")
}

func TestMigrateCmd(t *testing.T) {
	c := newLedgerCLI(t)

	out := c.mustRun("", "migrate")
	assert.Contains(t, out, "schema version 2")
	_, err := os.Stat(c.dbPath)
	require.NoError(t, err)

	// Idempotent
	out = c.mustRun("", "migrate")
	assert.Contains(t, out, "schema version 2")
}

func TestSignupAndLogin(t *testing.T) {
	c := newLedgerCLI(t)

	out := c.mustRun("pw1\n", "signup", "--user", "alice")
	assert.Contains(t, out, "Created user alice")

	_, err := c.run("other\n", "signup", "--user", "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
	assert.Contains(t, common.UserMessage(err), "already exists")

	out = c.mustRun("pw1\n", "login", "--user", "alice")
	assert.Contains(t, out, "Logged in as alice")

	_, err = c.run("wrong\n", "login", "--user", "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = c.run("pw1\n", "login", "--user", "nobody")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestSignupRequiresUserAndPassword(t *testing.T) {
	c := newLedgerCLI(t)

	_, err := c.run("pw1\n", "signup")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	_, err = c.run("", "signup", "--user", "alice")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "Password cannot be empty")
}

func TestPasswordFromEnvironment(t *testing.T) {
	c := newLedgerCLI(t)
	t.Setenv("LEDGER_PASSWORD", "pw1")

	c.mustRun("", "signup", "-u", "alice")
	out := c.mustRun("", "login", "-u", "alice")
	assert.Contains(t, out, "Logged in as alice")
}

func TestLedgerWorkflow(t *testing.T) {
	c := newLedgerCLI(t)
	c.mustRun("pw1\n", "signup", "-u", "alice")

	out := c.mustRun("pw1\n", "categories", "add", "Salary", "--type", "income", "-u", "alice")
	assert.Contains(t, out, "Added Income category Salary")
	c.mustRun("pw1\n", "categories", "add", "Food", "--type", "Expense", "-u", "alice")

	_, err := c.run("pw1\n", "categories", "add", "Food", "--type", "expense", "-u", "alice")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	out = c.mustRun("pw1\n", "categories", "list", "-u", "alice")
	assert.Contains(t, out, "Salary")
	assert.Contains(t, out, "Food")

	c.mustRun("pw1\n", "transactions", "add", "-c", "Salary", "-a", "1000", "-d", "2024-01-01", "-u", "alice")
	out = c.mustRun("pw1\n", "tx", "add", "-c", "Food", "-a", "500", "-d", "2024-01-15", "--description", "Groceries", "-u", "alice")
	assert.Contains(t, out, "-500.00")

	out = c.mustRun("pw1\n", "transactions", "list", "-u", "alice")
	assert.Contains(t, out, "+1000.00")
	assert.Contains(t, out, "-500.00")
	assert.Contains(t, out, "Groceries")
	assert.Less(t, strings.Index(out, "2024-01-15"), strings.Index(out, "2024-01-01"), "newest first")

	out = c.mustRun("pw1\n", "summary", "--from", "2024-01-01", "--to", "2024-01-31", "-u", "alice")
	assert.Contains(t, out, "1000.00")
	assert.Contains(t, out, "500.00")
	assert.Contains(t, out, "Transactions:  2")

	out = c.mustRun("pw1\n", "summary", "--from", "2024-01-02", "--to", "2024-01-31", "-u", "alice")
	assert.Contains(t, out, "Transactions:  1")

	// Guarded by default while transactions reference the category.
	_, err = c.run("pw1\n", "categories", "delete", "Food", "-u", "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrIntegrityViolation)
	assert.Contains(t, common.UserMessage(err), "still has 1 transaction(s)")

	out = c.mustRun("pw1\n", "categories", "delete", "Food", "--force", "-u", "alice")
	assert.Contains(t, out, "Deleted category Food")

	out = c.mustRun("pw1\n", "transactions", "list", "-u", "alice")
	assert.NotContains(t, out, "Groceries")

	// Deleting again is a no-op; unknown names are still reported.
	out = c.mustRun("pw1\n", "categories", "delete", "Food", "--force", "-u", "alice")
	assert.Contains(t, out, "Deleted category Food")
	_, err = c.run("pw1\n", "categories", "delete", "Rent", "-u", "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestForcedDeleteAsksOnTerminal(t *testing.T) {
	c := newLedgerCLI(t)
	t.Setenv("LEDGER_PASSWORD", "pw1")

	c.mustRun("", "signup", "-u", "alice")
	c.mustRun("", "categories", "add", "Food", "--type", "expense", "-u", "alice")
	c.mustRun("", "categories", "add", "Unused", "--type", "expense", "-u", "alice")
	c.mustRun("", "tx", "add", "-c", "Food", "-a", "12", "-d", "2024-01-15", "-u", "alice")

	original := stdinIsTerminal
	stdinIsTerminal = func(io.Reader) bool { return true }
	t.Cleanup(func() { stdinIsTerminal = original })

	out := c.mustRun("n\n", "categories", "delete", "Food", "--force", "-u", "alice")
	assert.Contains(t, out, "has 1 transaction(s)")
	assert.Contains(t, out, "Delete canceled")
	assert.Contains(t, c.mustRun("", "categories", "list", "-u", "alice"), "Food")

	// No input counts as no.
	out = c.mustRun("", "categories", "delete", "Food", "--force", "-u", "alice")
	assert.Contains(t, out, "Delete canceled")

	out = c.mustRun("yes\n", "categories", "delete", "Food", "--force", "-u", "alice")
	assert.Contains(t, out, "Deleted category Food")
	assert.NotContains(t, c.mustRun("", "categories", "list", "-u", "alice"), "Food")

	// Nothing to lose, nothing to ask.
	out = c.mustRun("", "categories", "delete", "Unused", "--force", "-u", "alice")
	assert.NotContains(t, out, "[y/N]")
	assert.Contains(t, out, "Deleted category Unused")
}

func TestUsersAreIsolated(t *testing.T) {
	c := newLedgerCLI(t)
	c.mustRun("pw1\n", "signup", "-u", "alice")
	c.mustRun("pw2\n", "signup", "-u", "bob")
	c.mustRun("pw1\n", "categories", "add", "Salary", "--type", "income", "-u", "alice")

	out := c.mustRun("pw2\n", "categories", "list", "-u", "bob")
	assert.NotContains(t, out, "Salary")

	_, err := c.run("pw2\n", "tx", "add", "-c", "Salary", "-a", "10", "-u", "bob")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAddTransactionValidation(t *testing.T) {
	c := newLedgerCLI(t)
	c.mustRun("pw1\n", "signup", "-u", "alice")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "negative amount", args: []string{"-a", "-5"}, want: "greater than zero"},
		{name: "zero amount", args: []string{"-a", "0"}, want: "greater than zero"},
		{name: "not a number", args: []string{"-a", "ten"}, want: "Invalid amount"},
		{name: "bad date", args: []string{"-a", "5", "-d", "01/15/2024"}, want: "Invalid date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"tx", "add", "-c", "Food", "-u", "alice"}, tt.args...)
			_, err := c.run("pw1\n", args...)
			require.Error(t, err)
			assert.Contains(t, common.UserMessage(err), tt.want)
		})
	}
}

func TestSummaryRejectsInvertedRange(t *testing.T) {
	c := newLedgerCLI(t)
	c.mustRun("pw1\n", "signup", "-u", "alice")

	_, err := c.run("pw1\n", "summary", "--from", "2024-02-01", "--to", "2024-01-01", "-u", "alice")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "is after")
}

func TestSummaryDefaultsToLastWeek(t *testing.T) {
	c := newLedgerCLI(t)
	c.mustRun("pw1\n", "signup", "-u", "alice")

	out := c.mustRun("pw1\n", "summary", "-u", "alice")
	end := today()
	start := end.AddDate(0, 0, -defaultSummaryDays)
	assert.Contains(t, out, start.Format("2006-01-02")+" to "+end.Format("2006-01-02"))
}
