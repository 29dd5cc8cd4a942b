// Package ofx imports bank and credit card statements in OFX/QFX format
// into ledger transactions.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// ErrMissingCategory is returned when a statement line has no category to
// land in.
var ErrMissingCategory = errors.New("missing target category")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at end of line that lost their closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// CategoryMapping names the ledger categories that statement credits and
// debits are recorded under.
type CategoryMapping struct {
	Income  string
	Expense string
}

// Statement is the result of parsing one OFX file.
type Statement struct {
	Accounts     []string
	Transactions []model.Transaction
	// Skipped counts zero-amount lines and repeated FITIDs.
	Skipped int
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	mapping CategoryMapping
}

// NewParser creates a new OFX parser that records credits under
// mapping.Income and debits under mapping.Expense.
func NewParser(mapping CategoryMapping) (*Parser, error) {
	if strings.TrimSpace(mapping.Income) == "" {
		return nil, fmt.Errorf("%w: income", ErrMissingCategory)
	}
	if strings.TrimSpace(mapping.Expense) == "" {
		return nil, fmt.Errorf("%w: expense", ErrMissingCategory)
	}
	return &Parser{mapping: mapping}, nil
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be INFO, WARN or ERROR.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file and returns its transactions mapped onto
// ledger categories.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*Statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	stmt := &Statement{}
	accounts := make(map[string]bool)
	seen := make(map[string]bool)
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if bank, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			accounts[string(bank.BankAcctFrom.AcctID)] = true
			p.collect(stmt, seen, bank.BankTranList)
		}
	}

	for _, msg := range resp.CreditCard {
		if cc, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			accounts[string(cc.CCAcctFrom.AcctID)] = true
			p.collect(stmt, seen, cc.BankTranList)
		}
	}

	for acct := range accounts {
		if acct != "" {
			stmt.Accounts = append(stmt.Accounts, acct)
		}
	}
	sort.Strings(stmt.Accounts)

	slog.Info("Parsed OFX file",
		"total_transactions", len(stmt.Transactions),
		"skipped", stmt.Skipped,
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return stmt, nil
}

func (p *Parser) collect(stmt *Statement, seen map[string]bool, list *ofxgo.TransactionList) {
	if list == nil {
		return
	}

	for _, ofxTx := range list.Transactions {
		if id := string(ofxTx.FiTID); id != "" {
			if seen[id] {
				slog.Debug("Skipping repeated OFX transaction", "fitid", id)
				stmt.Skipped++
				continue
			}
			seen[id] = true
		}

		txn, ok := p.convertTransaction(ofxTx)
		if !ok {
			stmt.Skipped++
			continue
		}
		stmt.Transactions = append(stmt.Transactions, txn)
	}
}

// convertTransaction converts an OFX transaction to a ledger entry. OFX uses
// negative amounts for debits; the ledger stores magnitudes and lets the
// category carry the direction. Zero amounts are rejected.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) (model.Transaction, bool) {
	amount, _ := ofxTx.TrnAmt.Float64()
	if amount == 0 {
		return model.Transaction{}, false
	}

	category := p.mapping.Income
	categoryType := model.CategoryTypeIncome
	if amount < 0 {
		amount = -amount
		category = p.mapping.Expense
		categoryType = model.CategoryTypeExpense
	}

	posted := ofxTx.DtPosted.Time
	return model.Transaction{
		CategoryName: category,
		CategoryType: categoryType,
		Amount:       amount,
		Date:         time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC),
		Description:  p.describe(ofxTx),
	}, true
}

// describe builds the ledger description for a statement line.
func (p *Parser) describe(tx ofxgo.Transaction) string {
	name := p.extractMerchantName(tx)
	if tx.CheckNum != "" && !strings.Contains(name, string(tx.CheckNum)) {
		name = strings.TrimSpace(name + " (check " + string(tx.CheckNum) + ")")
	}
	return name
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE is usually the cleaner merchant name.
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	// Sometimes MEMO has better merchant info
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"ACH CREDIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
