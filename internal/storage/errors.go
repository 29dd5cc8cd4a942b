package storage

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/spice-ledger/internal/common"
)

// translateError maps SQLite constraint failures onto the application's
// error taxonomy. Other errors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return err
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return fmt.Errorf("%w: %s", common.ErrDuplicateEntry, sqliteErr.Error())
	default:
		return fmt.Errorf("%w: %s", common.ErrIntegrityViolation, sqliteErr.Error())
	}
}
