// Package auth verifies credentials and produces sessions for ledger users.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Veraticus/spice-ledger/internal/common"
)

// Hasher names accepted by NewHasher.
const (
	HasherBcrypt = "bcrypt"
	HasherSHA256 = "sha256"
)

// Hasher derives and checks one-way password hashes.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// NewHasher returns the hasher registered under name. cost only applies to bcrypt;
// zero selects bcrypt.DefaultCost.
func NewHasher(name string, cost int) (Hasher, error) {
	switch name {
	case HasherBcrypt, "":
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("%w: bcrypt cost %d out of range [%d, %d]",
				common.ErrInvalidConfig, cost, bcrypt.MinCost, bcrypt.MaxCost)
		}
		return BcryptHasher{Cost: cost}, nil
	case HasherSHA256:
		return SHA256Hasher{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown hasher %q", common.ErrInvalidConfig, name)
	}
}

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	Cost int
}

// Hash implements Hasher.
func (h BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify implements Hasher.
func (h BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SHA256Hasher produces unsalted hex SHA-256 digests. It exists for ledger
// databases whose accounts were created with plain digests; prefer bcrypt.
type SHA256Hasher struct{}

// Hash implements Hasher.
func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Verify implements Hasher.
func (h SHA256Hasher) Verify(hash, password string) bool {
	want, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(want)) == 1
}
