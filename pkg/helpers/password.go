package helpers

import (
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// BcryptEncoder hashes passwords with bcrypt at a fixed cost.
type BcryptEncoder struct {
	cost int
}

// NewBcryptEncoder returns an encoder using cost, falling back to
// bcrypt.DefaultCost when cost is outside bcrypt's accepted range.
func NewBcryptEncoder(cost int) *BcryptEncoder {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptEncoder{cost: cost}
}

// Encode hashes the plain text password with a fresh salt.
func (e *BcryptEncoder) Encode(raw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(raw), e.cost)
	if err != nil {
		return "", oops.Code("PASSWORD_ENCODE_FAILED").With("cost", e.cost).Wrap(err)
	}
	return string(b), nil
}

// Matches compares a bcrypt hash with a plain password.
func (e *BcryptEncoder) Matches(raw, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(raw)) == nil
}

// DummyHash produces a hash of a throwaway value for login timing
// equalization.
func (e *BcryptEncoder) DummyHash() (string, error) {
	return e.Encode("not-a-real-password")
}
