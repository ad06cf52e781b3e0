package security

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt silently ignores everything past 72 bytes, so longer input is refused
// instead of being truncated into a weaker secret.
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Hasher is the one-way salted password primitive.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// DurationObserver receives the time spent in each operation ("hash" or
// "verify"). May be nil.
type DurationObserver func(op string, d time.Duration)

type BcryptHasher struct {
	cost    int
	observe DurationObserver
}

// NewBcryptHasher clamps cost into bcrypt's accepted range; 0 means
// bcrypt.DefaultCost.
func NewBcryptHasher(cost int, observe DurationObserver) *BcryptHasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}

	return &BcryptHasher{cost: cost, observe: observe}
}

// Hash password hashes a plain text password with bcrypt and a random salt.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	if len(plain) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	h.record("hash", start)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify compares a bcrypt hash with a plaintext password. A malformed
// stored hash verifies as false.
func (h *BcryptHasher) Verify(plain, hash string) bool {
	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	h.record("verify", start)

	return err == nil
}

func (h *BcryptHasher) record(op string, start time.Time) {
	if h.observe != nil {
		h.observe(op, time.Since(start))
	}
}
