package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt" // adaptive hashing for stored member passwords
)

// ErrPasswordTooLong is returned for passwords longer than bcrypt accepts.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// BcryptCost clamps a configured cost into the range bcrypt accepts,
// falling back to bcrypt.DefaultCost.
func BcryptCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

// HashPassword hashes plain with the clamped cost.
func HashPassword(plain string, cost int) (string, error) {
	if len(plain) > 72 {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost(cost))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches hash.  A malformed hash
// never matches.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
