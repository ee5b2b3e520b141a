package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// IsBcryptHash reports whether the stored credential is a bcrypt digest.
// Records imported from the legacy deployment carry plain values instead.
func IsBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2")
}

// VerifyPassword checks a supplied password against the stored credential.
// Bcrypt digests are compared with bcrypt; legacy plain values are compared
// in constant time. An empty stored credential never verifies.
func VerifyPassword(stored, supplied string) bool {
	if stored == "" {
		return false
	}
	if IsBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// HashPassword creates a bcrypt digest with the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
