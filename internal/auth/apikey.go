package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrAPIKeyTooShort = errors.New("api key must be at least 16 characters")

const (
	bcryptCost      = 12
	minAPIKeyLength = 16
)

// HashAPIKey hashes a storefront API key using bcrypt. The service only
// ever stores the hash.
func HashAPIKey(key string) (string, error) {
	if len(key) < minAPIKeyLength {
		return "", ErrAPIKeyTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcryptCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckAPIKey compares a presented key with the stored hash
func CheckAPIKey(key, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
	return err == nil
}
