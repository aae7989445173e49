// Package credential is the one way hash/verify primitive used for both
// user login passwords and room passwords.
package credential

import (
	"golang.org/x/crypto/bcrypt"
)

// Set derives a one way credential from secret. An empty secret means
// "no credential" and returns nil - distinct from an empty hash.
func Set(secret string) (*string, error) {
	if secret == "" {
		return nil, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	s := string(hashed)
	return &s, nil
}

// Verify checks candidate against a stored credential. A nil credential
// short circuits to true - there is nothing to check against, so access
// is allowed without a challenge. It never recovers the secret.
func Verify(hash *string, candidate string) bool {
	if hash == nil {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(candidate)) == nil
}
