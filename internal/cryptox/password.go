package cryptox

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is used when the configuration does not set one.
const DefaultBcryptCost = 12

// PasswordHasher hashes and verifies account passwords with bcrypt at a
// fixed cost factor.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher for cost. Out-of-range costs fall back
// to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches hash.
func (h *PasswordHasher) Verify(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
