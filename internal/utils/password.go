package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes an account password with the given bcrypt cost.
// Owner and staff accounts share one credential flow; the cost comes from
// configuration and is clamped to bcrypt's valid range.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash. Callers
// collapse every failure into the same generic login response, so no
// reason is returned.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
