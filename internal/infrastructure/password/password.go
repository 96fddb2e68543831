package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Encoder hashes client secrets with bcrypt
type Encoder struct {
	cost int
}

// NewEncoder creates a bcrypt encoder. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewEncoder(cost int) *Encoder {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Encoder{cost: cost}
}

// Encode hashes a secret using bcrypt
func (e *Encoder) Encode(secret string) (string, error) {
	return hashWithCost(secret, e.cost)
}

// Matches reports whether secret matches its bcrypt hash
func (e *Encoder) Matches(secret, encoded string) bool {
	return CheckPassword(secret, encoded) == nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	return hashWithCost(password, bcrypt.DefaultCost)
}

func hashWithCost(password string, cost int) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPassword checks if a password matches its hash
func CheckPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return errors.New("invalid password")
		}
		return err
	}
	return nil
}
