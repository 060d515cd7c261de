package auth

import (
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher хранит пароли в виде bcrypt-хеша.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", e.Wrap("BcryptHasher.Hash", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash string, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return e.Wrap("BcryptHasher.Compare", e.ErrInvalidCredentials)
	}
	return nil
}
