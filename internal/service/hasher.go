package service

import (
	"fmt"

	"github.com/MKhiriev/go-auth-portal/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost      int
	dummyHash []byte
}

// NewBcryptHasher returns a hasher using cost. The dummy hash used by
// VerifyDummy is generated with the same cost so both paths take equally
// long.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	unusable, err := utils.GenerateToken(16)
	if err != nil {
		return nil, err
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte(unusable), cost)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHashingPassword, err)
	}

	return &BcryptHasher{cost: cost, dummyHash: dummyHash}, nil
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashingPassword, err)
	}

	return string(hash), nil
}

func (h *BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *BcryptHasher) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
}
