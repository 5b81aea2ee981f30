package util

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher хэширует пароли bcrypt с настраиваемой стоимостью
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher - стоимость вне допустимого диапазона заменяется на bcrypt.DefaultCost
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Matches проверяет, соответствует ли пароль хэшу
func (h *PasswordHasher) Matches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
