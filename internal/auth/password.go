package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt молча обрезает вход после 72 байт, поэтому длиннее не принимаем
const (
	minPasswordLen = 8
	maxPasswordLen = 72
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword проверяет пароль до хеширования
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return errors.New("password must be at least 8 characters long")
	}
	if len(password) > maxPasswordLen {
		return errors.New("password must be at most 72 characters long")
	}
	return nil
}
