package auth

import (
	"crypto/rand"
	"encoding/base64"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the hashing cost; tests lower it to bcrypt.MinCost
var BcryptCost = 12

// PasswordMinLength is the minimum accepted password length
const PasswordMinLength = 8

// HashPassword hashes a plaintext password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// IsStrongPassword requires the minimum length plus at least one letter and one digit
func IsStrongPassword(password string) bool {
	if len([]rune(password)) < PasswordMinLength {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// GenerateTemporaryPassword returns a random password that satisfies IsStrongPassword
func GenerateTemporaryPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	// The suffix guarantees a letter and a digit regardless of the random part.
	return base64.RawURLEncoding.EncodeToString(buf) + "a1", nil
}
