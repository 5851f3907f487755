// Package utils holds small credential and document helpers.
package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares plain password with hashed password.
func CheckPassword(plain, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}

// NormalizeCpf strips formatting punctuation from a CPF document number,
// keeping digits only.
func NormalizeCpf(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCpf reports whether a normalized CPF has the expected 11 digits
// and is not a single repeated digit.
func ValidCpf(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	first := cpf[0]
	for i := 1; i < len(cpf); i++ {
		if cpf[i] != first {
			return true
		}
	}
	return false
}
