package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both an unknown login handle and a password
// mismatch so callers cannot tell which one failed.
var ErrInvalidCredentials = errors.New("credenciales inválidas")

// HashPassword derives a salted bcrypt hash from a plaintext credential.
// The plaintext is never stored.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext candidate against a stored hash.
// bcrypt performs the comparison in constant time.
func VerifyPassword(plain, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
