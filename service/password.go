package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
)

// PasswordCost is the bcrypt cost for new hashes. Tests lower it.
var PasswordCost = bcrypt.DefaultCost

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Invalid(apperr.FieldError{Field: "password", Message: "password must be at most 72 bytes"})
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
