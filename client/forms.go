package client

import (
	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/models"
)

// PreviewValueChange is the live value shown while a book form is edited. It
// uses the same rounding as the server.
func PreviewValueChange(purchasePrice, marketValue float64) float64 {
	return models.ValueChangePercentage(purchasePrice, marketValue)
}

// ValidateRegistration checks the sign-up form before it is submitted. The
// server repeats every check except the confirmation match.
func ValidateRegistration(username, name, password, confirm string) []apperr.FieldError {
	var fields []apperr.FieldError
	switch {
	case username == "":
		fields = append(fields, apperr.FieldError{Field: "username", Message: "Username is required"})
	case len(username) < models.MinUsernameLength:
		fields = append(fields, apperr.FieldError{Field: "username", Message: "Username must be at least 3 characters"})
	}
	if name == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "Name is required"})
	}
	switch {
	case password == "":
		fields = append(fields, apperr.FieldError{Field: "password", Message: "Password is required"})
	case len(password) < models.MinPasswordLength:
		fields = append(fields, apperr.FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	case len(password) > models.MaxPasswordBytes:
		fields = append(fields, apperr.FieldError{Field: "password", Message: "Password must be at most 72 characters"})
	}
	if password != confirm {
		fields = append(fields, apperr.FieldError{Field: "confirmPassword", Message: "Passwords do not match"})
	}
	return fields
}

// CanEdit hides edit and delete controls the server would refuse anyway.
// It is advisory only.
func CanEdit(u models.UserView, b models.BookView) bool {
	switch u.Role {
	case models.RoleAdmin:
		return true
	case models.RoleEditor:
		return b.CreatedBy.ID == u.ID
	default:
		return false
	}
}

// CanCreate reports whether the create button should be shown.
func CanCreate(u models.UserView) bool {
	return u.Role == models.RoleAdmin || u.Role == models.RoleEditor
}
