// Package authz decides whether an authenticated identity may perform an
// operation. Every check returns nil or a Forbidden *apperr.Error and has no
// side effects, so handlers run them before touching the store.
package authz

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/models"
)

func canWriteBooks(role string) bool {
	return role == models.RoleAdmin || role == models.RoleEditor
}

// CanRead allows any authenticated role.
func CanRead(id models.Identity) error {
	if !models.RoleValid(id.Role) {
		return apperr.New(apperr.Forbidden, "Not authorized to access this resource")
	}
	return nil
}

// CanCreateBook allows ADMIN and EDITOR.
func CanCreateBook(id models.Identity) error {
	if !canWriteBooks(id.Role) {
		return apperr.New(apperr.Forbidden, "Not authorized to create books")
	}
	return nil
}

// CanModifyBook allows ADMIN on any record and EDITOR on records they created.
func CanModifyBook(id models.Identity, book *models.Book) error {
	if !canWriteBooks(id.Role) {
		return apperr.New(apperr.Forbidden, "Not authorized to modify books")
	}
	if id.Role != models.RoleAdmin && book.CreatedBy != id.UserID {
		return apperr.New(apperr.Forbidden, "Not authorized to modify this book")
	}
	return nil
}

func CanManageUsers(id models.Identity) error {
	if id.Role != models.RoleAdmin {
		return apperr.New(apperr.Forbidden, "Not authorized to manage users")
	}
	return nil
}

// CanChangeRole requires ADMIN and forbids an actual role change on the
// caller's own account. Re-sending the current role is not a change.
func CanChangeRole(caller models.Identity, target primitive.ObjectID, currentRole, newRole string) error {
	if err := CanManageUsers(caller); err != nil {
		return err
	}
	if caller.UserID == target && newRole != currentRole {
		return apperr.New(apperr.Forbidden, "You cannot update your own role")
	}
	return nil
}
