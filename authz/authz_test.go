package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/authz"
	"github.com/kevinaaaquil/book-inventory/backend/models"
)

func identity(role string) models.Identity {
	return models.Identity{UserID: primitive.NewObjectID(), Username: "u", Role: role}
}

func assertForbidden(t *testing.T, err error) {
	t.Helper()
	assert.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func Test_CanCreateBook(t *testing.T) {
	assert.NoError(t, authz.CanCreateBook(identity(models.RoleAdmin)))
	assert.NoError(t, authz.CanCreateBook(identity(models.RoleEditor)))
	assertForbidden(t, authz.CanCreateBook(identity(models.RoleViewer)))
	assertForbidden(t, authz.CanCreateBook(identity("")))
}

func Test_CanModifyBook(t *testing.T) {
	editor := identity(models.RoleEditor)
	own := &models.Book{CreatedBy: editor.UserID}
	foreign := &models.Book{CreatedBy: primitive.NewObjectID()}

	tests := []struct {
		name    string
		caller  models.Identity
		book    *models.Book
		allowed bool
	}{
		{name: "admin_on_foreign_record", caller: identity(models.RoleAdmin), book: foreign, allowed: true},
		{name: "editor_on_own_record", caller: editor, book: own, allowed: true},
		{name: "editor_on_foreign_record", caller: editor, book: foreign, allowed: false},
		{name: "viewer_on_own_record", caller: models.Identity{UserID: editor.UserID, Role: models.RoleViewer}, book: own, allowed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.CanModifyBook(tt.caller, tt.book)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assertForbidden(t, err)
		})
	}
}

func Test_CanRead(t *testing.T) {
	for _, role := range models.ValidRoles {
		assert.NoError(t, authz.CanRead(identity(role)))
	}
	assertForbidden(t, authz.CanRead(identity("GUEST")))
}

func Test_CanChangeRole(t *testing.T) {
	admin := identity(models.RoleAdmin)
	other := primitive.NewObjectID()

	assert.NoError(t, authz.CanChangeRole(admin, other, models.RoleViewer, models.RoleEditor))
	assertForbidden(t, authz.CanChangeRole(admin, admin.UserID, models.RoleAdmin, models.RoleViewer))
	assert.NoError(t, authz.CanChangeRole(admin, admin.UserID, models.RoleAdmin, models.RoleAdmin))
	assertForbidden(t, authz.CanChangeRole(identity(models.RoleEditor), other, models.RoleViewer, models.RoleEditor))
}
