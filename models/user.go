package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role constants for user authorization.
const (
	RoleAdmin  = "ADMIN"
	RoleEditor = "EDITOR"
	RoleViewer = "VIEWER"
)

var ValidRoles = []string{RoleAdmin, RoleEditor, RoleViewer}

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Name      string             `bson:"name" json:"name"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// UserView is what the API returns for a user; it never carries the hash.
type UserView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) View() UserView {
	return UserView{
		ID:        u.ID.Hex(),
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID   primitive.ObjectID
	Username string
	Role     string
}

func RoleValid(role string) bool {
	return contains(ValidRoles, role)
}

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (in *RegisterInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput is the body of PUT /users/{id}; only name and role are writable.
type UpdateUserInput struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Role *string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN EDITOR VIEWER"`
}

func (in *UpdateUserInput) Normalize() {
	in.Name = trimPtr(in.Name)
}

// UserPatch is a partial user update.
type UserPatch struct {
	Name *string
	Role *string
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Role == nil
}

func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}
