package handlers

import (
	"net/http"
	"time"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/middleware"
	"github.com/kevinaaaquil/book-inventory/backend/models"
	"github.com/kevinaaaquil/book-inventory/backend/service"
	"github.com/kevinaaaquil/book-inventory/backend/store"
)

type AuthHandler struct {
	Users  store.UserStore
	Tokens *service.TokenService
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, expiresAt, err := h.Tokens.Issue(user)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, status, models.AuthResult{Token: token, ExpiresAt: expiresAt, User: user.View()})
}

// Register creates a VIEWER account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := readJSON(w, r, &in); err != nil {
		fail(w, r, err)
		return
	}
	in.Normalize()
	if err := validateStruct(&in); err != nil {
		fail(w, r, err)
		return
	}
	hash, err := service.HashPassword(in.Password)
	if err != nil {
		fail(w, r, err)
		return
	}
	user := &models.User{
		Username:  in.Username,
		Name:      in.Name,
		Password:  hash,
		Role:      models.RoleViewer,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := h.Users.CreateUser(r.Context(), user); err != nil {
		fail(w, r, err)
		return
	}
	logFor(r).WithField("username", user.Username).Info("user registered")
	h.issue(w, r, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := readJSON(w, r, &in); err != nil {
		fail(w, r, err)
		return
	}
	if err := validateStruct(&in); err != nil {
		fail(w, r, err)
		return
	}
	user, err := h.Users.UserByUsername(r.Context(), in.Username)
	if err != nil {
		fail(w, r, err)
		return
	}
	if user == nil || !service.CheckPassword(user.Password, in.Password) {
		fail(w, r, apperr.New(apperr.Unauthenticated, "Invalid credentials"))
		return
	}
	h.issue(w, r, http.StatusOK, user)
}

// Me returns the stored account behind the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromContext(r.Context())
	user, err := h.Users.UserByID(r.Context(), caller.UserID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if user == nil {
		fail(w, r, apperr.New(apperr.Unauthenticated, "User no longer exists"))
		return
	}
	respond(w, http.StatusOK, user.View())
}
