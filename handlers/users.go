package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/authz"
	"github.com/kevinaaaquil/book-inventory/backend/middleware"
	"github.com/kevinaaaquil/book-inventory/backend/models"
	"github.com/kevinaaaquil/book-inventory/backend/store"
)

type UsersHandler struct {
	Users store.UserStore
}

// userUpdateResult is the PUT /users/{id} payload.
type userUpdateResult struct {
	models.UserView
	RoleChanged bool `json:"roleChanged"`
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page := models.ParsePageRequest(r.URL.Query())
	users, total, err := h.Users.ListUsers(r.Context(), page)
	if err != nil {
		fail(w, r, err)
		return
	}
	views := make([]models.UserView, len(users))
	for i := range users {
		views[i] = users[i].View()
	}
	respond(w, http.StatusOK, models.UserPage{
		Users:      views,
		Total:      total,
		Page:       page.Page,
		TotalPages: page.TotalPages(total),
	})
}

func (h *UsersHandler) load(r *http.Request) (*models.User, error) {
	id, err := parseID(r, "user")
	if err != nil {
		return nil, err
	}
	user, err := h.Users.UserByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "User not found")
	}
	return user, nil
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.load(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, user.View())
}

// Update changes a user's name and role. An admin cannot change their own role.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromContext(r.Context())
	var in models.UpdateUserInput
	if err := readJSON(w, r, &in); err != nil {
		fail(w, r, err)
		return
	}
	in.Normalize()
	if err := validateStruct(&in); err != nil {
		fail(w, r, err)
		return
	}
	user, err := h.load(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	newRole := user.Role
	if in.Role != nil {
		newRole = *in.Role
	}
	if err := authz.CanChangeRole(caller, user.ID, user.Role, newRole); err != nil {
		fail(w, r, err)
		return
	}
	patch := models.UserPatch{Name: in.Name, Role: in.Role}
	roleChanged := newRole != user.Role
	if !patch.Empty() {
		if user, err = h.Users.UpdateUser(r.Context(), user.ID, patch); err != nil {
			fail(w, r, err)
			return
		}
	}
	if roleChanged {
		logFor(r).WithFields(logrus.Fields{"user_id": user.ID.Hex(), "role": user.Role, "by": caller.Username}).Info("user role changed")
	}
	respond(w, http.StatusOK, userUpdateResult{UserView: user.View(), RoleChanged: roleChanged})
}
