package rest

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/server/auth"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// ListUsers returns every user record.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "users": list})
}

// GetUser returns one user record.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	p, err := h.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": p})
}

// UpdateUser patches profile fields. Changing a role takes an
// Administrator.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var u models.PrincipalUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		h.fail(w, r, err)
		return
	}

	if u.Role != nil {
		caller, _ := auth.PrincipalFromContext(r.Context())
		if caller == nil || !auth.Allows(caller.Role, models.RoleAdministrator) {
			h.fail(w, r, fmt.Errorf("%w: only administrators can change roles", common.ErrForbidden))
			return
		}
	}

	p, err := h.users.Update(r.Context(), chi.URLParam(r, "userID"), u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User updated successfully",
		"user":    p,
	})
}

// SetUserStatus enables or disables a user.
func (h *Handler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Disabled *bool `json:"disabled"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if in.Disabled == nil {
		h.fail(w, r, fmt.Errorf("%w: disabled is required", common.ErrValidation))
		return
	}

	p, err := h.users.SetDisabled(r.Context(), chi.URLParam(r, "userID"), *in.Disabled)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	state := "enabled"
	if *in.Disabled {
		state = "disabled"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User " + state + " successfully",
		"user":    p,
	})
}

// DeleteUser removes the identity account and then the user record.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if err := h.users.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "User deleted successfully",
		"deletedUserId": id,
	})
}

// CreateProfileImageUpload presigns an upload and records the new key on
// the user, so the image shows once the browser finishes the PUT.
func (h *Handler) CreateProfileImageUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if _, err := h.users.Get(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	up, err := h.images.CreateUpload(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.users.SetProfileImage(r.Context(), id, up.Key); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "upload": up})
}

// ProfileImage redirects to a presigned download of the user's image.
func (h *Handler) ProfileImage(w http.ResponseWriter, r *http.Request) {
	p, err := h.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	url, err := h.images.DownloadURL(r.Context(), p.ProfileImage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
