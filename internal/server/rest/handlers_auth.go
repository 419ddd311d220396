package rest

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/rabetweb/internal/server/auth"
	"github.com/dmitrijs2005/rabetweb/internal/server/services"
)

// SignUp creates the account and user record. It does not open a session.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var in services.SignUpInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.auth.SignUp(r.Context(), in); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Account created. You can sign in now.",
	})
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// SignIn exchanges the bearer ID token for a session cookie.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.auth.SignIn(r.Context(), in.Email, bearerToken(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.cookies.Attach(w, res.Credential)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"role":        res.Role,
		"redirectUrl": res.RedirectURL,
	})
}

// SignOut always succeeds, with or without a session.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Verify answers the access gate: 200 for a staff session, 401 without a
// valid session, 403 for any other role.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	p, err := h.verifier.Verify(r.Context(), sessionCredential(r), auth.StaffRoles...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "role": p.Role})
}

// Token is the identity provider's password sign-in. The returned ID token
// is then presented to SignIn.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	tok, err := h.auth.IssueIDToken(r.Context(), in.Email, in.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"idToken":   tok.IDToken,
		"expiresIn": int(tok.ExpiresIn.Seconds()),
	})
}
