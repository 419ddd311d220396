package rest

import (
	"net/http"

	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/dmitrijs2005/rabetweb/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// Contact takes a public contact form submission.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var in services.ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.messages.Submit(r.Context(), in); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Thank you, your message has been sent.",
	})
}

// ListMessages lists inbox messages for the ?view filter.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	list, err := h.messages.List(r.Context(), r.URL.Query().Get("view"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "messages": list})
}

// UpdateMessage changes a message status or archive flag.
func (h *Handler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	var u models.MessageUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		h.fail(w, r, err)
		return
	}

	m, err := h.messages.Update(r.Context(), chi.URLParam(r, "messageID"), u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": m})
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.messages.Delete(r.Context(), chi.URLParam(r, "messageID")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// UnreadCount returns the number of new, unarchived messages.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.messages.UnreadCount(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": n})
}
