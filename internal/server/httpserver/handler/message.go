// Package handler provides HTTP request handlers for SecureSnap.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/swissmarley/secure-snap/internal/core/domain"
	"github.com/swissmarley/secure-snap/internal/core/service"
)

// maxRequestBody caps create request bodies. Base64 inflates the
// ciphertext by 4/3; the remainder covers salt, iv and JSON framing.
const maxRequestBody = domain.MaxCiphertextSize*4/3 + 4096

// handleCreateMessage handles POST /create.
func (h *Handler) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid request body", nil)
		return
	}

	resp, err := h.messageSvc.Create(r.Context(), &service.CreateMessageRequest{
		Ciphertext:    req.Ciphertext,
		Salt:          req.Salt,
		IV:            req.IV,
		ExpirySeconds: int64(req.ExpirySeconds),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, CreateMessageResponse{
		ID:        resp.ID,
		ExpiresAt: resp.ExpiresAt,
	})
}

// handleReadMessage handles GET /message/{id}.
//
// A successful response consumes the message: no status other than 200
// ever returns the payload, and a 200 can happen at most once per ID.
func (h *Handler) handleReadMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrMissingArgument.Code, "message id is required", nil)
		return
	}

	resp, err := h.messageSvc.Read(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, ReadMessageResponse{
		Ciphertext: resp.Ciphertext,
		Salt:       resp.Salt,
		IV:         resp.IV,
	})
}

// handleDeleteMessage handles DELETE /message/{id}.
func (h *Handler) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrMissingArgument.Code, "message id is required", nil)
		return
	}

	if err := h.messageSvc.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, DeleteMessageResponse{Deleted: true})
}
