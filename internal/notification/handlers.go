package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"canteenadmin/internal/api"
)

// Inbox is the storage surface the handlers use; satisfied by *Repository.
type Inbox interface {
	ListInbox(ctx context.Context, accountID string, includeShared bool, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, ids []string, accountID string, includeShared bool) (int64, error)
	MarkAllRead(ctx context.Context, accountID string, includeShared bool) (int64, error)
	Delete(ctx context.Context, id, accountID string, includeShared bool) error
	CountUnread(ctx context.Context, accountID string, includeShared bool) (int, error)
}

type Handlers struct {
	Repo   Inbox
	Logger *zap.Logger
}

// Shared (account-less) rows are the admin broadcast inbox; only admin
// identities may see or touch them.
func sharedFor(id *api.Identity) bool {
	return id.Role == "admin"
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.Repo.ListInbox(r.Context(), id.AccountID, sharedFor(id), limit)
	if err != nil {
		h.Logger.Error("list notifications", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Unread(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	n, err := h.Repo.CountUnread(r.Context(), id.AccountID, sharedFor(id))
	if err != nil {
		h.Logger.Error("count unread", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"unread": n})
}

func (h Handlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.Repo.MarkRead(r.Context(), []string{id}, identity.AccountID, sharedFor(identity)); err != nil {
		h.Logger.Error("mark read", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type markReadRequest struct {
	IDs []string `json:"ids"`
	All bool     `json:"all,omitempty"`
}

// MarkReadBulk marks a selected set read, or everything when all=true. IDs
// belonging to other accounts are silently skipped by the ownership scope.
func (h Handlers) MarkReadBulk(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	var (
		n   int64
		err error
	)
	if req.All {
		n, err = h.Repo.MarkAllRead(r.Context(), identity.AccountID, sharedFor(identity))
	} else {
		n, err = h.Repo.MarkRead(r.Context(), req.IDs, identity.AccountID, sharedFor(identity))
	}
	if err != nil {
		h.Logger.Error("bulk mark read", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"updated": n})
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	if err := h.Repo.Delete(r.Context(), chi.URLParam(r, "id"), identity.AccountID, sharedFor(identity)); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
