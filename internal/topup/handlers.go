package topup

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"canteenadmin/internal/account"
	"canteenadmin/internal/api"
	"canteenadmin/internal/audit"
	"canteenadmin/internal/bus"
	"canteenadmin/internal/listview"
	"canteenadmin/internal/notification"
	"canteenadmin/internal/status"
	"canteenadmin/pkg/db"
)

type Handlers struct {
	DB     *pgxpool.Pool
	Repo   *Repository
	Bus    *bus.Bus
	Logger *zap.Logger
}

type submitRequest struct {
	Amount   string `json:"amount"`
	Provider string `json:"provider"`
	ProofURL string `json:"proofUrl,omitempty"`
}

// Submit records a wallet top-up awaiting verification. The payment proof is
// uploaded separately and referenced by URL.
func (h Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "amount must be a positive number", "amount")
		return
	}
	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	if provider == "" {
		api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "provider is required", "provider")
		return
	}

	t, err := h.Repo.Create(r.Context(), identity.AccountID, amount, provider, strings.TrimSpace(req.ProofURL))
	if err != nil {
		h.Logger.Error("create topup", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	api.WriteJSON(w, http.StatusCreated, t)
}

// List serves the admin verification screen. Query params: search,
// pending_only, provider, sort (amount|created_at), order.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		h.Logger.Error("list topups", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	for _, t := range items {
		// Misses normalize to Pending for top-ups, so an Unknown check
		// would never fire; ask the synonym table directly.
		if strings.TrimSpace(t.RawStatus) != "" && !status.TopUps.Known(t.RawStatus) {
			h.Logger.Warn("unmapped topup status treated as pending",
				zap.String("id", t.ID), zap.String("raw", t.RawStatus))
		}
	}

	q := listview.Query[TopUp]{
		Search: r.URL.Query().Get("search"),
		SearchFields: []func(TopUp) string{
			func(t TopUp) string { return t.ID },
			func(t TopUp) string { return t.DisplayID },
			func(t TopUp) string { return t.AccountID },
			func(t TopUp) string { return t.Provider },
			func(t TopUp) string { return t.Amount.StringFixed(2) },
		},
	}
	if r.URL.Query().Get("pending_only") == "true" {
		q.Filters = append(q.Filters, func(t TopUp) bool { return t.Status == status.StatusPending })
	}
	if provider := strings.ToLower(r.URL.Query().Get("provider")); provider != "" {
		q.Filters = append(q.Filters, func(t TopUp) bool { return t.Provider == provider })
	}
	switch r.URL.Query().Get("sort") {
	case "amount":
		q.SortBy = listview.ByNumber(func(t TopUp) float64 { return t.Amount.InexactFloat64() })
	case "created_at":
		q.SortBy = listview.ByTime(func(t TopUp) time.Time { return t.CreatedAt })
	}
	if r.URL.Query().Get("order") == "desc" {
		q.SortOrder = listview.Descending
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"items": listview.View(items, q)})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "top-up not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, t)
}

// PendingCount backs the navigation badge poll.
func (h Handlers) PendingCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.Repo.CountPending(r.Context())
	if err != nil {
		h.Logger.Error("count pending topups", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"pending": n})
}

type verifyRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Approve credits the wallet in the same transaction that resolves the
// top-up, so a crash can never credit twice or resolve without crediting.
func (h Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, status.StatusApproved)
}

func (h Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, status.StatusRejected)
}

func (h Handlers) resolve(w http.ResponseWriter, r *http.Request, next status.Status) {
	admin := api.IdentityFromContext(r.Context())
	if admin == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing admin identity")
		return
	}

	var req verifyRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if next == status.StatusRejected && strings.TrimSpace(req.Reason) == "" {
		api.WriteFieldError(w, http.StatusBadRequest, "REASON_REQUIRED", "a reason is required to reject", "reason")
		return
	}

	var updated *TopUp
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		t, err := GetForUpdate(r.Context(), tx, chi.URLParam(r, "id"))
		if err != nil {
			return err
		}
		if !status.TopUps.CanTransition(t.Status, next) {
			api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION",
				"invalid state transition: "+string(t.Status)+" -> "+string(next))
			return pgx.ErrTxCommitRollback
		}
		if next == status.StatusApproved {
			if err := account.CreditBalance(r.Context(), tx, t.AccountID, t.Amount); err != nil {
				return err
			}
		}
		if err := Resolve(r.Context(), tx, t.ID, next, req.Reason); err != nil {
			return err
		}
		_ = audit.Insert(r.Context(), tx, admin.Email, "TOPUP_"+string(next), "topup", t.ID,
			map[string]any{"amount": t.Amount.StringFixed(2), "reason": req.Reason})
		if err := notification.InsertTx(r.Context(), tx, nil,
			"Top-up "+strings.ToLower(string(next)),
			"",
			&notification.Data{Kind: notification.KindTopUp, TopUp: &notification.TopUpData{
				TopUpID: t.ID, Approved: next == status.StatusApproved,
			}},
		); err != nil {
			return err
		}

		t.Status = next
		t.Reason = req.Reason
		updated = t
		return nil
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "top-up not found")
			return
		}
		h.Logger.Error("resolve topup", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	h.Bus.Publish(bus.TopicTopUpResolved, bus.TopUpResolved{
		TopUpID:   updated.ID,
		AccountID: updated.AccountID,
		Approved:  next == status.StatusApproved,
	})

	api.WriteJSON(w, http.StatusOK, updated)
}
