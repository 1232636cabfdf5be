package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"canteenadmin/internal/account"
	"canteenadmin/internal/api"
	"canteenadmin/internal/audit"
	"canteenadmin/internal/listview"
	"canteenadmin/internal/status"
	"canteenadmin/pkg/db"
)

type Handlers struct {
	DB     *pgxpool.Pool
	Repo   *Repository
	Logger *zap.Logger
}

type lineItemRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Qty   int    `json:"qty"`
}

type createRequest struct {
	Items []lineItemRequest `json:"items"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if len(req.Items) == 0 {
		api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "items is required", "items")
		return
	}

	items := make([]LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Name == "" || it.Qty <= 0 {
			api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "item name and positive qty are required", "items")
			return
		}
		price, err := decimal.NewFromString(it.Price)
		if err != nil || price.IsNegative() {
			api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "item price is invalid", "items")
			return
		}
		items = append(items, LineItem{Name: it.Name, Price: price, Qty: it.Qty})
	}

	o, err := h.Repo.Create(r.Context(), identity.AccountID, items)
	if err != nil {
		h.Logger.Error("create order", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, o)
}

// List serves the admin orders screen. Query params: search, pending_only,
// sort (created_at|total), order (asc|desc).
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		h.Logger.Error("list orders", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	for _, o := range items {
		if o.Status == status.StatusUnknown {
			h.Logger.Warn("unmapped order status", zap.String("id", o.ID), zap.String("raw", o.RawStatus))
		}
	}

	q := listview.Query[Order]{
		Search: r.URL.Query().Get("search"),
		SearchFields: []func(Order) string{
			func(o Order) string { return o.ID },
			func(o Order) string { return o.DisplayID },
			func(o Order) string { return o.AccountID },
		},
	}
	if r.URL.Query().Get("pending_only") == "true" {
		q.Filters = append(q.Filters, func(o Order) bool { return o.Status == status.StatusPending })
	}
	switch r.URL.Query().Get("sort") {
	case "created_at":
		q.SortBy = listview.ByTime(func(o Order) time.Time { return o.CreatedAt })
	case "total":
		q.SortBy = listview.ByNumber(func(o Order) float64 { return Total(o.Items).InexactFloat64() })
	}
	if r.URL.Query().Get("order") == "desc" {
		q.SortOrder = listview.Descending
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"items": listview.View(items, q)})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "order not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, o)
}

type patchStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// PatchStatus advances an order along the kitchen chain. The target status
// arrives as free text and is normalized before the transition check.
func (h Handlers) PatchStatus(w http.ResponseWriter, r *http.Request) {
	admin := api.IdentityFromContext(r.Context())
	if admin == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing admin identity")
		return
	}

	var req patchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	next := status.Orders.Normalize(req.Status)
	if next == status.StatusUnknown || next == status.StatusPending {
		api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid target status", "status")
		return
	}

	var updated *Order
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		o, err := GetForUpdate(r.Context(), tx, chi.URLParam(r, "id"))
		if err != nil {
			return err
		}
		if !status.Orders.CanTransition(o.Status, next) {
			api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION",
				"invalid state transition: "+string(o.Status)+" -> "+string(next))
			return pgx.ErrTxCommitRollback
		}
		if next == status.StatusClaimed {
			if err := account.DebitBalance(r.Context(), tx, o.AccountID, Total(o.Items)); err != nil {
				if errors.Is(err, account.ErrInsufficientBalance) {
					api.WriteError(w, http.StatusConflict, "INSUFFICIENT_BALANCE", "wallet balance does not cover the total")
					return pgx.ErrTxCommitRollback
				}
				return err
			}
		}
		if err := UpdateStatus(r.Context(), tx, o.ID, next, req.Note); err != nil {
			return err
		}
		_ = audit.Insert(r.Context(), tx, admin.Email, "ORDER_"+string(next), "order", o.ID,
			map[string]any{"from": o.Status, "to": next, "note": req.Note})

		o.Status = next
		if req.Note != "" {
			o.Note = req.Note
		}
		updated = o
		return nil
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "order not found")
			return
		}
		h.Logger.Error("patch order status", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	api.WriteJSON(w, http.StatusOK, updated)
}
