package reservation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"canteenadmin/internal/account"
	"canteenadmin/internal/api"
	"canteenadmin/internal/audit"
	"canteenadmin/internal/bus"
	"canteenadmin/internal/listview"
	"canteenadmin/internal/notification"
	"canteenadmin/internal/restriction"
	"canteenadmin/internal/status"
	"canteenadmin/pkg/db"
)

const claimDateLayout = "2006-01-02"

type Handlers struct {
	DB           *pgxpool.Pool
	Repo         *Repository
	Restrictions *restriction.Repository
	Bus          *bus.Bus
	Logger       *zap.Logger
}

type lineItemRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Qty   int    `json:"qty"`
}

type createRequest struct {
	ClaimDate string            `json:"claimDate"`
	Items     []lineItemRequest `json:"items"`
}

// Create places a reservation for the authenticated student. The claim date
// must clear the restriction rules at placement time.
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

	claimDate, err := time.Parse(claimDateLayout, req.ClaimDate)
	if err != nil {
		api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "claimDate must be YYYY-MM-DD", "claimDate")
		return
	}

	items, err := parseItems(req.Items)
	if err != nil {
		api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), "items")
		return
	}

	rules, err := h.Restrictions.Load(r.Context())
	if err != nil {
		h.Logger.Error("load restrictions", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if rules.IsBlocked(claimDate) {
		api.WriteFieldError(w, http.StatusUnprocessableEntity, "DATE_BLOCKED", "reservations are not accepted for this date", "claimDate")
		return
	}

	res, err := h.Repo.Create(r.Context(), identity.AccountID, claimDate, items)
	if err != nil {
		h.Logger.Error("create reservation", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	h.Bus.Publish(bus.TopicReservationsUpdated, bus.ReservationsUpdated{})

	api.WriteJSON(w, http.StatusCreated, res)
}

// List serves the admin reservations screen. Query params: search,
// pending_only, sort (claim_date|created_at|total), order.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		h.Logger.Error("list reservations", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	for _, res := range items {
		if res.Status == status.StatusUnknown {
			// Classification miss: degrade to Unknown, never an error.
			h.Logger.Warn("unmapped reservation status",
				zap.String("id", res.ID), zap.String("raw", res.RawStatus))
		}
	}

	q := listview.Query[Reservation]{
		Search: r.URL.Query().Get("search"),
		SearchFields: []func(Reservation) string{
			func(res Reservation) string { return res.ID },
			func(res Reservation) string { return res.DisplayID },
			func(res Reservation) string { return res.AccountID },
		},
	}
	if r.URL.Query().Get("pending_only") == "true" {
		q.Filters = append(q.Filters, func(res Reservation) bool { return res.Status == status.StatusPending })
	}
	switch r.URL.Query().Get("sort") {
	case "claim_date":
		q.SortBy = listview.ByTime(func(res Reservation) time.Time { return res.ClaimDate })
	case "created_at":
		q.SortBy = listview.ByTime(func(res Reservation) time.Time { return res.CreatedAt })
	case "total":
		q.SortBy = listview.ByNumber(func(res Reservation) float64 { return Total(res.Items).InexactFloat64() })
	}
	if r.URL.Query().Get("order") == "desc" {
		q.SortOrder = listview.Descending
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"items": listview.View(items, q)})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "reservation not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

// Mine lists the authenticated student's own reservations.
func (h Handlers) Mine(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	items, err := h.Repo.ListByAccount(r.Context(), identity.AccountID)
	if err != nil {
		h.Logger.Error("list own reservations", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type transitionRequest struct {
	Note string `json:"note,omitempty"`
}

func (h Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	h.single(w, r, status.StatusApproved)
}

func (h Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	h.single(w, r, status.StatusRejected)
}

// Claim marks an approved reservation picked up and charges the wallet.
func (h Handlers) Claim(w http.ResponseWriter, r *http.Request) {
	h.single(w, r, status.StatusClaimed)
}

func (h Handlers) single(w http.ResponseWriter, r *http.Request, next status.Status) {
	admin := api.IdentityFromContext(r.Context())
	if admin == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing admin identity")
		return
	}

	var req transitionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	res, err := h.apply(r, chi.URLParam(r, "id"), next, req.Note, admin.Email)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	h.Bus.Publish(bus.TopicReservationsUpdated, bus.ReservationsUpdated{})

	api.WriteJSON(w, http.StatusOK, res)
}

type bulkRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
	Note   string   `json:"note,omitempty"`
}

// Bulk applies one transition to each selected id sequentially. Best-effort:
// per-id outcomes are reported independently and a failure does not abort the
// remaining ids.
func (h Handlers) Bulk(w http.ResponseWriter, r *http.Request) {
	admin := api.IdentityFromContext(r.Context())
	if admin == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing admin identity")
		return
	}

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if len(req.IDs) == 0 {
		api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "ids is required", "ids")
		return
	}
	next := status.Reservations.Normalize(req.Status)
	if next != status.StatusApproved && next != status.StatusRejected && next != status.StatusClaimed {
		api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid target status", "status")
		return
	}

	results := applyBulk(req.IDs, func(id string) error {
		_, err := h.apply(r, id, next, req.Note, admin.Email)
		return err
	})

	h.Bus.Publish(bus.TopicReservationsUpdated, bus.ReservationsUpdated{})

	api.WriteJSON(w, http.StatusOK, map[string]any{"results": results})
}

var errDateBlocked = errors.New("claim date is blocked")

// apply runs one transition in its own transaction and returns the updated
// reservation.
func (h Handlers) apply(r *http.Request, id string, next status.Status, note, actor string) (*Reservation, error) {
	var updated *Reservation
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		res, err := GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return err
		}
		if !status.Reservations.CanTransition(res.Status, next) {
			return errInvalidTransition(res.Status, next)
		}
		if next == status.StatusApproved {
			// The rule set may have changed since placement; re-validate.
			rules, err := h.Restrictions.Load(r.Context())
			if err != nil {
				return err
			}
			if rules.IsBlocked(res.ClaimDate) {
				return errDateBlocked
			}
		}
		if next == status.StatusClaimed {
			if err := account.DebitBalance(r.Context(), tx, res.AccountID, Total(res.Items)); err != nil {
				return err
			}
		}
		if err := UpdateStatus(r.Context(), tx, res.ID, next, note); err != nil {
			return err
		}

		_ = audit.Insert(r.Context(), tx, actor, "RESERVATION_"+string(next), "reservation", res.ID,
			map[string]any{"from": res.Status, "to": next, "note": note})
		if err := notification.InsertTx(r.Context(), tx, &res.AccountID,
			"Reservation "+string(next),
			"",
			&notification.Data{Kind: notification.KindReservation, Reservation: &notification.ReservationData{
				ReservationID: res.ID, Status: string(next),
			}},
		); err != nil {
			return err
		}

		res.Status = next
		if note != "" {
			res.Note = note
		}
		updated = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type transitionError struct {
	from, to status.Status
}

func (e transitionError) Error() string {
	return "invalid state transition: " + string(e.from) + " -> " + string(e.to)
}

func errInvalidTransition(from, to status.Status) error {
	return transitionError{from: from, to: to}
}

func writeTransitionError(w http.ResponseWriter, err error) {
	var te transitionError
	switch {
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "reservation not found")
	case errors.As(err, &te):
		api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION", te.Error())
	case errors.Is(err, errDateBlocked):
		api.WriteError(w, http.StatusConflict, "DATE_BLOCKED", "claim date is blocked by restrictions")
	case errors.Is(err, account.ErrInsufficientBalance):
		api.WriteError(w, http.StatusConflict, "INSUFFICIENT_BALANCE", "wallet balance does not cover the total")
	default:
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func parseItems(reqs []lineItemRequest) ([]LineItem, error) {
	items := make([]LineItem, 0, len(reqs))
	for _, it := range reqs {
		if it.Name == "" {
			return nil, errors.New("item name is required")
		}
		if it.Qty <= 0 {
			return nil, errors.New("item qty must be positive")
		}
		price, err := parsePrice(it.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, LineItem{Name: it.Name, Price: price, Qty: it.Qty})
	}
	return items, nil
}
