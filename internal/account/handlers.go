package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"canteenadmin/internal/api"
	"canteenadmin/internal/audit"
	"canteenadmin/internal/bus"
	"canteenadmin/internal/listview"
	"canteenadmin/pkg/config"
	"canteenadmin/pkg/db"
)

type Handlers struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Accounts *Repository
	Bus      *bus.Bus
	Logger   *zap.Logger
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// Register accepts a new account registration from the student app. The
// account starts pending and shows up in the admin approval queue.
func (h Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "name is required", "name")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "valid email is required", "email")
		return
	}
	if len(req.Password) < 8 {
		api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "password must be at least 8 characters", "password")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	acc, err := h.Accounts.Create(r.Context(), req.Name, req.Email, strings.TrimSpace(req.Phone), string(hash), RoleStandard)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			api.WriteFieldError(w, http.StatusConflict, "EMAIL_TAKEN", "email already registered", "email")
			return
		}
		h.Logger.Error("create account", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	h.Bus.Publish(bus.TopicRegistrationSubmitted, bus.RegistrationSubmitted{AccountID: acc.ID, Name: acc.Name})

	api.WriteJSON(w, http.StatusCreated, acc)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}

func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	acc, err := h.Accounts.GetByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
		return
	}
	if acc.State != StateApproved {
		api.WriteError(w, http.StatusForbidden, "ACCOUNT_NOT_APPROVED", "account is not approved")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)) != nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
		return
	}

	ttl := time.Duration(h.Cfg.SessionTTLMinutes) * time.Minute
	token, err := api.IssueSessionToken(h.Cfg.JWTSecret, acc.ID, acc.Email, string(acc.Role), ttl, time.Now())
	if err != nil {
		h.Logger.Error("issue session token", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	api.WriteJSON(w, http.StatusOK, loginResponse{Token: token, Account: acc})
}

// List returns accounts through the shared search/filter/sort pipeline.
// Query params: search, state, zero_balance, sort (name|email|balance|created_at),
// order (asc|desc).
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	var states []State
	if s := r.URL.Query().Get("state"); s != "" {
		states = append(states, State(s))
	}

	items, err := h.Accounts.List(r.Context(), states...)
	if err != nil {
		h.Logger.Error("list accounts", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	q := listview.Query[Account]{
		Search: r.URL.Query().Get("search"),
		SearchFields: []func(Account) string{
			func(a Account) string { return a.ID },
			func(a Account) string { return a.DisplayID },
			func(a Account) string { return a.Name },
			func(a Account) string { return a.Email },
			func(a Account) string { return a.Phone },
			func(a Account) string { return a.Balance.StringFixed(2) },
		},
	}
	if r.URL.Query().Get("zero_balance") == "true" {
		q.Filters = append(q.Filters, func(a Account) bool { return a.Balance.IsZero() })
	}
	switch r.URL.Query().Get("sort") {
	case "name":
		q.SortBy = listview.ByString(func(a Account) string { return a.Name })
	case "email":
		q.SortBy = listview.ByString(func(a Account) string { return a.Email })
	case "balance":
		q.SortBy = listview.ByNumber(func(a Account) float64 { return a.Balance.InexactFloat64() })
	case "created_at":
		q.SortBy = listview.ByTime(func(a Account) time.Time { return a.CreatedAt })
	}
	if r.URL.Query().Get("order") == "desc" {
		q.SortOrder = listview.Descending
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"items": listview.View(items, q)})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	acc, err := h.Accounts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "account not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, acc)
}

type transitionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Approve moves a pending registration into the active list and notifies the
// new account holder.
func (h Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "APPROVE", func(a *Account) error { return CanApprove(a) }, StateApproved)
}

// Restore brings an archived account back to approved.
func (h Handlers) Restore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "RESTORE", func(a *Account) error { return CanRestore(a) }, StateApproved)
}

// Archive soft-removes an approved account. Requires zero balance and a
// non-admin role; restorable later.
func (h Handlers) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "ARCHIVE", func(a *Account) error { return CanArchive(a) }, StateArchived)
}

func (h Handlers) transition(w http.ResponseWriter, r *http.Request, action string, check func(*Account) error, next State) {
	id := chi.URLParam(r, "id")
	admin := api.IdentityFromContext(r.Context())
	if admin == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing admin identity")
		return
	}

	var req transitionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	var updated *Account
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		acc, err := GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return err
		}
		if err := check(acc); err != nil {
			writePreconditionError(w, err)
			return pgx.ErrTxCommitRollback
		}
		if err := UpdateState(r.Context(), tx, acc.ID, next); err != nil {
			return err
		}
		_ = audit.Insert(r.Context(), tx, admin.Email, action, "account", acc.ID,
			map[string]any{"from": acc.State, "to": next, "reason": req.Reason})

		acc.State = next
		updated = acc
		return nil
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "account not found")
			return
		}
		h.Logger.Error("account transition", zap.String("action", action), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	api.WriteJSON(w, http.StatusOK, updated)
}

// Reject permanently removes a pending registration. Distinct from Archive:
// there is nothing to restore afterwards.
func (h Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	admin := api.IdentityFromContext(r.Context())
	if admin == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing admin identity")
		return
	}

	var req transitionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		acc, err := GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return err
		}
		if err := CanReject(acc); err != nil {
			writePreconditionError(w, err)
			return pgx.ErrTxCommitRollback
		}
		if err := DeletePending(r.Context(), tx, acc.ID); err != nil {
			return err
		}
		return audit.Insert(r.Context(), tx, admin.Email, "REJECT", "account", acc.ID,
			map[string]any{"email": acc.Email, "reason": req.Reason})
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "account not found")
			return
		}
		h.Logger.Error("reject account", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateProfileRequest struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// UpdateProfile patches mutable profile fields and broadcasts the changed
// fields so open views can patch their copy without a refetch.
func (h Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	var updated *Account
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		acc, err := GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return err
		}
		if err := UpdateProfile(r.Context(), tx, acc.ID, req.Name, req.Phone, req.PhotoURL); err != nil {
			return err
		}
		updated = acc
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "account not found")
			return
		}
		h.Logger.Error("update profile", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	// Refetch to return server truth after the write.
	acc, err := h.Accounts.GetByID(r.Context(), updated.ID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	fields := map[string]string{}
	if req.Name != "" {
		fields["name"] = acc.Name
	}
	if req.Phone != "" {
		fields["phone"] = acc.Phone
	}
	if req.PhotoURL != "" {
		fields["photoUrl"] = acc.PhotoURL
	}
	h.Bus.Publish(bus.TopicProfileUpdated, bus.ProfileUpdated{AccountID: acc.ID, Fields: fields})

	api.WriteJSON(w, http.StatusOK, acc)
}

func writePreconditionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAdminProtected):
		api.WriteError(w, http.StatusConflict, "ADMIN_ACCOUNT_PROTECTED", "admin accounts cannot be removed")
	case errors.Is(err, ErrNonZeroBalance):
		api.WriteError(w, http.StatusConflict, "NONZERO_BALANCE", "balance must be zero")
	case errors.Is(err, ErrNotPending), errors.Is(err, ErrNotApproved), errors.Is(err, ErrNotArchived):
		api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION", err.Error())
	default:
		api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION", "transition not allowed")
	}
}
