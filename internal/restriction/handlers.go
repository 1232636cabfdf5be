package restriction

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"canteenadmin/internal/api"
	"canteenadmin/internal/audit"
	"canteenadmin/pkg/db"
)

type Handlers struct {
	DB     *pgxpool.Pool
	Repo   *Repository
	Logger *zap.Logger
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	set, err := h.Repo.Load(r.Context())
	if err != nil {
		h.Logger.Error("load restrictions", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, set)
}

type putRequest struct {
	Ranges []struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"ranges"`
	Months []struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	} `json:"months"`
	Weekdays []int `json:"weekdays"`
}

const dateLayout = "2006-01-02"

// Put replaces the whole rule set with the submitted one. Ranges are
// normalized on insert and duplicate month/weekday rules are rejected.
func (h Handlers) Put(w http.ResponseWriter, r *http.Request) {
	admin := api.IdentityFromContext(r.Context())
	if admin == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing admin identity")
		return
	}

	var req putRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	var set RuleSet
	for _, rg := range req.Ranges {
		from, err := time.Parse(dateLayout, rg.From)
		if err != nil {
			api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "range dates must be YYYY-MM-DD", "ranges")
			return
		}
		to, err := time.Parse(dateLayout, rg.To)
		if err != nil {
			api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "range dates must be YYYY-MM-DD", "ranges")
			return
		}
		set.AddRange(from, to)
	}
	for _, m := range req.Months {
		if m.Month < 1 || m.Month > 12 {
			api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "month must be 1-12", "months")
			return
		}
		if err := set.AddMonth(m.Year, time.Month(m.Month)); err != nil {
			if errors.Is(err, ErrDuplicateMonth) {
				api.WriteFieldError(w, http.StatusBadRequest, "DUPLICATE_MONTH_RULE", "duplicate month restriction", "months")
				return
			}
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
			return
		}
	}
	for _, wd := range req.Weekdays {
		if wd < 0 || wd > 6 {
			api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "weekday must be 0-6", "weekdays")
			return
		}
		if err := set.AddWeekday(time.Weekday(wd)); err != nil {
			api.WriteFieldError(w, http.StatusBadRequest, "DUPLICATE_WEEKDAY_RULE", "duplicate weekday restriction", "weekdays")
			return
		}
	}

	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		if err := Replace(r.Context(), tx, &set); err != nil {
			return err
		}
		return audit.Insert(r.Context(), tx, admin.Email, "RESTRICTIONS_REPLACED", "restriction", "",
			map[string]any{"ranges": len(set.Ranges), "months": len(set.Months), "weekdays": len(set.Weekdays)})
	})
	if err != nil {
		h.Logger.Error("save restrictions", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	api.WriteJSON(w, http.StatusOK, &set)
}
