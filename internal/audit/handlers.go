package audit

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"canteenadmin/internal/api"
)

type Handlers struct {
	Repo   *Repository
	Logger *zap.Logger
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.Repo.ListRecent(r.Context(), limit)
	if err != nil {
		h.Logger.Error("list audit log", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
