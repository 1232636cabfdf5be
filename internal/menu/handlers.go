package menu

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"canteenadmin/internal/api"
	"canteenadmin/internal/bus"
	"canteenadmin/internal/listview"
)

type Handlers struct {
	Repo   *Repository
	Bus    *bus.Bus
	Logger *zap.Logger
}

type itemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Category    string `json:"category,omitempty"`
	Available   *bool  `json:"available,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

func (req itemRequest) toItem() (*Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || price.IsNegative() {
		return nil, errors.New("price must be a non-negative number")
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	return &Item{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Price:       price,
		Category:    strings.TrimSpace(req.Category),
		Available:   available,
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}, nil
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	it, err := req.toItem()
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	created, err := h.Repo.Insert(r.Context(), it)
	if err != nil {
		h.Logger.Error("create menu item", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	h.Bus.Publish(bus.TopicMenuUpdated, bus.MenuUpdated{})
	api.WriteJSON(w, http.StatusCreated, created)
}

func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	it, err := req.toItem()
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	updated, err := h.Repo.Update(r.Context(), chi.URLParam(r, "id"), it)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "menu item not found")
			return
		}
		h.Logger.Error("update menu item", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	h.Bus.Publish(bus.TopicMenuUpdated, bus.MenuUpdated{})
	api.WriteJSON(w, http.StatusOK, updated)
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

func (h Handlers) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	updated, err := h.Repo.SetAvailability(r.Context(), chi.URLParam(r, "id"), req.Available)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "menu item not found")
			return
		}
		h.Logger.Error("set availability", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	h.Bus.Publish(bus.TopicMenuUpdated, bus.MenuUpdated{})
	api.WriteJSON(w, http.StatusOK, updated)
}

// List serves both the admin editor and the student menu. Query params:
// search, available_only, category, sort (name|price), order.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		h.Logger.Error("list menu items", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	q := listview.Query[Item]{
		Search: r.URL.Query().Get("search"),
		SearchFields: []func(Item) string{
			func(it Item) string { return it.Name },
			func(it Item) string { return it.Description },
			func(it Item) string { return it.Category },
		},
	}
	if r.URL.Query().Get("available_only") == "true" {
		q.Filters = append(q.Filters, func(it Item) bool { return it.Available })
	}
	if cat := r.URL.Query().Get("category"); cat != "" {
		q.Filters = append(q.Filters, func(it Item) bool { return strings.EqualFold(it.Category, cat) })
	}
	switch r.URL.Query().Get("sort") {
	case "name":
		q.SortBy = listview.ByString(func(it Item) string { return it.Name })
	case "price":
		q.SortBy = listview.ByNumber(func(it Item) float64 { return it.Price.InexactFloat64() })
	}
	if r.URL.Query().Get("order") == "desc" {
		q.SortOrder = listview.Descending
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"items": listview.View(items, q)})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	it, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "menu item not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, it)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "menu item not found")
		return
	}
	h.Bus.Publish(bus.TopicMenuUpdated, bus.MenuUpdated{})
	w.WriteHeader(http.StatusNoContent)
}
