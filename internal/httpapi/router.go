package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"canteenadmin/internal/account"
	"canteenadmin/internal/api"
	"canteenadmin/internal/audit"
	"canteenadmin/internal/badge"
	"canteenadmin/internal/bus"
	"canteenadmin/internal/menu"
	"canteenadmin/internal/notification"
	"canteenadmin/internal/order"
	"canteenadmin/internal/reservation"
	"canteenadmin/internal/restriction"
	"canteenadmin/internal/topup"
	"canteenadmin/internal/upload"
	"canteenadmin/pkg/config"
)

type Dependencies struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Bus    *bus.Bus
	Logger *zap.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	accountsRepo := account.NewRepository(deps.DB)
	accountHandlers := account.Handlers{
		Cfg:      deps.Cfg,
		DB:       deps.DB,
		Accounts: accountsRepo,
		Bus:      deps.Bus,
		Logger:   deps.Logger,
	}
	restrictionsRepo := restriction.NewRepository(deps.DB)
	restrictionHandlers := restriction.Handlers{DB: deps.DB, Repo: restrictionsRepo, Logger: deps.Logger}
	reservationsRepo := reservation.NewRepository(deps.DB)
	reservationHandlers := reservation.Handlers{
		DB:           deps.DB,
		Repo:         reservationsRepo,
		Restrictions: restrictionsRepo,
		Bus:          deps.Bus,
		Logger:       deps.Logger,
	}
	ordersRepo := order.NewRepository(deps.DB)
	orderHandlers := order.Handlers{DB: deps.DB, Repo: ordersRepo, Logger: deps.Logger}
	topupsRepo := topup.NewRepository(deps.DB)
	topupHandlers := topup.Handlers{DB: deps.DB, Repo: topupsRepo, Bus: deps.Bus, Logger: deps.Logger}
	menuRepo := menu.NewRepository(deps.DB)
	menuHandlers := menu.Handlers{Repo: menuRepo, Bus: deps.Bus, Logger: deps.Logger}
	uploadsRepo := upload.NewRepository(deps.DB)
	uploadHandlers := upload.Handlers{Cfg: deps.Cfg, Repo: uploadsRepo, Logger: deps.Logger}
	notificationsRepo := notification.NewRepository(deps.DB)
	notificationHandlers := notification.Handlers{Repo: notificationsRepo, Logger: deps.Logger}
	auditRepo := audit.NewRepository(deps.DB)
	auditHandlers := audit.Handlers{Repo: auditRepo, Logger: deps.Logger}
	badgeHandlers := badge.Handlers{
		Accounts:      accountsRepo,
		Reservations:  reservationsRepo,
		TopUps:        topupsRepo,
		Notifications: notificationsRepo,
		Logger:        deps.Logger,
	}

	// Browser clients (admin console, student app) live on separate origins.
	cors := api.CORSMiddleware(api.CORSOptions{
		AllowedOrigins: deps.Cfg.AllowedOrigins,
		MaxAgeSeconds:  600,
	})

	// v1
	r.Route("/v1", func(r chi.Router) {
		r.Use(cors)

		// Public endpoints.
		r.Post("/register", accountHandlers.Register)
		r.Post("/auth/login", accountHandlers.Login)

		// Any approved account: own data and submissions.
		r.Group(func(r chi.Router) {
			r.Use(api.UserAuth(deps.Cfg.JWTSecret))

			r.Get("/menu", menuHandlers.List)
			r.Get("/menu/{id}", menuHandlers.Get)

			r.Post("/reservations", reservationHandlers.Create)
			r.Get("/reservations/mine", reservationHandlers.Mine)

			r.Post("/orders", orderHandlers.Create)

			r.Post("/topups", topupHandlers.Submit)

			r.Post("/uploads", uploadHandlers.Create)
			r.Get("/uploads", uploadHandlers.List)

			r.Get("/notifications", notificationHandlers.List)
			r.Get("/notifications/unread", notificationHandlers.Unread)
			r.Post("/notifications/read", notificationHandlers.MarkReadBulk)
			r.Post("/notifications/{id}/read", notificationHandlers.MarkRead)
			r.Delete("/notifications/{id}", notificationHandlers.Delete)
		})

		// Admin console.
		r.Group(func(r chi.Router) {
			r.Use(api.AdminAuth(deps.Cfg.JWTSecret))

			r.Get("/badges", badgeHandlers.Get)

			r.Get("/accounts", accountHandlers.List)
			r.Get("/accounts/{id}", accountHandlers.Get)
			r.Patch("/accounts/{id}", accountHandlers.UpdateProfile)
			r.Post("/accounts/{id}/approve", accountHandlers.Approve)
			r.Post("/accounts/{id}/reject", accountHandlers.Reject)
			r.Post("/accounts/{id}/archive", accountHandlers.Archive)
			r.Post("/accounts/{id}/restore", accountHandlers.Restore)

			r.Get("/reservations", reservationHandlers.List)
			r.Get("/reservations/{id}", reservationHandlers.Get)
			r.Post("/reservations/bulk", reservationHandlers.Bulk)
			r.Post("/reservations/{id}/approve", reservationHandlers.Approve)
			r.Post("/reservations/{id}/reject", reservationHandlers.Reject)
			r.Post("/reservations/{id}/claim", reservationHandlers.Claim)

			r.Get("/orders", orderHandlers.List)
			r.Get("/orders/{id}", orderHandlers.Get)
			r.Patch("/orders/{id}/status", orderHandlers.PatchStatus)

			r.Get("/topups", topupHandlers.List)
			r.Get("/topups/pending-count", topupHandlers.PendingCount)
			r.Get("/topups/{id}", topupHandlers.Get)
			r.Post("/topups/{id}/approve", topupHandlers.Approve)
			r.Post("/topups/{id}/reject", topupHandlers.Reject)

			r.Post("/menu", menuHandlers.Create)
			r.Patch("/menu/{id}", menuHandlers.Update)
			r.Patch("/menu/{id}/availability", menuHandlers.SetAvailability)
			r.Delete("/menu/{id}", menuHandlers.Delete)

			r.Get("/restrictions", restrictionHandlers.Get)
			r.Put("/restrictions", restrictionHandlers.Put)

			r.Get("/audit", auditHandlers.List)
		})
	})

	// Uploaded files are served directly; names are random so the URLs are
	// unguessable but not authenticated.
	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.Cfg.UploadDir)))
	r.Get("/uploads/*", fs.ServeHTTP)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})

	return r
}
