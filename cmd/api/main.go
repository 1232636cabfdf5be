package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"canteenadmin/internal/account"
	"canteenadmin/internal/bus"
	"canteenadmin/internal/httpapi"
	"canteenadmin/internal/notification"
	"canteenadmin/pkg/config"
	"canteenadmin/pkg/db"
)

func main() {
	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.AppEnv == "dev" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("db open", zap.Error(err))
	}
	defer pool.Close()

	if cfg.MigrationsPath != "" {
		if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Fatal("upload dir", zap.Error(err))
	}

	if err := bootstrapAdmin(ctx, cfg, account.NewRepository(pool), logger); err != nil {
		logger.Fatal("bootstrap admin", zap.Error(err))
	}

	events := bus.New()
	notifier := &notification.Notifier{
		Repo:   notification.NewRepository(pool),
		Logger: logger,
	}
	stopNotifier := notifier.Start(events)
	defer stopNotifier()

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:    cfg,
		DB:     pool,
		Bus:    events,
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}

// bootstrapAdmin creates the first admin account from BOOTSTRAP_ADMIN_* when
// the database has none, so a fresh deployment is reachable through the
// console without manual SQL.
func bootstrapAdmin(ctx context.Context, cfg config.Config, repo *account.Repository, logger *zap.Logger) error {
	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		return nil
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a, err := repo.EnsureAdmin(ctx, "Administrator", cfg.BootstrapAdminEmail, string(hash))
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return nil
		}
		return err
	}
	logger.Info("bootstrap admin created", zap.String("email", a.Email))
	return nil
}
