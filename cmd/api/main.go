package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nok1969/regent-work-order-system/internal/config"
	"github.com/Nok1969/regent-work-order-system/internal/database"
	"github.com/Nok1969/regent-work-order-system/internal/repository/postgres"
	"github.com/Nok1969/regent-work-order-system/internal/router"
	"github.com/Nok1969/regent-work-order-system/internal/service"
	"github.com/Nok1969/regent-work-order-system/internal/session"
	"github.com/Nok1969/regent-work-order-system/internal/storage"
	"github.com/Nok1969/regent-work-order-system/internal/ws"
	"github.com/Nok1969/regent-work-order-system/pkg/logger"
)

func main() {
	// config + logger
	cfg := config.Load()
	l := logger.New(cfg.Env)

	ctx := context.Background()

	// db
	pool, err := database.Open(ctx, cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		l.Fatal().Err(err).Msg("db migrate failed")
	}

	// session store
	sessions, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		l.Fatal().Err(err).Msg("redis connect failed")
	}

	// attachment storage
	objects, err := storage.NewObjectStore(ctx, cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("object store init failed")
	}

	// services, constructed once and passed by reference
	repairRepo := postgres.NewRepairRepo(pool)
	userRepo := postgres.NewUserRepo(pool)
	hub := ws.NewHub(l)
	notifications := service.NewNotificationService(l, hub)
	repairs := service.NewRepairService(l, repairRepo, userRepo, notifications)
	auth := service.NewAuthService(l, userRepo, sessions, cfg.SessionSecret, cfg.SessionTTL)

	// http
	r := router.New(router.Deps{
		Log:           l,
		Cfg:           cfg,
		Auth:          auth,
		Repairs:       repairs,
		Notifications: notifications,
		RepairRepo:    repairRepo,
		UserRepo:      userRepo,
		Objects:       objects,
		Hub:           hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	l.Info().Msg("shutdown complete")
}
