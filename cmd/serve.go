package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/nikhil/teamtasks/internal/auth"
	"github.com/nikhil/teamtasks/internal/policy"
	"github.com/nikhil/teamtasks/internal/realtime"
	"github.com/nikhil/teamtasks/internal/repository"
	"github.com/nikhil/teamtasks/internal/routes"
	authService "github.com/nikhil/teamtasks/internal/service/auth"
	taskService "github.com/nikhil/teamtasks/internal/service/task"
	teamService "github.com/nikhil/teamtasks/internal/service/team"
	profileService "github.com/nikhil/teamtasks/internal/service/users"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, db.Close())
		log.Sync()
	}()

	if cfg.IsProduction() && cfg.CORSAllowedOrigins == "*" {
		log.Warn("CORS allows any origin in production", "setting", "CORS_ALLOWED_ORIGINS")
	}

	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	if err != nil {
		return err
	}

	store := repository.NewStore(db)
	authSvc := authService.NewAuthService(store, tokens, log.Named("auth-service"), cfg.BcryptCost, cfg.AdminEmails)
	if err := authSvc.SyncAdmins(ctx); err != nil {
		return err
	}

	var hub *realtime.Hub
	var publisher realtime.Publisher = realtime.NopPublisher{}
	if cfg.RealtimeEnabled {
		hub = realtime.NewHub(log.Named("realtime"))
		defer hub.Close()
		publisher = hub
	}

	handler := routes.RegisterAllRoutes(&routes.Deps{
		Store:         store,
		Tokens:        tokens,
		Policy:        policy.Default(),
		Log:           log,
		Auth:          authSvc,
		Profiles:      profileService.NewProfileService(store, log.Named("profile-service")),
		Teams:         teamService.NewTeamService(store, publisher, log.Named("team-service")),
		Tasks:         taskService.NewTaskService(store, publisher, log.Named("task-service")),
		Hub:           hub,
		AllowedOrigin: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server is running", "addr", cfg.HTTPAddr, "env", cfg.Env, "db", cfg.DB.Driver)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
