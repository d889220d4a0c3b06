package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/openlegal/platform/internal/account"
	"github.com/openlegal/platform/internal/advice"
	"github.com/openlegal/platform/internal/appointment"
	"github.com/openlegal/platform/internal/audit"
	"github.com/openlegal/platform/internal/counter"
	"github.com/openlegal/platform/internal/event"
	"github.com/openlegal/platform/internal/evidence"
	"github.com/openlegal/platform/internal/identity"
	"github.com/openlegal/platform/internal/mail"
	"github.com/openlegal/platform/internal/observation"
	"github.com/openlegal/platform/internal/process"
	"github.com/openlegal/platform/internal/profile"
	"github.com/openlegal/platform/internal/reminder"
	"github.com/openlegal/platform/internal/shared/auth"
	"github.com/openlegal/platform/internal/shared/config"
	"github.com/openlegal/platform/internal/shared/database"
	"github.com/openlegal/platform/internal/shared/metrics"
	secmiddleware "github.com/openlegal/platform/internal/shared/middleware"
	"github.com/openlegal/platform/internal/shared/web"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	ids := counter.NewAllocator(db)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	mailer := mail.NewSMTPSender(cfg.Mail)
	gate := auth.Middleware(cfg.Auth.JWTSecret)
	limiter := secmiddleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	uploads := evidence.NewDiskStore(cfg.Upload.Dir)

	accountRepo := account.NewRepository(db)
	processRepo := process.NewRepository(db)
	eventRepo := event.NewRepository(db)
	evidenceRepo := evidence.NewRepository(db)
	observationRepo := observation.NewRepository(db)
	appointmentRepo := appointment.NewRepository(db)
	reminderRepo := reminder.NewRepository(db)
	adviceRepo := advice.NewRepository(db)
	auditRepo := audit.NewRepository(db)
	profileRepo := profile.NewRepository(db)

	scheduler := reminder.NewScheduler(reminderRepo, ids)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(secmiddleware.RequestLogger(logger))
	r.Use(metrics.Middleware)

	corsCfg := secmiddleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(secmiddleware.CORS(corsCfg))

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(db))
	r.Handle("/metrics", metrics.Handler())

	r.Mount("/auth", identity.NewHandler(accountRepo, issuer, logger).Routes())

	modules := []chi.Router{
		account.NewHandler(accountRepo, ids, issuer, mailer, logger, gate, limiter.Middleware).Routes(),
		process.NewHandler(processRepo, ids, logger, gate).Routes(),
		event.NewHandler(eventRepo, ids, logger, gate).Routes(),
		evidence.NewHandler(evidenceRepo, uploads, ids, cfg.Upload.MaxBytes, logger, gate).Routes(),
		observation.NewHandler(observationRepo, ids, logger, gate).Routes(),
		appointment.NewHandler(appointmentRepo, scheduler, ids, logger, gate).Routes(),
		reminder.NewHandler(reminderRepo, ids, mailer, logger, gate).Routes(),
		advice.NewHandler(adviceRepo, ids, logger, gate).Routes(),
		audit.NewHandler(auditRepo, ids, logger, gate).Routes(),
		profile.NewHandler(profileRepo, uploads, ids, cfg.Upload.MaxBytes, logger, gate).Routes(),
	}
	r.Mount("/legalsystem", moduleMux(modules))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
		}
		close(done)
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}

	<-done
	logger.Info().Msg("server stopped")
}

// moduleMux dispatches to the first module router whose patterns match
// the request. Module routes share one flat path space under the mount
// point, so they cannot be separated by prefix.
func moduleMux(routers []chi.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path
		if rctx := chi.RouteContext(req.Context()); rctx != nil && rctx.RoutePath != "" {
			path = rctx.RoutePath
		}
		for _, router := range routers {
			if router.Match(chi.NewRouteContext(), req.Method, path) {
				router.ServeHTTP(w, req)
				return
			}
		}
		http.NotFound(w, req)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	web.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func readyHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			web.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "not ready",
				"database": err.Error(),
			})
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
