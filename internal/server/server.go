package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/growthzi/apiserver/config"
	"github.com/growthzi/apiserver/internal/auth"
	"github.com/growthzi/apiserver/internal/db"
	"github.com/growthzi/apiserver/internal/events"
	"github.com/growthzi/apiserver/internal/genai"
	"github.com/growthzi/apiserver/internal/handlers"
	"github.com/growthzi/apiserver/internal/publish"
	"github.com/growthzi/apiserver/internal/services"
	"github.com/growthzi/apiserver/internal/store"
	"github.com/rs/zerolog"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *events.Publisher
	logger     zerolog.Logger
}

// New constructs a Server: opens the store, seeds the role catalog and
// default admin account, and wires every route behind the permission
// gate.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "growthzi").Logger()

	jwtSecret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	roleRepo := store.NewRoleRepository(dbConn)
	websiteRepo := store.NewWebsiteRepository(dbConn)

	bootstrap := services.NewBootstrap(roleRepo, userRepo, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, logger)
	if err := bootstrap.Run(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("bootstrap failed: %w", err)
	}

	publisher, err := newEventsPublisher(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	snapshots, err := newSnapshotPublisher(ctx, cfg.Snapshots)
	if err != nil {
		_ = dbConn.Close()
		_ = publisher.Close()
		return nil, err
	}

	// A typed nil must not reach the service as a non-nil interface.
	var snapshotPublisher services.SnapshotPublisher
	if snapshots != nil {
		snapshotPublisher = snapshots
	}

	userService := services.NewUserService(userRepo)
	roleService := services.NewRoleService(roleRepo)
	websiteService := services.NewWebsiteService(websiteRepo, genai.NewClient(cfg.GenAI), snapshotPublisher, publisher, logger)

	authorizer := auth.NewAuthorizer(jwtSecret, userRepo, roleRepo)
	gate := handlers.NewGate(authorizer, logger)

	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	authHandler := handlers.NewAuthHandler(userService, roleService, publisher, jwtSecret, tokenTTL, logger)
	websiteHandler := handlers.NewWebsiteHandler(websiteService, logger)
	adminHandler := handlers.NewAdminHandler(roleService, userService, logger)
	previewHandler := handlers.NewPreviewHandler(websiteService, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(logger),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler, gate)
	})
	router.Route("/api/websites", func(r chi.Router) {
		handlers.WebsiteRouter(r, websiteHandler, gate)
	})
	router.Route("/api/admin", func(r chi.Router) {
		handlers.AdminRouter(r, adminHandler, gate)
	})
	router.Route("/preview", func(r chi.Router) {
		handlers.PreviewRouter(r, previewHandler)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     publisher,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("starting server")
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.events != nil {
		_ = s.events.Close()
	}
	return s.httpServer.Close()
}

func newEventsPublisher(ctx context.Context, cfg config.EventsConfig) (*events.Publisher, error) {
	switch cfg.Backend {
	case "":
		return events.NewPublisher(nil, ""), nil
	case "rabbitmq":
		backend, err := events.NewRabbitMQBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		return events.NewPublisher(backend, ""), nil
	case "pubsub":
		backend, err := events.NewPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("connect pubsub: %w", err)
		}
		return events.NewPublisher(backend, ""), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

func newSnapshotPublisher(ctx context.Context, cfg config.SnapshotsConfig) (*publish.Publisher, error) {
	var objects publish.ObjectStore
	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		client, err := publish.NewMinioStore(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("connect minio: %w", err)
		}
		objects = client
	case "gcs":
		client, err := publish.NewGCSStore(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("connect gcs: %w", err)
		}
		objects = client
	default:
		return nil, fmt.Errorf("unknown snapshots backend %q", cfg.Backend)
	}

	if err := objects.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure snapshot bucket: %w", err)
	}
	return publish.NewPublisher(objects), nil
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
