package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/LexiconIndonesia/dqaas-registration-service/common/config"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/db"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/metrics"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/services"
	"github.com/LexiconIndonesia/dqaas-registration-service/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type AppHttpServer struct {
	router       *chi.Mux
	cfg          config.Config
	server       *http.Server
	db           handler.Pinger
	registration services.DqRegistrationService
}

func NewAppHttpServer(cfg config.Config) (*AppHttpServer, error) {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Cors.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(2 * time.Minute))

	server := &AppHttpServer{
		router: r,
		cfg:    cfg,
	}
	return server, nil
}

// SetDB sets the database dependency used by the health check
func (s *AppHttpServer) SetDB(db *db.DB) {
	s.db = db
}

// SetRegistrationService sets the registration service dependency
func (s *AppHttpServer) SetRegistrationService(svc services.DqRegistrationService) {
	s.registration = svc
}

func (s *AppHttpServer) setupRoute() error {
	r := s.router

	if s.db == nil {
		return errors.New("DB dependency not set")
	}
	if s.registration == nil {
		return errors.New("registration service dependency not set")
	}

	// API Documentation with Swagger
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // The URL pointing to API definition
	))

	r.Handle("/metrics", metrics.Handler())

	healthHandler := handler.NewHealthHandler(s.db)
	registrationHandler := handler.NewDqRegistrationHandler(s.registration)

	r.Mount("/health", healthHandler.Router())
	r.Mount("/registration", registrationHandler.Router())
	return nil
}

func (s *AppHttpServer) start() error {
	r := s.router
	cfg := s.cfg
	log.Info().Msg("Starting up server...")

	s.server = &http.Server{
		Addr:         cfg.Listen.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// This starts the server in a goroutine from main
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// stop gracefully shuts down the server
func (s *AppHttpServer) stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
