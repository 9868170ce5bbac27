// Package server exposes the application over HTTP: authentication,
// profiles, traveler search and the two generation endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/safepassage/safepassage/pkg/auth"
	"github.com/safepassage/safepassage/pkg/domain"
	"github.com/safepassage/safepassage/pkg/llm"
)

// ProfileStore is the profile access the server needs
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	ListProfiles(ctx context.Context) ([]domain.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, upd *domain.ProfileUpdate) (*domain.UserProfile, error)
}

// Generator produces itineraries and icebreakers
type Generator interface {
	Itinerary(ctx context.Context, req llm.ItineraryRequest) (*domain.ItineraryResult, error)
	Icebreaker(ctx context.Context, req llm.IcebreakerRequest) (*domain.IcebreakerResult, error)
}

// Authenticator handles the sign-up/sign-in/session lifecycle
type Authenticator interface {
	SignUp(ctx context.Context, email, password string, profile *domain.UserProfile) (*auth.Session, *domain.UserProfile, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, *domain.UserProfile, error)
	SignOut(ctx context.Context, token string) error
	Session(token string) (userID string, demo bool, err error)
}

// Config holds server settings
type Config struct {
	Listen      string
	Timeout     time.Duration
	ResultDelay time.Duration // artificial search delay, zero disables
	Version     string
	Debug       bool
	DemoMode    bool
}

// Server represents HTTP server instance
type Server struct {
	cfg       Config
	store     ProfileStore
	generator Generator
	auth      Authenticator

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// New initializes a new server instance
func New(cfg Config, store ProfileStore, generator Generator, authSvc Authenticator) *Server {
	s := &Server{
		cfg:       cfg,
		store:     store,
		generator: generator,
		auth:      authSvc,
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	log.Printf("[INFO] starting server on %s", s.cfg.Listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Timeout,
		WriteTimeout: s.cfg.Timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("safepassage", "safepassage", s.cfg.Version))
	s.router.Use(rest.Ping)

	if s.cfg.Debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)

		r.HandleFunc("POST /auth/signup", s.signUpHandler)
		r.HandleFunc("POST /auth/signin", s.signInHandler)
		r.HandleFunc("POST /auth/signout", s.signOutHandler)

		// everything below needs a valid session
		r.With(s.authMiddleware).Route(func(priv *routegroup.Bundle) {
			priv.HandleFunc("GET /session", s.sessionHandler)
			priv.HandleFunc("GET /profile", s.profileHandler)
			priv.HandleFunc("PUT /profile", s.updateProfileHandler)
			priv.HandleFunc("GET /travelers", s.travelersHandler)
			priv.HandleFunc("POST /search", s.searchHandler)
			priv.HandleFunc("POST /itinerary", s.itineraryHandler)
			priv.HandleFunc("POST /icebreaker", s.icebreakerHandler)
		})
	})
}
