// Package api is the HTTP surface of the account service. Handlers translate
// between the wire envelope and the session manager; no business rules live
// here.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/vidora/vidora/pkg/httputil"
	"github.com/vidora/vidora/pkg/media"
	"github.com/vidora/vidora/pkg/middleware"
	"github.com/vidora/vidora/pkg/observability"
	"github.com/vidora/vidora/pkg/session"
)

// Options carries the collaborators and wire settings for a Server.
type Options struct {
	Sessions *session.Manager
	Gate     *middleware.AuthGate
	Uploader media.Uploader
	Health   *observability.HealthChecker
	Logger   *observability.Logger

	// AccessLogger receives one line per request. nil disables access logs.
	AccessLogger *logrus.Logger

	// CORSOrigins lists allowed origins; empty disables CORS handling.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies, multipart uploads included.
	MaxBodyBytes int64

	// SecureCookies marks auth cookies Secure.
	SecureCookies bool

	// StaticRoot, when set, serves uploaded media from /static/.
	StaticRoot string
}

// Server represents our API server
type Server struct {
	router   *mux.Router
	handler  http.Handler
	accounts *AccountHandlers
}

// NewServer creates a new API server with all routes and middleware wired.
func NewServer(opts Options) *Server {
	s := &Server{
		router: mux.NewRouter(),
		accounts: NewAccountHandlers(
			opts.Sessions, opts.Uploader, opts.Logger, opts.SecureCookies),
	}

	s.setupRoutes(opts)

	middlewares := []func(http.Handler) http.Handler{
		httputil.RecoveryMiddleware(logrusOrDefault(opts.AccessLogger)),
		httputil.RequestIDMiddleware,
	}
	if opts.AccessLogger != nil {
		middlewares = append(middlewares, httputil.LoggingMiddleware(opts.AccessLogger))
	}
	if len(opts.CORSOrigins) > 0 {
		middlewares = append(middlewares, httputil.CORSMiddleware(opts.CORSOrigins))
	}
	if opts.MaxBodyBytes > 0 {
		middlewares = append(middlewares, httputil.MaxBytesMiddleware(opts.MaxBodyBytes))
	}

	s.handler = httputil.Chain(middlewares...)(s.router)
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes(opts Options) {
	users := s.router.PathPrefix("/api/v1/users").Subrouter()

	// Open routes
	users.HandleFunc("/register", s.accounts.register).Methods("POST")
	users.HandleFunc("/login", s.accounts.login).Methods("POST")
	users.HandleFunc("/refresh-token", s.accounts.refreshToken).Methods("POST")

	// Routes behind the auth gate
	gate := opts.Gate
	users.Handle("/logout", gate.Require(http.HandlerFunc(s.accounts.logout))).Methods("POST")
	users.Handle("/change-password", gate.Require(http.HandlerFunc(s.accounts.changePassword))).Methods("POST")
	users.Handle("/current-user", gate.Require(http.HandlerFunc(s.accounts.currentUser))).Methods("GET")
	users.Handle("/update-account", gate.Require(http.HandlerFunc(s.accounts.updateAccount))).Methods("PATCH")
	users.Handle("/avatar", gate.Require(http.HandlerFunc(s.accounts.updateAvatar))).Methods("PATCH")
	users.Handle("/cover-image", gate.Require(http.HandlerFunc(s.accounts.updateCoverImage))).Methods("PATCH")

	// Health probes
	if opts.Health != nil {
		s.router.HandleFunc("/healthz", opts.Health.Liveness).Methods("GET")
		s.router.HandleFunc("/readyz", opts.Health.Readiness).Methods("GET")
	}

	// Locally stored media
	if opts.StaticRoot != "" {
		s.router.PathPrefix("/static/").Handler(
			http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticRoot))))
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func logrusOrDefault(logger *logrus.Logger) *logrus.Logger {
	if logger != nil {
		return logger
	}
	return logrus.StandardLogger()
}
