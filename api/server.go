// Package api provides the local HTTP gateway for bonosportal.
//
// It exposes the session, the issuer area and the investor area as a small
// JSON API, guarded the same way the portal guards its pages, plus a
// WebSocket stream of session changes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/seenimoa/bonosportal/internal/apierr"
	"github.com/seenimoa/bonosportal/internal/app"
	"github.com/seenimoa/bonosportal/internal/config"
	"github.com/seenimoa/bonosportal/internal/guard"
	"github.com/seenimoa/bonosportal/internal/ports"
	"github.com/seenimoa/bonosportal/internal/session"
)

// Services are the application services the gateway serves.
type Services struct {
	Session      *session.Store
	Issuer       *app.IssuerBonds
	Catalog      *app.Catalog
	Calculations *app.Calculations
	// Health checks the backend for /health. Optional.
	Health ports.HealthChecker
}

// Server is the HTTP gateway.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	svc     Services
	wsHub   *WSHub
	loading app.Loading
	log     zerolog.Logger
	version string
}

// NewServer creates a configured gateway with all routes and middleware.
func NewServer(cfg *config.Config, svc Services, log zerolog.Logger, version string) *Server {
	log = log.With().Str("component", "gateway").Logger()
	s := &Server{
		cfg:     cfg,
		svc:     svc,
		wsHub:   NewWSHub(log),
		log:     log,
		version: version,
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:         s.cfg.Gateway.Addr(),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.StartStreams(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", httpSrv.Addr).Msg("gateway listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// StartStreams runs the WebSocket hub and the session forwarder until ctx
// is done. The session subscription is in place when it returns.
func (s *Server) StartStreams(ctx context.Context) {
	events, cancel := s.svc.Session.Subscribe()
	go s.wsHub.Run(ctx)
	go s.forwardSession(ctx, events, cancel)
}

// forwardSession broadcasts every session change to the WebSocket clients.
func (s *Server) forwardSession(ctx context.Context, events <-chan session.Event, cancel func()) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.wsHub.Broadcast(WSMessage{Type: "session", Data: s.sessionEvent(ev)})
		}
	}
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.Gateway.CORSOrigins) > 0 {
		origins = s.cfg.Gateway.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/login", s.handleLoginPage)
	r.With(guard.Authenticated().Middleware(s.svc.Session)).Get(guard.HomePath, s.handleHome)

	// Session
	r.Route("/session", func(r chi.Router) {
		r.Use(s.trackBusy)
		r.Get("/", s.handleSession)
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Post("/logout", s.handleLogout)
	})

	// Issuer area
	r.Route("/emisor", func(r chi.Router) {
		r.Use(guard.Issuer().Middleware(s.svc.Session), s.trackBusy)
		r.Get("/bonos", s.handleIssuerBonds)
		r.Post("/bonos", s.handleCreateBond)
		r.Delete("/bonos", s.handleDeleteBonds)
		r.Get("/bonos/{id}", s.handleIssuerBond)
		r.Put("/bonos/{id}", s.handleUpdateBond)
		r.Delete("/bonos/{id}", s.handleDeleteBond)
		r.Get("/bonos/{id}/flujo", s.handleIssuerCashFlow)
	})

	// Investor area
	r.Route("/inversor", func(r chi.Router) {
		r.Use(guard.Investor().Middleware(s.svc.Session), s.trackBusy)
		r.Get("/catalogo", s.handleCatalog)
		r.Get("/catalogo/{id}", s.handleCatalogBond)
		r.Get("/catalogo/{id}/flujo", s.handleCatalogCashFlow)
		r.Post("/catalogo/{id}/analisis", s.handleAnalysis)
		r.Get("/calculos", s.handleHistory)
		r.Post("/calculos", s.handleCreateCalculo)
		r.Delete("/calculos", s.handleDeleteCalculos)
		r.Get("/calculos/export", s.handleExportHistory)
		r.Post("/calculos/{id}/duplicar", s.handleDuplicateCalculo)
	})

	// Configuration
	r.Get("/config", s.handleGetConfig)

	// WebSocket
	r.Get("/ws/session", s.handleWebSocket)

	return r
}

// trackBusy raises the loading flag reported by /health while a request
// that may reach the backend is served.
func (s *Server) trackBusy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = s.loading.Track(func() error {
			next.ServeHTTP(w, r)
			return nil
		})
	})
}

// requestLogger logs one line per request with the chi request id.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int64("elapsed_ms", time.Since(start).Milliseconds()).
				Msg("gateway request")
		})
	}
}

// ============================================================
// Response envelope
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, APIResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// writeFailure answers with the status matching err's class and the
// message a user should see.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	level := zerolog.WarnLevel
	if status >= http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}
	s.log.WithLevel(level).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Str("class", string(apierr.ClassOf(err))).
		Err(err).
		Msg("request failed")
	writeError(w, status, apierr.UserMessage(err))
}

// statusFor maps an error class to the gateway's response status. Backend
// outages surface as 502; client errors keep the backend's own status.
func statusFor(err error) int {
	switch apierr.ClassOf(err) {
	case apierr.Validation:
		return http.StatusBadRequest
	case apierr.Authentication:
		return http.StatusUnauthorized
	case apierr.Authorization:
		return http.StatusForbidden
	case apierr.NotFound:
		return http.StatusNotFound
	case apierr.Connectivity, apierr.Server, apierr.DataShape:
		return http.StatusBadGateway
	case apierr.Client:
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.Validate(bodyError(err))
	}
	return nil
}
