package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/emiliopalmerini/punchclock/internal/ports"
	"github.com/emiliopalmerini/punchclock/internal/shared/middleware"
	"github.com/emiliopalmerini/punchclock/internal/tracking"
)

type Server struct {
	router  chi.Router
	port    int
	tracker *tracking.Service
	tokens  ports.TokenResolver
	log     hclog.Logger
}

func NewServer(tracker *tracking.Service, tokens ports.TokenResolver, log hclog.Logger, port int) *Server {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	s := &Server{
		router:  chi.NewRouter(),
		port:    port,
		tracker: tracker,
		tokens:  tokens,
		log:     log.Named("http"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(s.log))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(s.tokens, s.log))

		r.Route("/employee-tracker", func(r chi.Router) {
			r.Post("/punch-in", s.handlePunchIn)
			r.Post("/punch-out", s.handlePunchOut)
			r.Post("/break/start", s.handleStartBreak)
			r.Post("/break/end", s.handleEndBreak)
			r.Post("/activity", s.handleActivity)
			r.Post("/idle", s.handleAddIdle)
			r.Post("/idle/start", s.handleStartIdle)
			r.Post("/idle/end", s.handleEndIdle)
			r.Post("/screenshot", s.handleScreenshot)
			r.Get("/status", s.handleStatus)
			r.Get("/daily-summary", s.handleDailySummary)
			r.Get("/date-range", s.handleDateRange)
			r.Get("/sessions", s.handleSessions)
			r.Patch("/settings", s.handleSettings)
		})

		// Session-centric routes used by the desktop heartbeat.
		r.Route("/api/tracker", func(r chi.Router) {
			r.Post("/punch-in", s.handleAPIPunchIn)
			r.Route("/sessions/{sessionId}", func(r chi.Router) {
				r.Use(s.sessionTarget)
				r.Get("/", s.handleAPISession)
				r.Post("/punch-out", s.handlePunchOut)
				r.Post("/break/start", s.handleStartBreak)
				r.Post("/break/end", s.handleEndBreak)
				r.Post("/break/auto-end", s.handleAutoEndBreak)
				r.Post("/idle/start", s.handleStartIdle)
				r.Post("/idle/end", s.handleEndIdle)
				r.Post("/idle/detect", s.handleDetectIdle)
				r.Post("/activity", s.handleActivity)
			})
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Info("starting server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log.Error("server shutdown", "error", err)
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
