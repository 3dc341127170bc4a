package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/shared/middleware"
	"github.com/emiliopalmerini/punchclock/internal/tracking"
)

type sessionKey struct{}

// target is the session a request acts on: the caller's open session, or
// the one named in the path on session-centric routes.
func target(r *http.Request) tracking.Target {
	tg := tracking.Employee(middleware.EmployeeID(r))
	if sid, ok := r.Context().Value(sessionKey{}).(string); ok {
		tg.SessionID = sid
	}
	return tg
}

// sessionTarget resolves {sessionId} and rejects sessions that belong to
// another employee as not found.
func (s *Server) sessionTarget(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := chi.URLParam(r, "sessionId")
		owner, _, err := s.tracker.LookupSession(r.Context(), sid)
		if err != nil {
			s.fail(w, err)
			return
		}
		if owner != middleware.EmployeeID(r) {
			s.fail(w, domain.ErrSessionNotFound)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleAPIPunchIn(w http.ResponseWriter, r *http.Request) {
	session, status, err := s.tracker.PunchIn(r.Context(), target(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{"sessionId": session.ID, "session": session, "status": status})
}

func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	session, err := s.tracker.Session(r.Context(), target(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{"session": session})
}

func (s *Server) handleAutoEndBreak(w http.ResponseWriter, r *http.Request) {
	b, ended, err := s.tracker.AutoEndBreak(r.Context(), target(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{"ended": ended, "break": b})
}

func (s *Server) handleDetectIdle(w http.ResponseWriter, r *http.Request) {
	p, detected, err := s.tracker.DetectIdle(r.Context(), target(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{"detected": detected, "idlePeriod": p})
}
