package web

import (
	"net/http"
	"strconv"

	"github.com/emiliopalmerini/punchclock/internal/domain"
	apperrors "github.com/emiliopalmerini/punchclock/internal/shared/errors"
	"github.com/emiliopalmerini/punchclock/internal/shared/middleware"
	"github.com/emiliopalmerini/punchclock/internal/tracking"
)

func (s *Server) handlePunchIn(w http.ResponseWriter, r *http.Request) {
	session, status, err := s.tracker.PunchIn(r.Context(), target(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{"session": session, "status": status})
}

func (s *Server) handlePunchOut(w http.ResponseWriter, r *http.Request) {
	ended, status, err := s.tracker.PunchOut(r.Context(), target(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{"endedSession": ended, "status": status})
}

type startBreakRequest struct {
	BreakType       string `json:"breakType"`
	Reason          string `json:"reason"`
	DurationMinutes int    `json:"durationMinutes"`
}

func (s *Server) handleStartBreak(w http.ResponseWriter, r *http.Request) {
	var req startBreakRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if req.DurationMinutes < 0 {
		s.fail(w, apperrors.Validation("durationMinutes must not be negative"))
		return
	}

	b, session, err := s.tracker.StartBreak(r.Context(), target(r), tracking.BreakRequest{
		Type:    domain.BreakType(req.BreakType),
		Reason:  req.Reason,
		Minutes: req.DurationMinutes,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{"break": b, "currentSession": session})
}

func (s *Server) handleEndBreak(w http.ResponseWriter, r *http.Request) {
	b, session, err := s.tracker.EndBreak(r.Context(), target(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{"endedBreak": b, "currentSession": session})
}

type activityRequest struct {
	Keystrokes  int64 `json:"keystrokes"`
	MouseClicks int64 `json:"mouseClicks"`
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	session, err := s.tracker.RecordActivity(r.Context(), target(r), req.Keystrokes, req.MouseClicks)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{
		"keystrokes":   session.Keystrokes,
		"mouseClicks":  session.MouseClicks,
		"lastActivity": session.LastActivity,
	})
}

type idleRequest struct {
	IdleSeconds float64 `json:"idleSeconds"`
}

func (s *Server) handleAddIdle(w http.ResponseWriter, r *http.Request) {
	var req idleRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	ms := int64(req.IdleSeconds * 1000)
	if ms <= 0 {
		s.fail(w, apperrors.Validation("idleSeconds must be positive"))
		return
	}
	session, err := s.tracker.AddIdleTime(r.Context(), target(r), ms)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{"idleTime": session.IdleTimeMs})
}

func (s *Server) handleStartIdle(w http.ResponseWriter, r *http.Request) {
	p, err := s.tracker.StartIdle(r.Context(), target(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{"idlePeriod": p})
}

func (s *Server) handleEndIdle(w http.ResponseWriter, r *http.Request) {
	p, session, err := s.tracker.EndIdle(r.Context(), target(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{"idlePeriod": p, "idleTime": session.IdleTimeMs, "currentSession": session})
}

type screenshotRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	var req screenshotRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if req.URL == "" {
		s.fail(w, apperrors.Validation("url is required"))
		return
	}
	shot, err := s.tracker.RecordScreenshot(r.Context(), target(r), req.URL)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{"screenshot": shot})
}

// statusResponse flattens the status next to the success flag.
type statusResponse struct {
	Success bool `json:"success"`
	domain.Status
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.tracker.Status(r.Context(), middleware.EmployeeID(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Status: status})
}

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.tracker.Today()
	}
	summary, err := s.tracker.DailySummary(r.Context(), middleware.EmployeeID(r), date)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, payload{"summary": summary})
}

func (s *Server) handleDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summaries, err := s.tracker.DateRange(r.Context(), middleware.EmployeeID(r), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if summaries == nil {
		summaries = []domain.DailySummary{}
	}
	s.ok(w, payload{"summaries": summaries})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.fail(w, apperrors.Validation("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	sessions, err := s.tracker.Sessions(r.Context(), middleware.EmployeeID(r), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	if sessions == nil {
		sessions = []domain.WorkSession{}
	}
	s.ok(w, payload{"sessions": sessions})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := decode(r, &patch); err != nil {
		s.fail(w, err)
		return
	}
	settings, applied, err := s.tracker.UpdateSettings(r.Context(), middleware.EmployeeID(r), patch)
	if err != nil {
		s.fail(w, err)
		return
	}
	if applied == nil {
		applied = []string{}
	}
	s.ok(w, payload{"settings": settings, "applied": applied})
}
