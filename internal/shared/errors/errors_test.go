package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"conflict", Conflict("busy"), http.StatusConflict},
		{"unauthorized", Unauthorized("who"), http.StatusUnauthorized},
		{"internal", Internal("boom", stderrors.New("disk")), http.StatusInternalServerError},
		{"plain", stderrors.New("plain"), http.StatusInternalServerError},
		{"wrapped conflict", fmt.Errorf("punch in: %w", Conflict("busy")), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSentinelIdentity(t *testing.T) {
	sentinel := Conflict("already active")
	wrapped := fmt.Errorf("service: %w", sentinel)

	if !stderrors.Is(wrapped, sentinel) {
		t.Fatal("expected errors.Is to find the sentinel")
	}
	if !Is(wrapped, KindConflict) {
		t.Fatal("expected conflict kind")
	}
	if Is(nil, KindConflict) {
		t.Fatal("nil error must not match any kind")
	}
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := Internal("save tracker", stderrors.New("connection reset"))
	if got := Message(err); got != "internal server error" {
		t.Errorf("Message() = %q", got)
	}
	if got := Message(Validation("idleSeconds must be positive")); got != "idleSeconds must be positive" {
		t.Errorf("Message() = %q", got)
	}
}

func TestHandleError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, hclog.NewNullLogger(), NotFound("session not found"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["message"] != "session not found" {
		t.Errorf("message = %v", body["message"])
	}
}
