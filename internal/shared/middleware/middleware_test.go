package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestAuth(t *testing.T) {
	tokens := StaticTokens{"tok-a": "emp-a"}
	var seen string
	h := Auth(tokens, hclog.NewNullLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = EmployeeID(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantEmp    string
	}{
		{"valid token", "Bearer tok-a", http.StatusNoContent, "emp-a"},
		{"lowercase scheme", "bearer tok-a", http.StatusNoContent, "emp-a"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic tok-a", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer tok-z", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/employee-tracker/status", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if seen != tt.wantEmp {
				t.Errorf("employee = %q, want %q", seen, tt.wantEmp)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				var body map[string]any
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("decode body: %v", err)
				}
				if body["success"] != false || body["message"] == "" {
					t.Errorf("body = %v", body)
				}
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := hclog.New(&hclog.LoggerOptions{Output: &buf, JSONFormat: true})
	h := Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/employee-tracker/punch-in", nil))

	out := buf.String()
	if !strings.Contains(out, `"status":418`) || !strings.Contains(out, `"path":"/employee-tracker/punch-in"`) {
		t.Errorf("log line = %s", out)
	}
}
