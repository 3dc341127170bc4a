package cli

import (
	"context"
	"testing"

	"github.com/emiliopalmerini/punchclock/internal/domain"
)

func TestServeDoesNotSweepByDefault(t *testing.T) {
	flag := serveCmd.Flags().Lookup("sweep")
	if flag == nil {
		t.Fatal("serve has no --sweep flag")
	}
	if flag.DefValue != "false" {
		t.Errorf("--sweep default = %s, want false", flag.DefValue)
	}
}

func TestSweepEnabled(t *testing.T) {
	tests := []struct {
		name      string
		policy    string
		requested bool
		want      bool
	}{
		{"simple, not requested", domain.PolicySimple, false, false},
		{"simple, requested", domain.PolicySimple, true, false},
		{"grace, not requested", domain.PolicyGrace, false, false},
		{"grace, requested", domain.PolicyGrace, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testEnv(t)
			cfg.BreakPolicy = tt.policy
			app, err := NewAppContext(context.Background(), cfg, nil, nil)
			if err != nil {
				t.Fatalf("NewAppContext: %v", err)
			}
			defer app.Close()

			if got := sweepEnabled(tt.requested, app); got != tt.want {
				t.Errorf("sweepEnabled(%v) = %v, want %v", tt.requested, got, tt.want)
			}
		})
	}
}
