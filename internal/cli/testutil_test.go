package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/infrastructure/config"
	"github.com/emiliopalmerini/punchclock/internal/tracking"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

// testEnv points the configuration at a fresh SQLite file and returns the
// loaded config.
func testEnv(t *testing.T) *config.Config {
	t.Helper()

	t.Setenv("PUNCHCLOCK_STORE", config.StoreSQLite)
	t.Setenv("PUNCHCLOCK_DATABASE_URL", "file:"+filepath.Join(t.TempDir(), "punchclock.db"))
	t.Setenv("PUNCHCLOCK_TIMEZONE", "Asia/Kolkata")
	t.Setenv("PUNCHCLOCK_LOG_LEVEL", "off")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// seed runs fn against a tracking service whose clock starts at 09:00 on
// 2 March 2026 in Asia/Kolkata.
func seed(t *testing.T, cfg *config.Config, fn func(svc *tracking.Service, clock *fixedClock)) {
	t.Helper()

	ctx := context.Background()
	app, err := NewAppContext(ctx, cfg, nil, nil)
	if err != nil {
		t.Fatalf("Failed to open app: %v", err)
	}
	defer app.Close()

	clock := &fixedClock{now: time.Date(2026, time.March, 2, 9, 0, 0, 0, cfg.Location())}
	svc := tracking.NewService(tracking.Options{
		Repo:  app.Repo,
		Clock: clock,
		Rules: domain.Rules{Policy: domain.SimplePolicy{Catalog: domain.DefaultBreakCatalog()}, Location: cfg.Location()},
	})
	fn(svc, clock)
}

// runCmd executes the root command with args and returns its output.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	summaryFrom, summaryTo, summaryPeriod = "", "", "week"

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
