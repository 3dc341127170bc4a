package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/punchclock/internal/adapters/otel"
	"github.com/emiliopalmerini/punchclock/internal/infrastructure/config"
	"github.com/emiliopalmerini/punchclock/internal/ports"
	"github.com/emiliopalmerini/punchclock/internal/shared/middleware"
	"github.com/emiliopalmerini/punchclock/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tracker API",
	Long: `Start the tracker HTTP API.

Breaks are auto-ended and idle time auto-detected only when a client
heartbeat asks for it. With --sweep and the grace break policy, the server
also runs those checks itself for every active employee.

Examples:
  punchclock serve              # Start on the configured port (default 8080)
  punchclock serve --port 3000  # Start on port 3000
  punchclock serve --sweep      # Also sweep active employees on a timer`,
	RunE: runServe,
}

var (
	servePort  int
	serveSweep bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveSweep, "sweep", false, "Run heartbeat checks on a server-side timer (grace policy only)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	log := cfg.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := newMetricsRecorder(ctx, cfg, log)
	app, err := NewAppContext(ctx, cfg, log, metrics)
	if err != nil {
		return err
	}
	defer app.Close()

	if len(cfg.APITokens) == 0 {
		log.Warn("no API tokens configured, every tracker request will be rejected")
	}
	server := web.NewServer(app.Tracker, middleware.StaticTokens(cfg.APITokens), log, cfg.Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	if sweepEnabled(serveSweep, app) {
		g.Go(func() error {
			return app.Tracker.RunSweeper(gctx, cfg.SweepInterval)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metrics.Close(shutdownCtx)
	})

	err = g.Wait()
	log.Info("shut down")
	return err
}

// sweepEnabled reports whether serve should start the background sweeper.
func sweepEnabled(requested bool, app *AppContext) bool {
	if !requested {
		return false
	}
	if !app.Tracker.HeartbeatChecks() {
		app.Log.Warn("sweep requested but the break policy has no heartbeat checks, not sweeping",
			"policy", app.Config.BreakPolicy)
		return false
	}
	app.Log.Info("sweeping active employees", "interval", app.Config.SweepInterval)
	return true
}

// newMetricsRecorder returns the OTLP recorder, or a no-op one when OTEL
// is disabled or the exporter cannot be created.
func newMetricsRecorder(ctx context.Context, cfg *config.Config, log hclog.Logger) ports.MetricsRecorder {
	if !cfg.OTEL.Enabled {
		return otel.NewNoOpRecorder()
	}
	rec, err := otel.NewRecorder(ctx, cfg.OTEL)
	if err != nil {
		log.Warn("metrics disabled", "error", err)
		return otel.NewNoOpRecorder()
	}
	log.Info("exporting metrics", "endpoint", cfg.OTEL.Endpoint)
	return rec
}
