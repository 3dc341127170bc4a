package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	mongostore "github.com/emiliopalmerini/punchclock/internal/adapters/mongo"
	"github.com/emiliopalmerini/punchclock/internal/adapters/turso"
	"github.com/emiliopalmerini/punchclock/internal/infrastructure/config"
	"github.com/emiliopalmerini/punchclock/internal/infrastructure/database"
	"github.com/emiliopalmerini/punchclock/internal/migrate"
	"github.com/emiliopalmerini/punchclock/internal/ports"
	"github.com/emiliopalmerini/punchclock/internal/tracking"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config  *config.Config
	Log     hclog.Logger
	DB      *database.Client
	Mongo   *mongo.Client
	Repo    ports.TrackerRepository
	Tracker *tracking.Service
}

// NewAppContext opens the configured store, brings its schema up to date
// and builds the tracking service on top of it. metrics may be nil.
func NewAppContext(ctx context.Context, cfg *config.Config, log hclog.Logger, metrics ports.MetricsRecorder) (*AppContext, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return nil, fmt.Errorf("failed to build break rules: %w", err)
	}

	if log == nil {
		log = hclog.NewNullLogger()
	}
	a := &AppContext{Config: cfg, Log: log}
	if err := a.openStore(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Tracker = tracking.NewService(tracking.Options{
		Repo:          a.Repo,
		Metrics:       metrics,
		Rules:         rules,
		IdleThreshold: cfg.IdleThreshold(),
		Logger:        log,
	})
	return a, nil
}

func (a *AppContext) openStore(ctx context.Context) error {
	cfg := a.Config
	if cfg.Store == config.StoreMongo {
		client, err := mongostore.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return fmt.Errorf("failed to connect to mongo: %w", err)
		}
		a.Mongo = client
		repo := mongostore.NewTrackerRepository(client.Database(cfg.Mongo.Database))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
		a.Repo = repo
		return nil
	}

	db, err := openSQL(cfg)
	if err != nil {
		return err
	}
	a.DB = db
	if err := migrate.New(db.DB, a.Log).To(ctx, -1); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	a.Repo = turso.NewTrackerRepository(db.DB)
	return nil
}

func openSQL(cfg *config.Config) (*database.Client, error) {
	if cfg.Store == config.StoreMongo {
		return nil, errors.New("the mongo store has no SQL schema")
	}
	url, err := cfg.DatabaseURL()
	if err != nil {
		return nil, err
	}
	db, err := database.New(database.Options{
		Driver:    cfg.Store,
		URL:       url,
		AuthToken: cfg.Database.AuthToken,
		Ping:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Mongo != nil {
		errs = append(errs, a.Mongo.Disconnect(context.Background()))
	}
	return errors.Join(errs...)
}

// loadApp loads the configuration and opens the app for a read-only
// command.
func loadApp(ctx context.Context) (*AppContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewAppContext(ctx, cfg, cfg.Logger(), nil)
}
