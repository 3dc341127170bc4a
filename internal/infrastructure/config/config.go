package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/emiliopalmerini/punchclock/internal/adapters/otel"
	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/util"
)

// Prefix is prepended to every environment variable, e.g. PUNCHCLOCK_PORT.
const Prefix = "PUNCHCLOCK"

// Store kinds.
const (
	StoreLibSQL = "libsql"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Database holds SQL store configuration (PUNCHCLOCK_DATABASE_*). An
// empty URL means a local file in the XDG data directory.
type Database struct {
	URL       string `envconfig:"URL"`
	AuthToken string `envconfig:"AUTH_TOKEN"`
}

// Mongo holds MongoDB store configuration (PUNCHCLOCK_MONGO_*).
type Mongo struct {
	URI      string `envconfig:"URI" default:"mongodb://localhost:27017"`
	Database string `envconfig:"DATABASE" default:"punchclock"`
}

// Log holds logger configuration.
type Log struct {
	Level string `envconfig:"LEVEL" default:"info"`
	JSON  bool   `envconfig:"JSON" default:"false"`
}

// Config is the service configuration.
type Config struct {
	Store    string `envconfig:"STORE" default:"sqlite"`
	Database Database
	Mongo    Mongo

	Port     int    `envconfig:"PORT" default:"8080"`
	Timezone string `envconfig:"TIMEZONE" default:"Asia/Kolkata"`

	BreakPolicy      string `envconfig:"BREAK_POLICY" default:"simple"`
	BreakCatalogPath string `envconfig:"BREAK_CATALOG"`

	IdleThresholdSeconds int           `envconfig:"IDLE_THRESHOLD_SECONDS" default:"31"`
	SweepInterval        time.Duration `envconfig:"SWEEP_INTERVAL" default:"15s"`

	// APITokens maps bearer tokens to employee ids: "tok1:emp1,tok2:emp2".
	APITokens map[string]string `envconfig:"API_TOKENS"`

	Log  Log
	OTEL otel.Config `envconfig:"OTEL"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreLibSQL, StoreSQLite, StoreMongo:
	default:
		return fmt.Errorf("unknown store %q (want %s, %s or %s)", c.Store, StoreLibSQL, StoreSQLite, StoreMongo)
	}
	switch c.BreakPolicy {
	case domain.PolicySimple, domain.PolicyGrace:
	default:
		return fmt.Errorf("unknown break policy %q", c.BreakPolicy)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.IdleThresholdSeconds <= 0 {
		return fmt.Errorf("idle threshold must be positive, got %d", c.IdleThresholdSeconds)
	}
	return nil
}

// DatabaseURL returns the configured SQL URL or the local default.
func (c *Config) DatabaseURL() (string, error) {
	if c.Database.URL != "" {
		return c.Database.URL, nil
	}
	return util.DefaultDatabaseURL()
}

// IdleThreshold is the inactivity span after which idle is detected.
func (c *Config) IdleThreshold() time.Duration {
	return time.Duration(c.IdleThresholdSeconds) * time.Second
}

// Location is the zone calendar days are cut in.
func (c *Config) Location() *time.Location {
	return domain.LoadLocation(c.Timezone)
}

// Rules builds the domain rules from the break policy and timezone.
func (c *Config) Rules() (domain.Rules, error) {
	catalog, err := LoadBreakCatalog(c.BreakCatalogPath)
	if err != nil {
		return domain.Rules{}, err
	}
	policy, err := domain.NewBreakPolicy(c.BreakPolicy, catalog)
	if err != nil {
		return domain.Rules{}, err
	}
	return domain.Rules{Policy: policy, Location: c.Location()}, nil
}

// Logger builds the root logger.
func (c *Config) Logger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "punchclock",
		Level:      hclog.LevelFromString(c.Log.Level),
		JSONFormat: c.Log.JSON,
		Output:     os.Stderr,
	})
}

type catalogFile struct {
	Breaks map[string]domain.BreakPlan `yaml:"breaks"`
}

// LoadBreakCatalog returns the built-in catalog with the entries of the
// YAML file at path merged over it. An empty path returns the defaults.
//
//	breaks:
//	  tea: {minutes: 10, grace: 5}
//	  standup: {minutes: 15, grace: 0}
func LoadBreakCatalog(path string) (domain.BreakCatalog, error) {
	catalog := domain.DefaultBreakCatalog()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read break catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse break catalog %s: %w", path, err)
	}

	for name, plan := range file.Breaks {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if plan.Minutes < 0 || plan.Grace < 0 {
			return nil, fmt.Errorf("break %q: minutes and grace must not be negative", name)
		}
		catalog[domain.BreakType(name)] = plan
	}
	return catalog, nil
}
