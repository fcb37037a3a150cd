package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backend names the blob store holding registry snapshots.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

// Server captures process level configuration. Every field is loaded from a
// SOULBOUND_* environment variable.
type Server struct {
	Addr          string `env:"ADDR" envDefault:":8080"`
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"json"`

	// OperatorAccount is the only account allowed to mint souls.
	OperatorAccount string `env:"OPERATOR_ACCOUNT" envDefault:"operator.soulbound"`

	State      StateConfig      `envPrefix:"STATE_"`
	Redis      RedisConfig      `envPrefix:"REDIS_"`
	Resolution ResolutionConfig `envPrefix:"RESOLUTION_"`
	Escrow     EscrowConfig     `envPrefix:"ESCROW_"`
	RateLimit  RateLimitConfig  `envPrefix:"RATELIMIT_"`

	// AdminToken guards /admin routes. Empty disables them.
	AdminToken string `env:"ADMIN_TOKEN"`

	AuditPostgresDSN   string        `env:"AUDIT_POSTGRES_DSN"`
	AuditOpsSampleRate float64       `env:"AUDIT_OPS_SAMPLE_RATE" envDefault:"1"`
	OutcomeTTL         time.Duration `env:"OUTCOME_TTL" envDefault:"24h"`
}

// StateConfig selects and parameterizes the snapshot backend.
type StateConfig struct {
	Backend     Backend `env:"BACKEND" envDefault:"memory"`
	PostgresDSN string  `env:"POSTGRES_DSN"`
	SQLitePath  string  `env:"SQLITE_PATH" envDefault:"soulbound.db"`
	MaxRetries  int     `env:"MAX_RETRIES" envDefault:"5"`
}

// RedisConfig configures the shared Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// ResolutionConfig configures how identity lookups travel.
type ResolutionConfig struct {
	// Transport is "local" (in-process dispatcher) or "kafka".
	Transport    string        `env:"TRANSPORT" envDefault:"local"`
	Workers      int           `env:"WORKERS" envDefault:"4"`
	QueueSize    int           `env:"QUEUE_SIZE" envDefault:"256"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"5s"`
	KafkaBrokers []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaGroup   string        `env:"KAFKA_GROUP" envDefault:"soulbound"`
	// IdentityPeerURL points at a remote identity registry. Empty means the
	// identity registry runs in this process.
	IdentityPeerURL string `env:"IDENTITY_PEER_URL"`
}

// EscrowConfig configures the value transfer primitive. An empty AMQP URL
// keeps payouts in the in-process ledger.
type EscrowConfig struct {
	AMQPURL    string `env:"AMQP_URL"`
	Exchange   string `env:"EXCHANGE" envDefault:"soulbound.transfers"`
	RoutingKey string `env:"ROUTING_KEY" envDefault:"transfer"`
}

// RateLimitConfig sets per-client request budgets. Reads and writes are
// counted separately within the same window.
type RateLimitConfig struct {
	Disabled      bool          `env:"DISABLED"`
	ReadRequests  int           `env:"READ_REQUESTS" envDefault:"300"`
	WriteRequests int           `env:"WRITE_REQUESTS" envDefault:"60"`
	Window        time.Duration `env:"WINDOW" envDefault:"1m"`
}

// FromEnv builds a Server config from SOULBOUND_* environment variables.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "SOULBOUND_"}); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects combinations that cannot start.
func (c Server) Validate() error {
	switch c.State.Backend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("state backend redis requires SOULBOUND_REDIS_URL")
		}
	case BackendPostgres:
		if c.State.PostgresDSN == "" {
			return fmt.Errorf("state backend postgres requires SOULBOUND_STATE_POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown state backend %q", c.State.Backend)
	}
	switch strings.ToLower(c.Resolution.Transport) {
	case "local":
	case "kafka":
		if len(c.Resolution.KafkaBrokers) == 0 {
			return fmt.Errorf("kafka transport requires SOULBOUND_RESOLUTION_KAFKA_BROKERS")
		}
	default:
		return fmt.Errorf("unknown resolution transport %q", c.Resolution.Transport)
	}
	if !c.RateLimit.Disabled && (c.RateLimit.ReadRequests <= 0 || c.RateLimit.WriteRequests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.OperatorAccount == "" {
		return fmt.Errorf("SOULBOUND_OPERATOR_ACCOUNT is required")
	}
	return nil
}
