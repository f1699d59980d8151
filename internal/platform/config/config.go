package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// FastPathPolicy decides what happens when a claim matches the directory unchanged.
type FastPathPolicy string

const (
	FastPathAutoApprove FastPathPolicy = "auto_approve"
	FastPathSkipOwner   FastPathPolicy = "skip_owner"
	FastPathDisabled    FastPathPolicy = "disabled"
)

// DirectoryBackend selects the Unit Directory implementation.
type DirectoryBackend string

const (
	DirectoryMemory   DirectoryBackend = "memory"
	DirectoryPostgres DirectoryBackend = "postgres"
	DirectoryHTTP     DirectoryBackend = "http"
)

type Config struct {
	Server     Server
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Directory  DirectoryConfig
	Policy     PolicyConfig
	Invitation InvitationConfig
	RateLimit  RateLimitConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	JWTSigningKey  string
	JWTIssuer      string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers       string
	EventsTopic   string
	ConsumerGroup string
	Acks          string
	Retries       int
}

// Enabled reports whether brokers are configured.
func (k KafkaConfig) Enabled() bool {
	return strings.TrimSpace(k.Brokers) != ""
}

type DirectoryConfig struct {
	Backend  DirectoryBackend
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type PolicyConfig struct {
	FastPath                    FastPathPolicy
	ConflictDirectoryCorrection bool
}

type InvitationConfig struct {
	InviteLinkTTL     time.Duration
	FamilyInviteTTL   time.Duration
	SelectionTTL      time.Duration
	FamilyCodeHashKey string
}

// RateLimitConfig budgets the routes that accept invite tokens, family codes
// and manager phones, per client IP. Zero disables a class.
type RateLimitConfig struct {
	TokenLookupRequests int
	CodeRedeemRequests  int
	Window              time.Duration
}

// FromEnv builds the Config from environment variables, applying defaults
// suited to local development.
func FromEnv() (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:           envOr("UNITGATE_ADDR", ":8080"),
			Environment:    envOr("ENVIRONMENT", "local"),
			LogLevel:       envOr("LOG_LEVEL", "info"),
			JWTSigningKey:  envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:      envOr("JWT_ISSUER", "unitgate"),
			TokenTTL:       durationOr("TOKEN_TTL", 15*time.Minute),
			RequestTimeout: durationOr("REQUEST_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    intOr("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    intOr("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: durationOr("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:       os.Getenv("KAFKA_BROKERS"),
			EventsTopic:   envOr("KAFKA_EVENTS_TOPIC", "unitgate.membership.events"),
			ConsumerGroup: envOr("KAFKA_CONSUMER_GROUP", "unitgate-directory-cache"),
			Acks:          envOr("KAFKA_ACKS", "all"),
			Retries:       intOr("KAFKA_RETRIES", 3),
		},
		Directory: DirectoryConfig{
			Backend:  DirectoryBackend(envOr("DIRECTORY_BACKEND", string(DirectoryMemory))),
			URL:      os.Getenv("DIRECTORY_URL"),
			Timeout:  durationOr("DIRECTORY_TIMEOUT", 3*time.Second),
			CacheTTL: durationOr("DIRECTORY_CACHE_TTL", 5*time.Minute),
		},
		Policy: PolicyConfig{
			FastPath:                    FastPathPolicy(envOr("FAST_PATH_POLICY", string(FastPathAutoApprove))),
			ConflictDirectoryCorrection: boolOr("CONFLICT_DIRECTORY_CORRECTION", true),
		},
		Invitation: InvitationConfig{
			InviteLinkTTL:     durationOr("INVITE_LINK_TTL", 7*24*time.Hour),
			FamilyInviteTTL:   durationOr("FAMILY_INVITE_TTL", 72*time.Hour),
			SelectionTTL:      durationOr("SELECTION_TTL", 15*time.Minute),
			FamilyCodeHashKey: envOr("FAMILY_CODE_HASH_KEY", "dev-family-code-key"),
		},
		RateLimit: RateLimitConfig{
			TokenLookupRequests: intOr("RATELIMIT_TOKEN_LOOKUP", 30),
			CodeRedeemRequests:  intOr("RATELIMIT_CODE_REDEEM", 10),
			Window:              durationOr("RATELIMIT_WINDOW", time.Minute),
		},
	}
	return cfg, cfg.Validate()
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.Policy.FastPath {
	case FastPathAutoApprove, FastPathSkipOwner, FastPathDisabled:
	default:
		return fmt.Errorf("FAST_PATH_POLICY: unknown policy %q", c.Policy.FastPath)
	}
	switch c.Directory.Backend {
	case DirectoryMemory:
	case DirectoryPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DIRECTORY_BACKEND=postgres requires DATABASE_URL")
		}
	case DirectoryHTTP:
		if c.Directory.URL == "" {
			return fmt.Errorf("DIRECTORY_BACKEND=http requires DIRECTORY_URL")
		}
	default:
		return fmt.Errorf("DIRECTORY_BACKEND: unknown backend %q", c.Directory.Backend)
	}
	if c.Environment() != "local" && c.Server.JWTSigningKey == "dev-secret-key-change-in-production" {
		return fmt.Errorf("JWT_SIGNING_KEY must be set outside local environment")
	}
	return nil
}

func (c Config) Environment() string {
	return c.Server.Environment
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func boolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
