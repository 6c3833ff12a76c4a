package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"trustledger/pkg/chain"
)

// Server captures process-level configuration. Protocol constants live in
// internal/policy; only deployment concerns belong here.
type Server struct {
	Addr          string
	ContractOwner chain.Principal
	BaseURI       string
	JWTSigningKey string
	StartBlock    uint64

	RedisURL     string
	PostgresURL  string
	KafkaBrokers []string
	KafkaTopic   string
}

// RedisConfig tunes the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TRUSTLEDGER_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	owner := os.Getenv("TRUSTLEDGER_OWNER")
	if owner == "" {
		owner = "deployer"
	}
	baseURI := os.Getenv("TRUSTLEDGER_BASE_URI")
	if baseURI == "" {
		baseURI = "https://trustledger.local/identity/"
	}
	signingKey := os.Getenv("JWT_SIGNING_KEY")
	if signingKey == "" {
		// Development default; must be overridden in production.
		signingKey = "dev-secret-key-change-in-production"
	}
	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "trustledger.audit"
	}

	var startBlock uint64
	if raw := os.Getenv("TRUSTLEDGER_START_BLOCK"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			startBlock = parsed
		}
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return Server{
		Addr:          addr,
		ContractOwner: chain.Principal(owner),
		BaseURI:       baseURI,
		JWTSigningKey: signingKey,
		StartBlock:    startBlock,
		RedisURL:      os.Getenv("REDIS_URL"),
		PostgresURL:   os.Getenv("DATABASE_URL"),
		KafkaBrokers:  brokers,
		KafkaTopic:    topic,
	}
}

// Redis returns the Redis client configuration with conservative defaults.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}
