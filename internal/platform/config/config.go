package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"tokengate/pkg/domain"
)

// Config captures everything the server reads from the environment so main
// stays lean. Optional backends (Postgres, Redis, Kafka) stay disabled when
// their settings are empty and the engine falls back to in-memory stores.
type Config struct {
	Addr               string
	JWTSigningKey      string
	OperatorSecretHash string
	PostgresDSN        string
	RedisURL           string
	KafkaBrokers       []string
	ViolationTopic     string
	MandatoryTopics    []domain.ClaimTopicID
	ShutdownTimeout    time.Duration
}

// DefaultMandatoryTopicKYC is the claim topic every principal must hold
// before a positive transfer decision, unless overridden by configuration.
const DefaultMandatoryTopicKYC domain.ClaimTopicID = 1

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:               envOr("TOKENGATE_ADDR", ":8080"),
		JWTSigningKey:      envOr("TOKENGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		OperatorSecretHash: os.Getenv("TOKENGATE_OPERATOR_SECRET_HASH"),
		PostgresDSN:        os.Getenv("TOKENGATE_POSTGRES_DSN"),
		RedisURL:           os.Getenv("TOKENGATE_REDIS_URL"),
		ViolationTopic:     envOr("TOKENGATE_VIOLATION_TOPIC", "tokengate.violations"),
		ShutdownTimeout:    10 * time.Second,
	}
	if brokers := os.Getenv("TOKENGATE_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	cfg.MandatoryTopics = parseTopicList(os.Getenv("TOKENGATE_MANDATORY_TOPICS"))
	return cfg
}

func parseTopicList(raw string) []domain.ClaimTopicID {
	if raw == "" {
		return []domain.ClaimTopicID{DefaultMandatoryTopicKYC}
	}
	var topics []domain.ClaimTopicID
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		topics = append(topics, domain.ClaimTopicID(n))
	}
	if len(topics) == 0 {
		return []domain.ClaimTopicID{DefaultMandatoryTopicKYC}
	}
	return topics
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
