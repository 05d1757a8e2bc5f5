package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all worker configuration. Every worker reads the same
// structure; fields a worker does not need are simply unused.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	AdminAddr string `env:"ADMIN_ADDR" envDefault:":9090"`

	PostgresURL string `env:"POSTGRES_URL,required"`

	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	ConsumerGroup string   `env:"CONSUMER_GROUP"`

	// One topic per telemetry category, plus the every-minute tick topic
	// that drives the aggregation and purge workers.
	TopicSPAT string `env:"TOPIC_SPAT" envDefault:"connectedvehicle.spat"`
	TopicBSM  string `env:"TOPIC_BSM" envDefault:"connectedvehicle.bsm"`
	TopicSRM  string `env:"TOPIC_SRM" envDefault:"connectedvehicle.srm"`
	TopicTIM  string `env:"TOPIC_TIM" envDefault:"connectedvehicle.tim"`
	TopicTick string `env:"TOPIC_TICK" envDefault:"connectedvehicle.everyminute"`

	// Archive tier object store. Empty endpoint disables archiving, same
	// as an unset connection string did in earlier deployments.
	ArchiveEndpoint  string `env:"ARCHIVE_ENDPOINT"`
	ArchiveAccessKey string `env:"ARCHIVE_ACCESS_KEY"`
	ArchiveSecretKey string `env:"ARCHIVE_SECRET_KEY"`
	ArchiveBucket    string `env:"ARCHIVE_BUCKET" envDefault:"connected-vehicle-archive"`
	ArchiveUseSSL    bool   `env:"ARCHIVE_USE_SSL" envDefault:"false"`

	// Optional read-side cache for status queries.
	RedisAddr      string        `env:"REDIS_ADDR"`
	StatusCacheTTL time.Duration `env:"STATUS_CACHE_TTL" envDefault:"30s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// TelemetryTopics maps each telemetry topic to its category name, in the
// shape the consumers need for routing.
func (c *Config) TelemetryTopics() map[string]string {
	return map[string]string{
		c.TopicSPAT: "SPAT",
		c.TopicBSM:  "BSM",
		c.TopicSRM:  "SRM",
		c.TopicTIM:  "TIM",
	}
}
