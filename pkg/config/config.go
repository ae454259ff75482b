package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// App holds runtime configuration derived from env vars.
type App struct {
	DatabaseURL  string
	KafkaBrokers string
	APIPort      string
	Environment  string
	LogLevel     string
	LogEncoding  string
	CORSOrigins  []string

	// Scheduling engine knobs.
	SpinnerYieldMax     time.Duration
	MaxTriggersPerTick  int
	CheckpointInterval  time.Duration
	DangerousFastForward bool

	// Kafka topic for run lifecycle events. Empty disables publishing.
	RunEventsTopic string

	// Disables the public-IP check on webhook URLs. Local development only.
	SkipPublicIPValidation bool
}

// FromEnv loads the application configuration from environment variables.
func FromEnv() App {
	return App{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
		APIPort:      getEnv("API_PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "production"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogEncoding:  getEnv("LOG_ENCODING", "json"),
		CORSOrigins:  getCORSOrigins(),

		SpinnerYieldMax:      time.Duration(getEnvInt("SPINNER_YIELD_MAX_MS", 100)) * time.Millisecond,
		MaxTriggersPerTick:   getEnvInt("MAX_TRIGGERS_PER_TICK", 100),
		CheckpointInterval:   time.Duration(getEnvInt("CHECKPOINT_INTERVAL_S", 10)) * time.Second,
		DangerousFastForward: getEnvBool("DANGEROUS_FAST_FORWARD", false),

		RunEventsTopic: getEnv("RUN_EVENTS_TOPIC", "cronback.runs"),

		SkipPublicIPValidation: getEnvBool("CRONBACK__SKIP_PUBLIC_IP_VALIDATION", false),
	}
}

// BrokerList splits the comma-separated KafkaBrokers value.
func (a App) BrokerList() []string {
	parts := strings.Split(a.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getCORSOrigins() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
