package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for both binaries.
type Config struct {
	App    AppConfig
	API    APIConfig
	Poll   PollConfig
	Logger LoggerConfig
	Mock   MockConfig
}

// AppConfig identifies the running program.
type AppConfig struct {
	Name string
	Env  string
}

// APIConfig points the dashboard at the ticket store.
type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// PollConfig controls the reconciliation cadences.
type PollConfig struct {
	TicketIntervalSeconds     int
	CollectionIntervalSeconds int
}

// LoggerConfig configures logging behavior. File is where the
// dashboard writes its log; the TUI owns stdout.
type LoggerConfig struct {
	Level string
	File  string
}

// MockConfig controls the development ticket store.
type MockConfig struct {
	Host                  string
	Port                  string
	ProcessingDelayMs     int
	FailureRate           float64
	MaxProcessingAttempts int
	RetryDelayMs          int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "complaint-triage"),
			Env:  getEnv("APP_ENV", "development"),
		},
		API: APIConfig{
			BaseURL:        getEnv("API_URL", "http://localhost:8000"),
			TimeoutSeconds: getEnvAsInt("API_TIMEOUT_SECONDS", 10),
		},
		Poll: PollConfig{
			TicketIntervalSeconds:     getEnvAsInt("POLL_TICKET_INTERVAL_SECONDS", 3),
			CollectionIntervalSeconds: getEnvAsInt("POLL_COLLECTION_INTERVAL_SECONDS", 5),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Mock: MockConfig{
			Host:                  getEnv("MOCK_HOST", "0.0.0.0"),
			Port:                  getEnv("MOCK_PORT", "8000"),
			ProcessingDelayMs:     getEnvAsInt("MOCK_PROCESSING_DELAY_MS", 2000),
			FailureRate:           getEnvAsFloat("MOCK_FAILURE_RATE", 0.1),
			MaxProcessingAttempts: getEnvAsInt("MOCK_MAX_PROCESSING_ATTEMPTS", 3),
			RetryDelayMs:          getEnvAsInt("MOCK_RETRY_DELAY_MS", 1500),
		},
	}

	return cfg, nil
}

// Timeout returns the per-request timeout for the ticket client.
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// TicketInterval returns the detail-view poll cadence.
func (p PollConfig) TicketInterval() time.Duration {
	if p.TicketIntervalSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(p.TicketIntervalSeconds) * time.Second
}

// CollectionInterval returns the dashboard-list poll cadence.
func (p PollConfig) CollectionInterval() time.Duration {
	if p.CollectionIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(p.CollectionIntervalSeconds) * time.Second
}

// Addr returns the mock store bind address.
func (m MockConfig) Addr() string {
	return m.Host + ":" + m.Port
}

// ProcessingDelay returns how long the simulated analyzer holds a
// ticket in each pipeline stage.
func (m MockConfig) ProcessingDelay() time.Duration {
	return time.Duration(m.ProcessingDelayMs) * time.Millisecond
}

// RetryDelay returns how long a failed ticket waits before re-entering
// the pipeline.
func (m MockConfig) RetryDelay() time.Duration {
	return time.Duration(m.RetryDelayMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
