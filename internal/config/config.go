package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	GitHub     GitHubConfig
	DeviceAuth DeviceAuthConfig
	Submission SubmissionConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type GitHubConfig struct {
	Owner      string
	Repo       string
	BaseBranch string
	BotToken   string
	APIBaseURL string
	Timeout    time.Duration
}

type DeviceAuthConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SubmissionConfig struct {
	DataRoot      string
	Label         string
	MaxFiles      int
	PrecheckMax   int
	EnrichmentCap int
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnvWithDefault("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvWithDefault("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationFromEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationFromEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		GitHub: GitHubConfig{
			Owner:      getRequiredEnv("GITHUB_OWNER"),
			Repo:       getRequiredEnv("GITHUB_REPO"),
			BaseBranch: getEnvWithDefault("GITHUB_BASE_BRANCH", "main"),
			BotToken:   getRequiredEnv("GITHUB_BOT_TOKEN"),
			APIBaseURL: getEnvWithDefault("GITHUB_API_BASE_URL", "https://api.github.com"),
			Timeout:    getDurationFromEnv("GITHUB_TIMEOUT", 30*time.Second),
		},
		DeviceAuth: DeviceAuthConfig{
			BaseURL: getEnvWithDefault("DEVICE_AUTH_BASE_URL", "https://github.com"),
			Timeout: getDurationFromEnv("DEVICE_AUTH_TIMEOUT", 15*time.Second),
		},
		Submission: SubmissionConfig{
			DataRoot:      getEnvWithDefault("SUBMISSION_DATA_ROOT", "data"),
			Label:         getEnvWithDefault("SUBMISSION_LABEL", "submission"),
			MaxFiles:      getIntFromEnv("SUBMISSION_MAX_FILES", 10),
			PrecheckMax:   getIntFromEnv("SUBMISSION_PRECHECK_MAX_FILES", 20),
			EnrichmentCap: getIntFromEnv("SUBMISSION_ENRICHMENT_CAP", 5),
		},
		Logging: LoggingConfig{
			Level:  getEnvWithDefault("LOG_LEVEL", "info"),
			Format: getEnvWithDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func getRequiredEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("Required environment variable %s is not set", key))
	}
	return value
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntFromEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationFromEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
