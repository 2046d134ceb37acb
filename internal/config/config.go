package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port               string
	DBConnectionString string
	GitHubToken        string
	ClassifierAPIKey   string
	ClassifierBaseURL  string
	ClassifierModel    string
	IngestLimit        int
	LeaderboardTopN    int
}

func Load() (*Config, error) {
	ingestLimit, err := strconv.Atoi(getEnv("INGEST_LIMIT", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_LIMIT: %w", err)
	}

	topN, err := strconv.Atoi(getEnv("LEADERBOARD_TOP_N", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_TOP_N: %w", err)
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DBConnectionString: getEnv("DB_CONNECTION_STRING", ""),
		GitHubToken:        getEnv("GITHUB_TOKEN", ""),
		ClassifierAPIKey:   getEnv("CLASSIFIER_API_KEY", ""),
		ClassifierBaseURL:  getEnv("CLASSIFIER_BASE_URL", ""),
		ClassifierModel:    getEnv("CLASSIFIER_MODEL", "gpt-4o-mini"),
		IngestLimit:        ingestLimit,
		LeaderboardTopN:    topN,
	}, nil
}

// Validate checks required fields once, at startup, before any adapter
// is constructed.
func (c *Config) Validate() error {
	if c.DBConnectionString == "" {
		return fmt.Errorf("DB_CONNECTION_STRING must be set")
	}
	if c.GitHubToken == "" {
		return fmt.Errorf("GITHUB_TOKEN must be set")
	}
	if c.ClassifierAPIKey == "" {
		return fmt.Errorf("CLASSIFIER_API_KEY must be set")
	}
	if c.IngestLimit <= 0 {
		return fmt.Errorf("INGEST_LIMIT must be positive")
	}
	if c.LeaderboardTopN <= 0 {
		return fmt.Errorf("LEADERBOARD_TOP_N must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
