package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:               "8080",
		DBConnectionString: "postgres://localhost/gitgenie?sslmode=disable",
		GitHubToken:        "test-token",
		ClassifierAPIKey:   "test-key",
		ClassifierModel:    "gpt-4o-mini",
		IngestLimit:        100,
		LeaderboardTopN:    3,
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "INGEST_LIMIT", "LEADERBOARD_TOP_N", "CLASSIFIER_MODEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 100, cfg.IngestLimit)
	assert.Equal(t, 3, cfg.LeaderboardTopN)
	assert.Equal(t, "gpt-4o-mini", cfg.ClassifierModel)
}

func TestValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing database", func(t *testing.T) {
		cfg := validConfig()
		cfg.DBConnectionString = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing github token", func(t *testing.T) {
		cfg := validConfig()
		cfg.GitHubToken = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing classifier key", func(t *testing.T) {
		cfg := validConfig()
		cfg.ClassifierAPIKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive top N", func(t *testing.T) {
		cfg := validConfig()
		cfg.LeaderboardTopN = 0
		assert.Error(t, cfg.Validate())
	})
}
