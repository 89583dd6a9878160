package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
logging:
  level: debug
sampler:
  default_page_size: 4
  timeout: 3s
generation:
  model_name: gemini-test
  quota:
    requests_per_minute: 10
    requests_per_day: 100
categories:
  - name: Desamor
    slug: desamor
    default_image: /img/desamor.jpg
feeds:
  - name: Poemas del alma
    url: https://example.com/feed
    category: Amor
    limit: 5
`

func TestParseAppliesValuesAndDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGO_DB_NAME", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("API_ADDR", "")

	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.Sampler.DefaultPageSize)
	assert.Equal(t, 50, cfg.Sampler.MaxPageSize)
	assert.Equal(t, 3*time.Second, cfg.Sampler.Timeout)
	assert.Equal(t, "gemini-test", cfg.Generation.ModelName)
	assert.Equal(t, "google", cfg.Generation.Provider)
	assert.Equal(t, "Spanish", cfg.Generation.Language)
	assert.Equal(t, 10, cfg.Generation.Quota.RequestsPerMinute)
	assert.Equal(t, "poemas", cfg.Mongo.DBName)
	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.Equal(t, "UTC", cfg.Aggregate.Timezone)
	assert.Zero(t, cfg.Aggregate.Interval)
	require.Len(t, cfg.Categories, 1)
	assert.Equal(t, "Desamor", cfg.Categories[0].Name)
	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, "Amor", cfg.Feeds[0].Category)
}

func TestParseEnvOverridesYAML(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://override:27017")
	t.Setenv("MONGO_DB_NAME", "poemas_test")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("API_ADDR", ":9090")

	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "mongodb://override:27017", cfg.Mongo.URI)
	assert.Equal(t, "poemas_test", cfg.Mongo.DBName)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ":9090", cfg.API.Addr)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("logging: [unclosed"))
	assert.Error(t, err)
}
