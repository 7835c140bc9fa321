package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsImpact/internal/domain"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	sources := cfg.Feeds.DomainSources()
	require.Len(t, sources, 2)
	assert.Equal(t, domain.SourceConfig{
		Name:         "Economic Times",
		FeedURL:      "https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms",
		Weight:       0.6,
		MaxArticles:  30,
		QualityScore: 9,
		Priority:     domain.PriorityHigh,
	}, sources[0])
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
server:
  port: "8080"
feeds:
  targetTotal: 20
  directTimeout: 5s
  sources:
    - name: Only
      url: https://example.com/rss
      weight: 1
      maxArticles: 10
      qualityScore: 7
analysis:
  concurrency: 2
  batchPause: 250ms
llm:
  provider: anthropic
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(anthropicKeyEnv, "sk-test")
	t.Setenv(geminiKeyEnv, "ignored")
	t.Setenv(logLevelEnv, "debug")
	t.Setenv(portEnv, "")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 20, cfg.Feeds.TargetTotal)
	assert.Equal(t, 50, cfg.Feeds.FeedLimit)
	assert.Equal(t, 5*time.Second, cfg.Feeds.DirectTimeout)
	assert.Equal(t, 20*time.Second, cfg.Feeds.ProxyTimeout)
	assert.Equal(t, 2, cfg.Analysis.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Analysis.BatchPause)
	assert.Equal(t, "debug", cfg.Logging.Level)

	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, DefaultModel(ProviderAnthropic), cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)

	sources := cfg.Feeds.DomainSources()
	require.Len(t, sources, 1)
	assert.Equal(t, domain.PriorityMedium, sources[0].Priority)
}

func TestLoadBadFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feeds: [unterminated"), 0o600))
	t.Setenv(configPathEnv, path)

	cfg := Load()
	assert.Equal(t, defaultConfig().Feeds.Sources, cfg.Feeds.Sources)
}

func TestValidateRejectsBadSources(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*Config){
		"weight above one":  func(c *Config) { c.Feeds.Sources[0].Weight = 1.5 },
		"quality too high":  func(c *Config) { c.Feeds.Sources[0].QualityScore = 11 },
		"bad priority":      func(c *Config) { c.Feeds.Sources[0].Priority = "urgent" },
		"bad url":           func(c *Config) { c.Feeds.Sources[0].URL = "not a url" },
		"duplicate name":    func(c *Config) { c.Feeds.Sources[1].Name = c.Feeds.Sources[0].Name },
		"no sources":        func(c *Config) { c.Feeds.Sources = nil },
		"unknown provider":  func(c *Config) { c.LLM.Provider = "mystery" },
		"zero concurrency":  func(c *Config) { c.Analysis.Concurrency = 0 },
		"non numeric port":  func(c *Config) { c.Server.Port = "http" },
	}

	for name, mutate := range cases {
		cfg := defaultConfig()
		cfg.Feeds.Sources = append([]SourceConfig(nil), cfg.Feeds.Sources...)
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestCORSOriginEnvList(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(corsOriginEnv, "https://app.example.com, http://localhost:3000,")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 100, cfg.Server.RateLimit)
	assert.Equal(t, 15*time.Minute, cfg.Server.RateWindow)
}

func TestProviderEnvSwitchesDefaultModel(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(llmProviderEnv, "Anthropic")
	t.Setenv(llmModelEnv, "")
	t.Setenv(anthropicKeyEnv, "sk-test")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, DefaultModel(ProviderAnthropic), cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)

	t.Setenv(llmModelEnv, "claude-sonnet-4-5")
	cfg = Load()
	assert.Equal(t, "claude-sonnet-4-5", cfg.LLM.Model)
}

func TestProviderEnvKeepsFileModelForSameProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
llm:
  provider: openai
  model: gpt-4.1-mini
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	t.Setenv(configPathEnv, path)
	t.Setenv(llmProviderEnv, "openai")
	t.Setenv(llmModelEnv, "")

	cfg := Load()
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.Model)
}
