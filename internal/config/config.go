package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"NewsImpact/internal/domain"
)

const (
	configPathEnv   = "NEWSIMPACT_CONFIG"
	portEnv         = "PORT"
	logLevelEnv     = "LOG_LEVEL"
	llmProviderEnv  = "LLM_PROVIDER"
	llmModelEnv     = "LLM_MODEL"
	geminiKeyEnv    = "GEMINI_API_KEY"
	anthropicKeyEnv = "ANTHROPIC_API_KEY"
	openAIKeyEnv    = "OPENAI_API_KEY"
	proxyURLEnv     = "RSS_PROXY_URL"
	corsOriginEnv   = "CORS_ORIGIN"

	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

var providerKeyEnv = map[string]string{
	ProviderGemini:    geminiKeyEnv,
	ProviderAnthropic: anthropicKeyEnv,
	ProviderOpenAI:    openAIKeyEnv,
}

// Config holds high-level settings required across the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Analysis AnalysisConfig `yaml:"analysis"`
	LLM      LLMConfig      `yaml:"llm"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port            string        `yaml:"port" validate:"required,numeric"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	AllowedOrigins  []string      `yaml:"allowedOrigins" validate:"dive,url"`
	RateLimit       int           `yaml:"rateLimit" validate:"gte=0"`
	RateWindow      time.Duration `yaml:"rateWindow"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// FeedsConfig governs fetching and balancing.
type FeedsConfig struct {
	TargetTotal   int            `yaml:"targetTotal" validate:"gt=0"`
	FeedLimit     int            `yaml:"feedLimit" validate:"gt=0"`
	DirectTimeout time.Duration  `yaml:"directTimeout"`
	ProxyTimeout  time.Duration  `yaml:"proxyTimeout"`
	MaxRedirects  int            `yaml:"maxRedirects" validate:"gte=0"`
	ProxyURL      string         `yaml:"proxyUrl" validate:"omitempty,url"`
	ProbeInterval time.Duration  `yaml:"probeInterval"`
	Sources       []SourceConfig `yaml:"sources" validate:"required,min=1,unique=Name,dive"`
}

// SourceConfig is one RSS source as written in YAML.
type SourceConfig struct {
	Name         string  `yaml:"name" validate:"required"`
	URL          string  `yaml:"url" validate:"required,url"`
	Weight       float64 `yaml:"weight" validate:"gte=0,lte=1"`
	MaxArticles  int     `yaml:"maxArticles" validate:"gte=0"`
	QualityScore int     `yaml:"qualityScore" validate:"gte=1,lte=10"`
	Priority     string  `yaml:"priority" validate:"omitempty,oneof=high medium low"`
}

// AnalysisConfig governs batch analysis pacing.
type AnalysisConfig struct {
	Concurrency int           `yaml:"concurrency" validate:"gt=0"`
	BatchPause  time.Duration `yaml:"batchPause"`
	CallTimeout time.Duration `yaml:"callTimeout"`
	JitterSeed  uint64        `yaml:"jitterSeed"`
}

// LLMConfig defines how to contact the completion provider.
type LLMConfig struct {
	Provider          string `yaml:"provider" validate:"oneof=gemini anthropic openai"`
	Model             string `yaml:"model"`
	APIKey            string `yaml:"apiKey"`
	Endpoint          string `yaml:"endpoint" validate:"omitempty,url"`
	MaxTokens         int    `yaml:"maxTokens" validate:"gte=0"`
	RequestsPerMinute int    `yaml:"requestsPerMinute" validate:"gte=0"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg, err := Parse(raw)
			if err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Parse decodes a YAML document without merging defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints declared in struct tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DomainSources converts YAML sources to immutable domain records.
func (f FeedsConfig) DomainSources() []domain.SourceConfig {
	out := make([]domain.SourceConfig, 0, len(f.Sources))
	for _, src := range f.Sources {
		priority := domain.Priority(strings.ToLower(src.Priority))
		if priority == "" {
			priority = domain.PriorityMedium
		}
		out = append(out, domain.SourceConfig{
			Name:         src.Name,
			FeedURL:      src.URL,
			Weight:       src.Weight,
			MaxArticles:  src.MaxArticles,
			QualityScore: src.QualityScore,
			Priority:     priority,
		})
	}
	return out
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(portEnv); v != "" {
		c.Server.Port = v
	}

	if v := os.Getenv(corsOriginEnv); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(proxyURLEnv); v != "" {
		c.Feeds.ProxyURL = v
	}

	if v := os.Getenv(llmProviderEnv); v != "" {
		provider := strings.ToLower(strings.TrimSpace(v))
		if provider != c.LLM.Provider {
			c.LLM.Provider = provider
			c.LLM.Model = DefaultModel(provider)
		}
	}

	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}

	if env, ok := providerKeyEnv[c.LLM.Provider]; ok {
		if v := os.Getenv(env); v != "" {
			c.LLM.APIKey = v
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}
	if override.Server.ReadTimeout > 0 {
		base.Server.ReadTimeout = override.Server.ReadTimeout
	}
	if override.Server.WriteTimeout > 0 {
		base.Server.WriteTimeout = override.Server.WriteTimeout
	}
	if override.Server.ShutdownTimeout > 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}
	if len(override.Server.AllowedOrigins) > 0 {
		base.Server.AllowedOrigins = override.Server.AllowedOrigins
	}
	if override.Server.RateLimit > 0 {
		base.Server.RateLimit = override.Server.RateLimit
	}
	if override.Server.RateWindow > 0 {
		base.Server.RateWindow = override.Server.RateWindow
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Feeds.TargetTotal > 0 {
		base.Feeds.TargetTotal = override.Feeds.TargetTotal
	}
	if override.Feeds.FeedLimit > 0 {
		base.Feeds.FeedLimit = override.Feeds.FeedLimit
	}
	if override.Feeds.DirectTimeout > 0 {
		base.Feeds.DirectTimeout = override.Feeds.DirectTimeout
	}
	if override.Feeds.ProxyTimeout > 0 {
		base.Feeds.ProxyTimeout = override.Feeds.ProxyTimeout
	}
	if override.Feeds.MaxRedirects > 0 {
		base.Feeds.MaxRedirects = override.Feeds.MaxRedirects
	}
	if override.Feeds.ProxyURL != "" {
		base.Feeds.ProxyURL = override.Feeds.ProxyURL
	}
	if override.Feeds.ProbeInterval > 0 {
		base.Feeds.ProbeInterval = override.Feeds.ProbeInterval
	}
	if len(override.Feeds.Sources) > 0 {
		base.Feeds.Sources = override.Feeds.Sources
	}

	if override.Analysis.Concurrency > 0 {
		base.Analysis.Concurrency = override.Analysis.Concurrency
	}
	if override.Analysis.BatchPause > 0 {
		base.Analysis.BatchPause = override.Analysis.BatchPause
	}
	if override.Analysis.CallTimeout > 0 {
		base.Analysis.CallTimeout = override.Analysis.CallTimeout
	}
	if override.Analysis.JitterSeed != 0 {
		base.Analysis.JitterSeed = override.Analysis.JitterSeed
	}

	if override.LLM.Provider != "" {
		base.LLM.Provider = strings.ToLower(override.LLM.Provider)
		if override.LLM.Model == "" {
			base.LLM.Model = DefaultModel(base.LLM.Provider)
		}
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.MaxTokens > 0 {
		base.LLM.MaxTokens = override.LLM.MaxTokens
	}
	if override.LLM.RequestsPerMinute > 0 {
		base.LLM.RequestsPerMinute = override.LLM.RequestsPerMinute
	}

	return base
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DefaultModel names the model used when only a provider is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-haiku-4-5"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	default:
		return "gemini-1.5-flash"
	}
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            "5000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:3000"},
			RateLimit:       100,
			RateWindow:      15 * time.Minute,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Feeds: FeedsConfig{
			TargetTotal:   50,
			FeedLimit:     50,
			DirectTimeout: 15 * time.Second,
			ProxyTimeout:  20 * time.Second,
			MaxRedirects:  5,
			ProxyURL:      "https://rssproxy.migor.org/api/rss",
			Sources: []SourceConfig{
				{
					Name:         "Economic Times",
					URL:          "https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms",
					Weight:       0.60,
					MaxArticles:  30,
					QualityScore: 9,
					Priority:     "high",
				},
				{
					Name:         "LiveMint",
					URL:          "https://www.livemint.com/rss/markets",
					Weight:       0.40,
					MaxArticles:  20,
					QualityScore: 8,
					Priority:     "medium",
				},
			},
		},
		Analysis: AnalysisConfig{
			Concurrency: 3,
			BatchPause:  time.Second,
			CallTimeout: 20 * time.Second,
		},
		LLM: LLMConfig{
			Provider:  ProviderGemini,
			Model:     DefaultModel(ProviderGemini),
			MaxTokens: 512,
		},
	}
}
