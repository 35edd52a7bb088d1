package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
	LLM       LLMConfig       `yaml:"llm"`
	Recommend RecommendConfig `yaml:"recommend"`
	Footprint FootprintConfig `yaml:"footprint"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Auth      AuthConfig      `yaml:"auth"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries. GET requests are always
// eligible; Routes lists the POST paths that are safe to replay.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Routes      []string      `yaml:"routes"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LLMConfig contains OpenAI-compatible chat completion settings.
type LLMConfig struct {
	APIKey        string        `yaml:"apiKey"`
	BaseURL       string        `yaml:"baseUrl"`
	Model         string        `yaml:"model"`
	Temperature   float32       `yaml:"temperature"`
	MaxTokens     int           `yaml:"maxTokens"`
	ChatMaxTokens int           `yaml:"chatMaxTokens"`
	Timeout       time.Duration `yaml:"timeout"`
}

// RecommendConfig controls the recommendation and coach chat behavior.
type RecommendConfig struct {
	Prompt             string        `yaml:"prompt"`
	ChatPrompt         string        `yaml:"chatPrompt"`
	CacheTTL           time.Duration `yaml:"cacheTtl"`
	HistoryTokenBudget int           `yaml:"historyTokenBudget"`
	Encoding           string        `yaml:"encoding"`
}

// FootprintConfig tunes the analyze workflow around the engine.
type FootprintConfig struct {
	CollaboratorTimeout time.Duration `yaml:"collaboratorTimeout"`
	LeaderboardLimit    int           `yaml:"leaderboardLimit"`
	MonthlyWindow       time.Duration `yaml:"monthlyWindow"`
}

// DatabaseConfig selects run persistence. The DSN scheme picks the driver:
// postgres:// or postgresql:// use pgx, sqlite:// or a bare file path use SQLite,
// empty keeps runs in memory.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// CacheConfig contains connection information for recommendation caching.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// ArchiveConfig configures the S3-compatible report archive.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// AuthConfig controls token issuance.
type AuthConfig struct {
	Secret          string        `yaml:"secret"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	setBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	setInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	setDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)

	setString("LOG_FORMAT", &cfg.Logging.Format)

	setString("LLM_API_KEY", &cfg.LLM.APIKey)
	// GROQ_API_KEY is what most deployments of the dashboard already export.
	if cfg.LLM.APIKey == "" {
		setString("GROQ_API_KEY", &cfg.LLM.APIKey)
	}
	setString("LLM_BASE_URL", &cfg.LLM.BaseURL)
	setString("LLM_MODEL", &cfg.LLM.Model)
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	setInt("LLM_MAX_TOKENS", &cfg.LLM.MaxTokens)
	setDuration("LLM_TIMEOUT", &cfg.LLM.Timeout)

	setString("RECOMMEND_PROMPT", &cfg.Recommend.Prompt)
	setString("RECOMMEND_CHAT_PROMPT", &cfg.Recommend.ChatPrompt)
	setDuration("RECOMMEND_CACHE_TTL", &cfg.Recommend.CacheTTL)
	setInt("RECOMMEND_HISTORY_TOKEN_BUDGET", &cfg.Recommend.HistoryTokenBudget)

	setDuration("FOOTPRINT_COLLABORATOR_TIMEOUT", &cfg.Footprint.CollaboratorTimeout)
	setInt("FOOTPRINT_LEADERBOARD_LIMIT", &cfg.Footprint.LeaderboardLimit)

	setString("DATABASE_URL", &cfg.Database.DSN)
	if v := os.Getenv("DATABASE_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Database.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("DATABASE_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Database.MinConns = int32(parsed)
		}
	}

	setBool("CACHE_ENABLED", &cfg.Cache.Enabled)
	setString("CACHE_ADDR", &cfg.Cache.Addr)

	setBool("ARCHIVE_ENABLED", &cfg.Archive.Enabled)
	setString("ARCHIVE_ENDPOINT", &cfg.Archive.Endpoint)
	setString("ARCHIVE_ACCESS_KEY", &cfg.Archive.AccessKey)
	setString("ARCHIVE_SECRET_KEY", &cfg.Archive.SecretKey)
	setString("ARCHIVE_BUCKET", &cfg.Archive.Bucket)
	setString("ARCHIVE_REGION", &cfg.Archive.Region)

	setString("AUTH_SECRET", &cfg.Auth.Secret)
	setDuration("AUTH_TOKEN_TTL", &cfg.Auth.TokenTTL)
	setDuration("AUTH_REFRESH_TOKEN_TTL", &cfg.Auth.RefreshTokenTTL)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Routes: []string{
					"/api/v1/footprint/simulate",
					"/api/v1/recommendations",
					"/api/v1/recommendations/chat",
				},
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		LLM: LLMConfig{
			BaseURL:       "https://api.groq.com/openai/v1",
			Model:         "llama-3.1-8b-instant",
			Temperature:   0.25,
			MaxTokens:     900,
			ChatMaxTokens: 350,
			Timeout:       20 * time.Second,
		},
		Recommend: RecommendConfig{
			Prompt:             "You are a carbon reduction coach. Produce 4 to 6 practical, personalised recommendations that target the highest-impact category first. Every tip must be concrete, measurable and realistic for an individual household.",
			ChatPrompt:         "You are CarbonLens, a friendly sustainability coach. Answer using the user's analyzer values, keep replies under 120 words and suggest one concrete next step.",
			CacheTTL:           6 * time.Hour,
			HistoryTokenBudget: 1200,
			Encoding:           "cl100k_base",
		},
		Footprint: FootprintConfig{
			CollaboratorTimeout: 3 * time.Second,
			LeaderboardLimit:    20,
			MonthlyWindow:       30 * 24 * time.Hour,
		},
		Database: DatabaseConfig{
			DSN:      "",
			MaxConns: 4,
			MinConns: 0,
		},
		Cache: CacheConfig{
			Enabled: false,
			Prefix:  "carbonlens",
		},
		Archive: ArchiveConfig{
			Bucket: "carbonlens-reports",
			Region: "auto",
		},
		Auth: AuthConfig{
			Secret:          "dev-secret-change-me",
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format %q must be json or text", c.Logging.Format)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens < 0 || c.LLM.ChatMaxTokens < 0 {
		return errors.New("llm token limits cannot be negative")
	}
	if strings.TrimSpace(c.Recommend.Prompt) == "" {
		return errors.New("recommend.prompt cannot be empty")
	}
	if strings.TrimSpace(c.Recommend.ChatPrompt) == "" {
		return errors.New("recommend.chatPrompt cannot be empty")
	}
	if c.Recommend.CacheTTL < 0 {
		return errors.New("recommend.cacheTtl cannot be negative")
	}
	if c.Recommend.HistoryTokenBudget <= 0 {
		return errors.New("recommend.historyTokenBudget must be positive")
	}
	if c.Footprint.CollaboratorTimeout <= 0 {
		return errors.New("footprint.collaboratorTimeout must be positive")
	}
	if c.Footprint.LeaderboardLimit <= 0 || c.Footprint.LeaderboardLimit > 100 {
		return errors.New("footprint.leaderboardLimit must be between 1 and 100")
	}
	if c.Footprint.MonthlyWindow <= 0 {
		return errors.New("footprint.monthlyWindow must be positive")
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("cache.addr cannot be empty when cache is enabled")
	}
	if c.Archive.Enabled {
		if strings.TrimSpace(c.Archive.Endpoint) == "" || strings.TrimSpace(c.Archive.Bucket) == "" {
			return errors.New("archive.endpoint and archive.bucket are required when archive is enabled")
		}
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty")
	}
	if c.Auth.TokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("auth token ttls must be positive")
	}
	return nil
}
