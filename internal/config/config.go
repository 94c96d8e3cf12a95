package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	defaultOpenAIModel = "gpt-4o-mini"
	defaultGeminiModel = "gemini-2.5-flash"
)

type Config struct {
	Server ServerConfig
	LLM    LLMConfig
	Limits LimitsConfig
	Fetch  FetchConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	BodyLimit int
}

type LLMConfig struct {
	Provider        string
	APIKey          string
	Model           string
	BaseURL         string
	Timeout         time.Duration
	MaxOutputTokens int
	Temperature     float32
}

type LimitsConfig struct {
	ExtractionCap int
	PromptCap     int
	PreviewCap    int
	MaxUploadSize int64
}

type FetchConfig struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	// RatePerSecond bounds outbound document fetches across all requests; 0 disables the limit.
	RatePerSecond float64
	Burst         int
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

// ConfigurationError reports a missing or invalid setting that makes analysis impossible.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	env := getEnv("ENV", getEnv("NODE_ENV", "development"))
	provider := strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", ProviderOpenAI)))

	return &Config{
		Server: ServerConfig{
			Port:      getEnv("PORT", "3000"),
			Env:       env,
			BodyLimit: getEnvAsInt("BODY_LIMIT", 12*1024*1024),
		},
		LLM: LLMConfig{
			Provider:        provider,
			APIKey:          getEnv("LLM_API_KEY", providerAPIKey(provider)),
			Model:           getEnv("LLM_MODEL", providerModel(provider)),
			BaseURL:         getEnv("OPENAI_BASE_URL", ""),
			Timeout:         getEnvAsDuration("LLM_TIMEOUT", "30s"),
			MaxOutputTokens: getEnvAsInt("LLM_MAX_OUTPUT_TOKENS", 2500),
			Temperature:     float32(getEnvAsFloat("LLM_TEMPERATURE", 0.1)),
		},
		Limits: LimitsConfig{
			ExtractionCap: getEnvAsInt("EXTRACTION_CAP", 160000),
			PromptCap:     getEnvAsInt("PROMPT_CAP", 8000),
			PreviewCap:    getEnvAsInt("PREVIEW_CAP", 10000),
			MaxUploadSize: getEnvAsInt64("MAX_FILE_SIZE", 10*1024*1024),
		},
		Fetch: FetchConfig{
			Timeout:       getEnvAsDuration("FETCH_TIMEOUT", "20s"),
			UserAgent:     getEnv("FETCH_USER_AGENT", DefaultUserAgent),
			MaxBodyBytes:  getEnvAsInt64("FETCH_MAX_BODY_BYTES", 5*1024*1024),
			RatePerSecond: getEnvAsFloat("FETCH_RATE_PER_SEC", 5),
			Burst:         getEnvAsInt("FETCH_BURST", 10),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", env == "development"),
		},
	}
}

// DefaultUserAgent is sent with every document fetch; many job boards reject bare Go clients.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Validate reports whether the completion provider can be used.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("unknown LLM provider %q", c.LLM.Provider)}
	}

	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return &ConfigurationError{Reason: fmt.Sprintf("%s API key not configured", c.LLM.Provider)}
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func providerAPIKey(provider string) string {
	switch provider {
	case ProviderGemini:
		return getEnv("GEMINI_API_KEY", "")
	default:
		return getEnv("OPENAI_API_KEY", "")
	}
}

func providerModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return getEnv("GEMINI_MODEL", defaultGeminiModel)
	default:
		return getEnv("OPENAI_MODEL", defaultOpenAIModel)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
