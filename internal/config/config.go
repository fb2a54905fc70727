package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by CROSSCHECK_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("CROSSCHECK_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func ExaAPIKey() string {
	return os.Getenv("EXA_API_KEY")
}

func TavilyAPIKey() string {
	return os.Getenv("TAVILY_API_KEY")
}

// LLMProvider returns the configured LLM provider.
// Defaults to "openai" if not set.
// Valid values: openai, anthropic, mock
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// MaxAgents caps how many agents one selection may contain.
// Defaults to 5 if not set.
func MaxAgents() int {
	n, err := strconv.Atoi(os.Getenv("MAX_AGENTS"))
	if err != nil || n <= 0 {
		return 5
	}
	return n
}

// RetryRounds is the number of re-planning rounds after the first pass.
// Defaults to 2 if not set.
func RetryRounds() int {
	n, err := strconv.Atoi(os.Getenv("RETRY_ROUNDS"))
	if err != nil || n < 0 {
		return 2
	}
	return n
}

// AgentTimeout bounds one first-attempt agent call.
// Defaults to 20s if not set.
func AgentTimeout() time.Duration {
	secs, err := strconv.Atoi(os.Getenv("AGENT_TIMEOUT_SECONDS"))
	if err != nil || secs <= 0 {
		return 20 * time.Second
	}
	return time.Duration(secs) * time.Second
}

// RetryTimeout bounds one retry or fallback agent call. Retries get more
// headroom than first attempts. Defaults to 30s if not set.
func RetryTimeout() time.Duration {
	secs, err := strconv.Atoi(os.Getenv("RETRY_TIMEOUT_SECONDS"))
	if err != nil || secs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(secs) * time.Second
}

// CacheBackend returns the configured cache backend.
// Defaults to "memory" if not set. Valid values: memory, postgres.
func CacheBackend() string {
	b := os.Getenv("CACHE_BACKEND")
	if b == "" {
		return "memory"
	}
	return b
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// CacheTTL is the default time-to-live for cached agent results.
// Defaults to 15 minutes if not set.
func CacheTTL() time.Duration {
	mins, err := strconv.Atoi(os.Getenv("CACHE_TTL_MINUTES"))
	if err != nil || mins <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(mins) * time.Minute
}

// ConfidenceFloor is the lowest final confidence the cross-validator reports.
// Defaults to 10 if not set.
func ConfidenceFloor() float64 {
	f, err := strconv.ParseFloat(os.Getenv("CONFIDENCE_FLOOR"), 64)
	if err != nil || f < 0 {
		return 10
	}
	return f
}

// ConfidenceCeiling is the highest final confidence the cross-validator
// reports. Defaults to 95 if not set.
func ConfidenceCeiling() float64 {
	c, err := strconv.ParseFloat(os.Getenv("CONFIDENCE_CEILING"), 64)
	if err != nil || c <= 0 || c > 100 {
		return 95
	}
	return c
}

// APIKey returns the static API key clients must present, or empty when auth
// is disabled.
func APIKey() string {
	return os.Getenv("API_KEY")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
