package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	ServerHost       string
	ServerPort       string
	JWTSigningKey    string
	JWTTTL           time.Duration
	CORSOrigins      []string
	LogLevel         string

	LLMProvider string
	Ollama      OllamaConfig
	OpenAI      OpenAIConfig

	TelegramToken string
}

// OllamaConfig describes the local inference endpoint.
type OllamaConfig struct {
	URL              string
	PreferredModel   string
	FallbackFamilies []string
	Transport        string
	ProbeTimeout     time.Duration
	ChatTimeout      time.Duration
	NumCtx           int
	NumPredict       int
}

type OpenAIConfig struct {
	Key     string
	BaseURL string
	Model   string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, using process environment")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getEnv("POSTGRES_DB", "mindease"),
		ServerHost:       getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		JWTSigningKey:    getEnv("JWT_SIGNING_KEY", "your-secret-signing-key"),
		JWTTTL:           getEnvDuration("JWT_TTL", 24*time.Hour),
		CORSOrigins:      getEnvList("CORS_ORIGINS", []string{"*"}),
		LogLevel:         getEnv("LOG_LEVEL", "info"),

		LLMProvider: getEnv("LLM_PROVIDER", "ollama"),
		Ollama: OllamaConfig{
			URL:              getEnv("OLLAMA_URL", "http://localhost:11434"),
			PreferredModel:   getEnv("OLLAMA_MODEL", "llama3.2:1b"),
			FallbackFamilies: getEnvList("OLLAMA_FALLBACK_FAMILIES", []string{"phi3", "llama3"}),
			Transport:        getEnv("OLLAMA_TRANSPORT", "chat"),
			ProbeTimeout:     getEnvDuration("INFERENCE_TIMEOUT", 5*time.Second),
			ChatTimeout:      getEnvDuration("CHAT_TIMEOUT", 60*time.Second),
			NumCtx:           getEnvInt("OLLAMA_NUM_CTX", 4096),
			NumPredict:       getEnvInt("OLLAMA_NUM_PREDICT", 256),
		},
		OpenAI: OpenAIConfig{
			Key:     getEnv("OPENAI_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},

		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),
	}
}

// Validate reports configuration that would make the service unusable.
func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}
	if c.JWTSigningKey == "" {
		return fmt.Errorf("JWT_SIGNING_KEY cannot be empty")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	switch c.LLMProvider {
	case "ollama":
		if c.Ollama.URL == "" {
			return fmt.Errorf("OLLAMA_URL cannot be empty")
		}
		if c.Ollama.Transport != "chat" && c.Ollama.Transport != "generate" {
			return fmt.Errorf("OLLAMA_TRANSPORT must be chat or generate, got %q", c.Ollama.Transport)
		}
	case "openai":
		if c.OpenAI.Key == "" {
			return fmt.Errorf("OPENAI_KEY is required when LLM_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.Ollama.ProbeTimeout <= 0 || c.Ollama.ChatTimeout <= 0 {
		return fmt.Errorf("inference timeouts must be > 0")
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

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logrus.Warnf("invalid integer in %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		logrus.Warnf("invalid duration in %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
