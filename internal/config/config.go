package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	PublicBaseURL  string

	// Dialogue
	DefaultLanguage string
	FlowConfigPath  string // optional yaml overlay for flow/prompts/lenders

	// Turn interpreter
	GeminiAPIKey       string // empty disables the model, rule extractor only
	GeminiModel        string
	InterpreterTimeout time.Duration

	// Conversation context store
	RedisAddr     string // empty selects the in-memory store
	RedisPassword string
	RedisDB       int

	// Outbound dialing
	MaxConcurrentCalls int
	DialTick           time.Duration
	SchedulerTick      time.Duration

	// Collaborators
	TelephonyBaseURL string
	TelephonyToken   string
	SpeechBaseURL    string
	SpeechToken      string
	CRMBaseURL       string
	CRMToken         string

	// Monitor websocket
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		PublicBaseURL:    getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		DefaultLanguage:  getEnv("DEFAULT_LANGUAGE", "hinglish"),
		FlowConfigPath:   getEnv("FLOW_CONFIG_PATH", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		TelephonyBaseURL: getEnv("TELEPHONY_BASE_URL", ""),
		TelephonyToken:   getEnv("TELEPHONY_TOKEN", ""),
		SpeechBaseURL:    getEnv("SPEECH_BASE_URL", ""),
		SpeechToken:      getEnv("SPEECH_TOKEN", ""),
		CRMBaseURL:       getEnv("CRM_BASE_URL", ""),
		CRMToken:         getEnv("CRM_TOKEN", ""),
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	config.RedisDB = redisDB

	interpreterTimeout, err := strconv.Atoi(getEnv("INTERPRETER_TIMEOUT_MS", "3000"))
	if err != nil {
		return nil, fmt.Errorf("invalid INTERPRETER_TIMEOUT_MS: %w", err)
	}
	if interpreterTimeout <= 0 || interpreterTimeout > 3000 {
		// The scoring call must never hold a turn longer than the contract budget
		return nil, fmt.Errorf("INTERPRETER_TIMEOUT_MS must be in (0, 3000], got %d", interpreterTimeout)
	}
	config.InterpreterTimeout = time.Duration(interpreterTimeout) * time.Millisecond

	maxCalls, err := strconv.Atoi(getEnv("MAX_CONCURRENT_CALLS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_CONCURRENT_CALLS: %w", err)
	}
	if maxCalls <= 0 {
		return nil, fmt.Errorf("MAX_CONCURRENT_CALLS must be positive, got %d", maxCalls)
	}
	config.MaxConcurrentCalls = maxCalls

	dialTick, err := strconv.Atoi(getEnv("DIAL_TICK_MS", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid DIAL_TICK_MS: %w", err)
	}
	config.DialTick = time.Duration(dialTick) * time.Millisecond

	schedulerTick, err := strconv.Atoi(getEnv("SCHEDULER_TICK_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_TICK_SECONDS: %w", err)
	}
	config.SchedulerTick = time.Duration(schedulerTick) * time.Second

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 4096

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
