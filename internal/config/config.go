package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Chat    ChatConfig
	Janitor JanitorConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type ChatConfig struct {
	HistoryLimit       int
	JoinHistoryLimit   int
	PinLimit           int
	NotifySelfMentions bool
	SendRateRPS        float64
	SendRateBurst      int
}

type JanitorConfig struct {
	Interval       time.Duration
	IdleEvictAfter time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", ":8080"),
			ReadTimeout:  getDurationOrDefault("READ_TIMEOUT", "15s"),
			WriteTimeout: getDurationOrDefault("WRITE_TIMEOUT", "15s"),
		},
		Chat: ChatConfig{
			HistoryLimit:       getIntOrDefault("CHAT_HISTORY_LIMIT", 200),
			JoinHistoryLimit:   getIntOrDefault("CHAT_JOIN_HISTORY_LIMIT", 100),
			PinLimit:           getIntOrDefault("CHAT_PIN_LIMIT", 10),
			NotifySelfMentions: getBoolOrDefault("NOTIFY_SELF_MENTIONS", false),
			SendRateRPS:        getFloatOrDefault("SEND_RATE_RPS", 5),
			SendRateBurst:      getIntOrDefault("SEND_RATE_BURST", 10),
		},
		Janitor: JanitorConfig{
			Interval:       getDurationOrDefault("JANITOR_INTERVAL", "1h"),
			IdleEvictAfter: getDurationOrDefault("IDLE_EVICT_AFTER", "24h"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key, defaultValue string) time.Duration {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Invalid duration for %s: %v", key, err)
	}
	return duration
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Invalid integer for %s: %v", key, err)
	}
	return intValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Fatalf("Invalid boolean for %s: %v", key, err)
	}
	return boolValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatalf("Invalid float for %s: %v", key, err)
	}
	return floatValue
}
