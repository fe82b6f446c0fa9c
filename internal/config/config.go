package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API       *APIconfig
	Realtime  *Realtimeconfig
	RabbitMq  *RabbitMqconfig
	Auth      *Authconfig
	Telemetry *Telemetryconfig
	Log       *Loggerconfig
}

type APIconfig struct {
	BaseURL string
	Timeout time.Duration
}

type Realtimeconfig struct {
	// Transport is "ws" or "amqp".
	Transport string
	WSURL     string
}

type RabbitMqconfig struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

type Authconfig struct {
	JWTSecret string
}

type Telemetryconfig struct {
	NormalInterval        time.Duration
	HighFrequencyInterval time.Duration
}

type Loggerconfig struct {
	Level string
}

func New() (*Config, error) {
	// A local .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	getEnv := func(key, def string) string {
		val := os.Getenv(key)
		if val == "" {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		return val
	}

	getEnvInt := func(key string, def int) int {
		valStr := os.Getenv(key)
		if valStr == "" {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		val, err := strconv.Atoi(valStr)
		if err != nil {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		return val
	}

	getEnvDuration := func(key string, def time.Duration) time.Duration {
		valStr := os.Getenv(key)
		if valStr == "" {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		val, err := time.ParseDuration(valStr)
		if err != nil {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		return val
	}

	cnf := &Config{
		API: &APIconfig{
			BaseURL: getEnv("API_BASE_URL", "https://localhost:3001"),
			Timeout: getEnvDuration("API_TIMEOUT", 10*time.Second),
		},
		Realtime: &Realtimeconfig{
			Transport: getEnv("REALTIME_TRANSPORT", "ws"),
			WSURL:     getEnv("WS_URL", "ws://localhost:3001/ws/drivers"),
		},
		RabbitMq: &RabbitMqconfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnvInt("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", ""),
		},
		Auth: &Authconfig{
			JWTSecret: getEnv("JWT_SECRET", "secret"),
		},
		Telemetry: &Telemetryconfig{
			NormalInterval:        getEnvDuration("TELEMETRY_NORMAL_INTERVAL", 30*time.Second),
			HighFrequencyInterval: getEnvDuration("TELEMETRY_HIGH_FREQUENCY_INTERVAL", 10*time.Second),
		},
		Log: &Loggerconfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}

	return cnf, nil
}
