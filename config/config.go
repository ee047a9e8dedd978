package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	Game          Game
}

// Game holds the simulation tunables, fixed per room at worker start.
type Game struct {
	FieldWidth    int
	FieldDepth    int
	PaddleWidth   int
	BallSpeed     float64
	WinThreshold  int
	TickRate      float64
	PreRoundDelay float64
}

func LoadConfig() *Config {
	return &Config{
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "user"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "dbname"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		Game: Game{
			FieldWidth:    getEnvInt("PONG_FIELD_WIDTH", 120),
			FieldDepth:    getEnvInt("PONG_FIELD_DEPTH", 160),
			PaddleWidth:   getEnvInt("PONG_PADDLE_WIDTH", 18),
			BallSpeed:     getEnvFloat("PONG_BALL_SPEED", 1.8),
			WinThreshold:  getEnvInt("PONG_WIN_THRESHOLD", 5),
			TickRate:      getEnvFloat("PONG_TICK_RATE", 60),
			PreRoundDelay: getEnvFloat("PONG_PRE_ROUND_DELAY", 3.0),
		},
	}
}

// getEnv reads an environment variable and returns its value or a default value
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Environment variable %s is not an integer, using default value: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Environment variable %s is not a number, using default value: %g", key, defaultValue)
		return defaultValue
	}
	return value
}
