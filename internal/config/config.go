package config

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/playmatatu/plinko/internal/game"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Session Settings
	JWTSecret              string
	SessionTokenTTLMinutes int
	SessionIdleMinutes     int
	StartingBalance        float64
	BallCost               float64

	// Simulation
	TickRateHz         int
	SnapshotEveryTicks int

	// Board overrides (zero values keep the defaults)
	BoardWidth       float64
	BoardHeight      float64
	BoardRows        int
	BoardMultipliers []float64
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnv("MIGRATE_ON_START", "false") == "true",

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Session Settings
		JWTSecret:              getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTokenTTLMinutes: getEnvInt("SESSION_TOKEN_TTL_MINUTES", 240),
		SessionIdleMinutes:     getEnvInt("SESSION_IDLE_MINUTES", 30),
		StartingBalance:        getEnvFloat("STARTING_BALANCE", 1000),
		BallCost:               getEnvFloat("BALL_COST", game.DefaultBallCost),

		// Simulation
		TickRateHz:         getEnvInt("TICK_RATE_HZ", 60),
		SnapshotEveryTicks: getEnvInt("SNAPSHOT_EVERY_TICKS", 30),

		// Board
		BoardWidth:       getEnvFloat("BOARD_WIDTH", 0),
		BoardHeight:      getEnvFloat("BOARD_HEIGHT", 0),
		BoardRows:        getEnvInt("BOARD_ROWS", 0),
		BoardMultipliers: getEnvFloats("BOARD_MULTIPLIERS"),
	}
}

// BoardConfig applies the overrides on top of the default board.
func (c *Config) BoardConfig() game.BoardConfig {
	bc := game.DefaultBoardConfig()
	if c.BoardWidth > 0 {
		bc.Width = c.BoardWidth
	}
	if c.BoardHeight > 0 {
		bc.Height = c.BoardHeight
	}
	if c.BoardRows > 0 {
		bc.Rows = c.BoardRows
	}
	if len(c.BoardMultipliers) > 0 {
		bc.Multipliers = c.BoardMultipliers
	}
	return bc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat falls back to the default for anything that isn't a finite,
// non-negative number. Every float setting is a size or an amount.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && validAmount(f) {
			return f
		}
	}
	return defaultValue
}

func validAmount(f float64) bool {
	return f >= 0 && !math.IsInf(f, 1)
}

// getEnvFloats parses a comma-separated list. Any bad entry discards the whole list.
func getEnvFloats(key string) []float64 {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || !validAmount(f) {
			return nil
		}
		out = append(out, f)
	}
	return out
}
