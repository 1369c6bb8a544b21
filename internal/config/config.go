// internal/config/config.go
//
// Process configuration from the environment.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it. Unset or malformed values fall back to
// the defaults below.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds every tunable the binaries read.
type Config struct {
	Port         string        // PORT
	LogLevel     string        // LOG_LEVEL
	LogFile      string        // LOG_FILE (terminal client)
	ClientOrigin string        // CLIENT_ORIGIN, allowed CORS origin
	JWTSecret    string        // JWT_SECRET
	TokenTTL     time.Duration // TOKEN_TTL, lifetime of a game token

	CatalogDB string // CATALOG_DB, SQLite path; empty disables the database
	WordsFile string // WORDS_FILE, catalog text file; empty uses the embedded list

	TickInterval   time.Duration // TICK_INTERVAL
	PoseDebounce   time.Duration // POSE_DEBOUNCE
	PlacementSalt  string        // PLACEMENT_SALT
	PoseClassifier string        // POSE_CLASSIFIER: nose | ratio
	IdleTimeout    time.Duration // SESSION_IDLE_TIMEOUT, 0 keeps games forever
}

// Load reads .env (if any) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("read .env")
	}
	return FromEnv()
}

// FromEnv reads the environment without touching .env.
func FromEnv() Config {
	return Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFile:      getEnv("LOG_FILE", ""),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		TokenTTL:     envDuration("TOKEN_TTL", 12*time.Hour),

		CatalogDB: getEnv("CATALOG_DB", ""),
		WordsFile: getEnv("WORDS_FILE", ""),

		TickInterval:   envDuration("TICK_INTERVAL", 200*time.Millisecond),
		PoseDebounce:   envDuration("POSE_DEBOUNCE", 400*time.Millisecond),
		PlacementSalt:  getEnv("PLACEMENT_SALT", "local_dev_salt"),
		PoseClassifier: getEnv("POSE_CLASSIFIER", "nose"),
		IdleTimeout:    envDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		return def
	}
	return n
}

// envDuration accepts Go duration strings ("250ms") or bare milliseconds.
func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n := envInt(k, -1); n >= 0 {
		return time.Duration(n) * time.Millisecond
	}
	return def
}
