// Package config loads runtime settings from the environment, with an
// optional .env overlay for development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the ReWear server.
type Config struct {
	Addr          string        // listen address
	DBPath        string        // SQLite database file
	JWTSecret     string        // HMAC signing key; generated and persisted if empty
	JWTExpiry     time.Duration // bearer token lifetime
	InitialPoints int           // points granted at signup
	UploadReward  int           // points credited per item upload
	UploadsDir    string        // directory for uploaded item images
}

// Defaults.
const (
	DefaultAddr          = ":8080"
	DefaultDBPath        = "rewear.sqlite3"
	DefaultJWTExpiry     = 7 * 24 * time.Hour
	DefaultInitialPoints = 100
	DefaultUploadReward  = 50
	DefaultUploadsDir    = "uploads"
)

// Load builds a Config from environment variables, after overlaying an
// optional .env file. Missing variables fall back to defaults.
func Load() *Config {
	// A missing .env file is fine; real environments set variables directly.
	_ = godotenv.Load()

	return &Config{
		Addr:          getEnv("REWEAR_ADDR", DefaultAddr),
		DBPath:        getEnv("REWEAR_DB", DefaultDBPath),
		JWTSecret:     os.Getenv("REWEAR_JWT_SECRET"),
		JWTExpiry:     getEnvDuration("REWEAR_JWT_EXPIRY", DefaultJWTExpiry),
		InitialPoints: getEnvInt("REWEAR_INITIAL_POINTS", DefaultInitialPoints),
		UploadReward:  getEnvInt("REWEAR_UPLOAD_REWARD", DefaultUploadReward),
		UploadsDir:    getEnv("REWEAR_UPLOADS_DIR", DefaultUploadsDir),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
