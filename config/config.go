// Package config loads server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	AllowedOrigins []string
	PostgresURL    string // empty means in-memory storage
	JWTKey         string
	TokenAge       time.Duration
	GinMode        string
	Debug          bool
}

func Load() (Config, error) {
	// missing .env is fine, real deployments set the environment directly
	godotenv.Load()

	cfg := Config{
		Addr:     ":5000",
		TokenAge: time.Hour * 24 * 7,
		GinMode:  os.Getenv("GIN_MODE"),
		Debug:    os.Getenv("DEBUG") == "true",
	}

	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}

	origins, exists := os.LookupEnv("ALLOWED_ORIGINS")
	if !exists {
		return Config{}, fmt.Errorf("missing ALLOWED_ORIGINS")
	}
	cfg.AllowedOrigins = strings.Split(origins, ",")

	cfg.JWTKey, exists = os.LookupEnv("JWT_KEY")
	if !exists {
		return Config{}, fmt.Errorf("missing JWT_KEY")
	}

	cfg.PostgresURL = os.Getenv("POSTGRES_URL")
	return cfg, nil
}
