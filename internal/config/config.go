// Package config loads daemon configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/coldkeep/fortunad/internal/scheduler"
)

// AppConfig holds every environment-derived knob the daemon needs.
type AppConfig struct {
	ListenAddr string

	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string

	TelemetryEndpoint string
	DiskStatePath     string

	Scheduler scheduler.Config
}

// Load reads environment variables (and .env if present), applying
// the documented defaults for anything left unset.
func Load() *AppConfig {
	_ = godotenv.Load()

	c := &AppConfig{
		ListenAddr:        os.Getenv("LISTEN_ADDR"),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         os.Getenv("JWT_SECRET_KEY"),
		TelemetryEndpoint: os.Getenv("TELEMETRY_ENDPOINT"),
		DiskStatePath:     os.Getenv("DISK_STATE_PATH"),
		Scheduler:         scheduler.DefaultConfig(),
	}

	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.DiskStatePath == "" {
		c.DiskStatePath = "fortunad.state"
	}

	if v := durationEnv("MIN_RESEED_INTERVAL"); v > 0 {
		c.Scheduler.MinReseedInterval = v
	}
	if v := intEnv("SOURCE_POLL_CONCURRENCY"); v > 0 {
		c.Scheduler.SourcePollConcurrency = v
	}
	if v := intEnv("SOURCE_FAULT_DEMOTE_THRESHOLD"); v > 0 {
		c.Scheduler.SourceFaultDemoteThreshold = v
	}

	return c
}

func intEnv(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}

func durationEnv(key string) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}
