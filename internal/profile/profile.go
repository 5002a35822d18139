package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/interviewforge/interviewforge/internal/version"
)

// Profile is the configuration to start the interviewforge server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Data is the data directory; session databases and study artifacts live here
	Data string
	// DSN points to where interviewforge stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of the server
	Version string

	// Generation service configuration
	AIEnabled     bool    // IFORGE_AI_ENABLED
	AIBaseURL     string  // IFORGE_AI_BASE_URL (default: https://api.openai.com/v1)
	AIAPIKey      string  // IFORGE_AI_API_KEY
	AIModel       string  // IFORGE_AI_MODEL (default: gpt-4o-mini)
	AITemperature float64 // IFORGE_AI_TEMPERATURE (default: 0.2)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if the generation service is enabled and an API
// key is configured. Without it the deterministic offline stub is used.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads the generation service configuration from environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("IFORGE_AI_ENABLED") == "true"
	p.AIBaseURL = getEnvOrDefault("IFORGE_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIAPIKey = os.Getenv("IFORGE_AI_API_KEY")
	p.AIModel = getEnvOrDefault("IFORGE_AI_MODEL", "gpt-4o-mini")
	if v := os.Getenv("IFORGE_AI_TEMPERATURE"); v != "" {
		if temperature, err := strconv.ParseFloat(v, 64); err == nil {
			p.AITemperature = temperature
		}
	}
	if p.AITemperature == 0 {
		p.AITemperature = 0.2
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Data == "" {
		p.Data = "data"
	}
	if err := os.MkdirAll(p.Data, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create data directory %s", p.Data)
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("interviewforge_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Version == "" {
		p.Version = version.GetCurrentVersion(p.Mode)
	}

	return nil
}
