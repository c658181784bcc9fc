package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/garnizeh/vagas/pkg/ollama"
)

const insecureJWTSecret = "supersecretkey"

type Config struct {
	Addr           string         `yaml:"addr"`
	APITimeout     time.Duration  `yaml:"timeout"`
	DatabasePath   string         `yaml:"database_path"`
	MigrateOnStart bool           `yaml:"migrate_on_start"`
	LogLevel       string         `yaml:"log_level"`
	Auth           AuthConfig     `yaml:"auth"`
	Slug           SlugConfig     `yaml:"slug"`
	Public         PublicConfig   `yaml:"public"`
	Profiler       ProfilerConfig `yaml:"profiler"`
	Ollama         OllamaConfig   `yaml:"ollama"`
}

type AuthConfig struct {
	// Require turns on JWT checks for the management routes.
	Require       bool          `yaml:"require"`
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenDuration time.Duration `yaml:"token_duration"`
}

type SlugConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// PublicConfig limits the unauthenticated slug lookup.
type PublicConfig struct {
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

type ProfilerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Model       string `yaml:"model"`
	Template    string `yaml:"template"`
	Workers     int    `yaml:"workers"`
	MaxAttempts int    `yaml:"max_attempts"`
}

// OllamaConfig is the ollama section; the client consumes it unchanged.
type OllamaConfig = ollama.Config

// DefaultProfileTemplate is rendered with the applicant and posting.
const DefaultProfileTemplate = `You are helping a recruiter screen candidates for the position "{{.Posting.Name}}".
Position description: {{.Posting.Description}}

Candidate: {{.Applicant.FullName}}
Declared skills: {{.Applicant.Skills}}

Interview transcript:
{{.Applicant.Transcript}}

Write a short professional profile of the candidate (at most 120 words) based only on the transcript and skills above.`

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:           getEnv("VAGAS_ADDR", ":8000"),
		APITimeout:     15 * time.Second,
		DatabasePath:   getEnv("VAGAS_DATABASE_PATH", "vagas.db"),
		MigrateOnStart: true,
		LogLevel:       getEnv("VAGAS_LOG_LEVEL", "info"),
		Auth: AuthConfig{
			JWTSecret:     getEnv("VAGAS_JWT_SECRET", insecureJWTSecret),
			TokenDuration: 1 * time.Hour,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the configuration and fills defaults for unset optional
// sections.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is required"))
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}

	if c.Auth.Require {
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("auth.jwt_secret is required when auth.require is set"))
		} else if c.Auth.JWTSecret == insecureJWTSecret && os.Getenv("VAGAS_ENV") != "development" {
			errs = append(errs, errors.New("auth.jwt_secret uses the insecure default; set VAGAS_JWT_SECRET or VAGAS_ENV=development"))
		}
	}
	if c.Auth.TokenDuration <= 0 {
		c.Auth.TokenDuration = 1 * time.Hour
	}

	if c.Slug.MaxAttempts <= 0 {
		c.Slug.MaxAttempts = 5
	}

	if c.Public.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("public.rate_limit must be >= 0, got %v", c.Public.RateLimit))
	}
	if c.Public.RateLimit == 0 {
		c.Public.RateLimit = 20
	}
	if c.Public.Burst <= 0 {
		c.Public.Burst = 40
	}

	if c.Profiler.Enabled && c.Profiler.Model == "" {
		errs = append(errs, errors.New("profiler.model is required when the profiler is enabled"))
	}
	if c.Profiler.Template == "" {
		c.Profiler.Template = DefaultProfileTemplate
	}
	if c.Profiler.Workers <= 0 {
		c.Profiler.Workers = 1
	}
	if c.Profiler.MaxAttempts <= 0 {
		c.Profiler.MaxAttempts = 3
	}

	def := ollama.DefaultConfig()
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = def.BaseURL
	}
	if c.Ollama.Timeout <= 0 {
		c.Ollama.Timeout = def.Timeout
	}
	if c.Ollama.Retries == 0 {
		c.Ollama.Retries = def.Retries
	}
	if c.Ollama.Backoff <= 0 {
		c.Ollama.Backoff = def.Backoff
	}
	if c.Ollama.CircuitFailureThreshold <= 0 {
		c.Ollama.CircuitFailureThreshold = def.CircuitFailureThreshold
	}
	if c.Ollama.CircuitReset <= 0 {
		c.Ollama.CircuitReset = def.CircuitReset
	}

	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
