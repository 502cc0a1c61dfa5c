// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment variables read by FromEnv.
const (
	EnvBaseURL        = "RESUME_PARSER_URL"
	EnvFlow           = "RESUME_UPLOAD_FLOW"
	EnvTimeoutSeconds = "RESUME_UPLOAD_TIMEOUT_SECONDS"
	EnvAccept         = "RESUME_UPLOAD_ACCEPT"
	EnvPort           = "PORT"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	BaseURL        string `json:"base_url,omitempty" validate:"omitempty,url,startswith=http"` // Parsing service base URL; /upload is appended
	Flow           string `json:"flow,omitempty" validate:"omitempty,oneof=rich minimal"`      // Expected response shape
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" validate:"gte=0,lte=600"`          // Upload request timeout
	Accept         string `json:"accept,omitempty"`                                            // Picker filter, e.g. "application/pdf"
	Port           int    `json:"port,omitempty" validate:"gte=0,lte=65535"`                   // Port for the local upload page
	Verbose        bool   `json:"verbose,omitempty"`                                           // Print detailed debug information
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BaseURL:        "http://localhost:5000",
		Flow:           "rich",
		TimeoutSeconds: 60,
		Accept:         "application/pdf",
		Port:           8080,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables. Unset variables leave fields empty.
func FromEnv() (*Config, error) {
	cfg := &Config{
		BaseURL: strings.TrimSpace(os.Getenv(EnvBaseURL)),
		Flow:    strings.TrimSpace(os.Getenv(EnvFlow)),
		Accept:  strings.TrimSpace(os.Getenv(EnvAccept)),
	}

	if v := strings.TrimSpace(os.Getenv(EnvTimeoutSeconds)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvTimeoutSeconds, err)
		}
		cfg.TimeoutSeconds = n
	}

	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.Port = n
	}

	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON key names so errors match what users write in config files
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config error: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "url", "startswith":
		return fmt.Sprintf("'%s' must be an http(s) URL, got %q", fe.Field(), fe.Value())
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("'%s' must be non-negative", fe.Field())
	case "lte":
		return fmt.Sprintf("'%s' must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("'%s' failed '%s' validation", fe.Field(), fe.Tag())
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer environment, config file and built-in values under CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.Flow == "" {
		result.Flow = defaults.Flow
	}
	if result.Accept == "" {
		result.Accept = defaults.Accept
	}

	// Int fields: use default if zero
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Verbose is sticky: either layer can turn it on
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// Timeout returns TimeoutSeconds as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
