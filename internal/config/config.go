package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied to optional fields.
const (
	DefaultOutputDir = "./reports"
	DefaultLogFile   = "./buildlens.log"
	DefaultTokenEnv  = "BUILDLENS_TOKEN"
)

// Config is the root YAML configuration (buildlens.yaml).
type Config struct {
	// Organization is the Azure DevOps organization name.
	Organization string `yaml:"organization"`

	// Project is the Azure DevOps project name.
	Project string `yaml:"project"`

	// TokenEnv names the environment variable carrying a bearer token.
	// When the variable is empty or unset, a token is acquired through the
	// Azure CLI instead.
	TokenEnv string `yaml:"token_env"`

	// AzCommand overrides how the Azure CLI is invoked, e.g. a wrapper
	// script. Parsed with shell quoting rules. Defaults to "az".
	AzCommand string `yaml:"az_command"`

	// OutputDir is where report files are written.
	OutputDir string `yaml:"output_dir"`

	// LogFile is where structured logs are appended.
	LogFile string `yaml:"log_file"`
}

// Load reads, parses, validates, and defaults the configuration file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if errors := Validate(&cfg); len(errors) > 0 {
		return nil, fmt.Errorf("invalid configuration in %s:\n%s",
			configPath, strings.Join(errors, "\n"))
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Validate checks the required fields and value shapes.
func Validate(cfg *Config) []string {
	var errors []string

	if cfg.Organization == "" {
		errors = append(errors, "  - missing required 'organization' field")
	}
	if cfg.Project == "" {
		errors = append(errors, "  - missing required 'project' field")
	}
	if strings.ContainsAny(cfg.Organization, "/ ") {
		errors = append(errors, fmt.Sprintf("  - 'organization' must be a bare organization name, got %q", cfg.Organization))
	}

	return errors
}

func applyDefaults(cfg *Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile
	}
	if cfg.TokenEnv == "" {
		cfg.TokenEnv = DefaultTokenEnv
	}
}

// Token returns the bearer token from the configured environment variable,
// or empty when the variable is unset; the caller then falls back to the
// Azure CLI.
func (c *Config) Token() string {
	return os.Getenv(c.TokenEnv)
}
