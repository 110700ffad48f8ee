// Package config loads the static run configuration.
// A YAML file provides the tunables; bucket, prefix, and credentials can
// be overridden from the environment (a .env file is honored at startup).
// The resulting Config is immutable and passed into components once —
// nothing reads ambient configuration after startup.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for the discovery engine.
const (
	DefaultTargetLimit   = 1000
	DefaultHashThreshold = 12
	DefaultTemplatesDir  = "./templates"
	DefaultAccessKeyEnv  = "S3_ACCESS_KEY_ID"
	DefaultSecretKeyEnv  = "S3_SECRET_ACCESS_KEY"
)

// S3Config holds the object store connection settings.
type S3Config struct {
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	AccessKeyEnv string `yaml:"access_key_env"`
	SecretKeyEnv string `yaml:"secret_key_env"`
}

// Config is the full static configuration for one run.
type Config struct {
	Bucket        string   `yaml:"bucket"`
	Prefix        string   `yaml:"prefix"`
	TargetLimit   int      `yaml:"target_limit"`
	HashThreshold int      `yaml:"hash_threshold"`
	TemplatesDir  string   `yaml:"templates_dir"`
	S3            S3Config `yaml:"s3"`
}

// Load reads the config from path. A missing file yields defaults.
// Environment variables S3_BUCKET_NAME and S3_PREFIX override the file.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Validate checks the fields every command depends on.
func (c *Config) Validate() error {
	if c.TargetLimit <= 0 {
		return fmt.Errorf("target_limit must be positive, got %d", c.TargetLimit)
	}
	if c.HashThreshold < 0 {
		return fmt.Errorf("hash_threshold must not be negative, got %d", c.HashThreshold)
	}
	if c.TemplatesDir == "" {
		return fmt.Errorf("templates_dir is required")
	}
	return nil
}

// ValidateRemote additionally checks the object store settings needed
// by commands that talk to S3.
func (c *Config) ValidateRemote() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required (config file or S3_BUCKET_NAME)")
	}
	return nil
}

// Credentials resolves the access key pair from the environment.
func (c *Config) Credentials() (accessKey, secretKey string, err error) {
	accessKey = os.Getenv(c.S3.AccessKeyEnv)
	secretKey = os.Getenv(c.S3.SecretKeyEnv)
	if accessKey == "" || secretKey == "" {
		return "", "", fmt.Errorf("missing credentials: set %s and %s",
			c.S3.AccessKeyEnv, c.S3.SecretKeyEnv)
	}
	return accessKey, secretKey, nil
}

func defaultConfig() *Config {
	return &Config{
		TargetLimit:   DefaultTargetLimit,
		HashThreshold: DefaultHashThreshold,
		TemplatesDir:  DefaultTemplatesDir,
		S3: S3Config{
			AccessKeyEnv: DefaultAccessKeyEnv,
			SecretKeyEnv: DefaultSecretKeyEnv,
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.TargetLimit == 0 {
		cfg.TargetLimit = DefaultTargetLimit
	}
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = DefaultTemplatesDir
	}
	if cfg.S3.AccessKeyEnv == "" {
		cfg.S3.AccessKeyEnv = DefaultAccessKeyEnv
	}
	if cfg.S3.SecretKeyEnv == "" {
		cfg.S3.SecretKeyEnv = DefaultSecretKeyEnv
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("S3_BUCKET_NAME"); v != "" {
		cfg.Bucket = v
	}
	if v := os.Getenv("S3_PREFIX"); v != "" {
		cfg.Prefix = v
	}
}
