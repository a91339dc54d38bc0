package main

import (
	"fmt"
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service settings.  Values come from the defaults, then the YAML file, then the environment,
// then the command line.
type Config struct {
	HTTPAddr         string        `yaml:"http_addr"`
	MongoHost        string        `yaml:"mongo_host"`
	Database         string        `yaml:"database"`
	BaseURL          string        `yaml:"base_url"`
	CalculationDelay time.Duration `yaml:"calculation_delay"`
	CORSOrigins      []string      `yaml:"cors_origins"`
}

// DefaultConfig is used for anything the YAML file doesn't set
func DefaultConfig() Config {
	return Config{
		HTTPAddr:         ":9000",
		MongoHost:        "localhost",
		Database:         "news2service",
		CalculationDelay: 3 * time.Second,
		CORSOrigins:      []string{"*"},
	}
}

// LoadConfig reads the YAML file at path over the defaults.  An empty path gives the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %v", err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config file: %v", err)
	}
	if cfg.CalculationDelay < 0 {
		return cfg, fmt.Errorf("calculation_delay must not be negative, got %s", cfg.CalculationDelay)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.  MONGO_PORT_27017_TCP_ADDR is set when running in Docker
// with a linked MongoDB container.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if host := getenv("MONGO_PORT_27017_TCP_ADDR"); host != "" {
		c.MongoHost = host
	}
	if db := getenv("NEWS2_DATABASE"); db != "" {
		c.Database = db
	}
	if addr := getenv("NEWS2_HTTP_ADDR"); addr != "" {
		c.HTTPAddr = addr
	}
	if base := getenv("NEWS2_BASE_URL"); base != "" {
		c.BaseURL = base
	}
	if delay := getenv("NEWS2_CALCULATION_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil || d < 0 {
			return fmt.Errorf("NEWS2_CALCULATION_DELAY must be a duration, got %q", delay)
		}
		c.CalculationDelay = d
	}
	return nil
}
