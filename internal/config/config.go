package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port    string `yaml:"port"`
		BaseURL string `yaml:"baseUrl"`
	} `yaml:"server"`
	Chain struct {
		Endpoints      []string `yaml:"endpoints"`
		ChainID        int64    `yaml:"chainId"`
		Contract       string   `yaml:"contract"`
		Owner          string   `yaml:"owner"`
		ServerKey      string   `yaml:"serverKey"`
		RefreshDelay   string   `yaml:"refreshDelay"`
		BatchSize      int      `yaml:"batchSize"`
		BatchDelay     string   `yaml:"batchDelay"`
		RetryAttempts  int      `yaml:"retryAttempts"`
		RetryBaseDelay string   `yaml:"retryBaseDelay"`
	} `yaml:"chain"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Game struct {
		BankID string `yaml:"bankId"`
	} `yaml:"game"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty or malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
