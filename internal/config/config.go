package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Token struct {
		Secret string `yaml:"secret"`
	} `yaml:"token"`
	CORS struct {
		Origins []string `yaml:"origins"`
	} `yaml:"cors"`
}

// Load reads YAML config from path. A missing file yields the zero config
// so the service can start against the in-memory demo corpus.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TokenSecret resolves the signing key: config, then TOKEN_SECRET, then a
// development-only fallback. The key is read once at startup and must not
// change while the process runs, or outstanding tokens stop verifying.
func (c Config) TokenSecret() string {
	if c.Token.Secret != "" {
		return c.Token.Secret
	}
	if env := os.Getenv("TOKEN_SECRET"); env != "" {
		return env
	}
	return DefaultTokenSecret
}

// DefaultTokenSecret is only acceptable outside production.
const DefaultTokenSecret = "change-me"

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
