package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/logging"
)

const envPrefix = "ALUMNI_"

type Config struct {
	Port        string         `koanf:"port"`
	DatabaseURL string         `koanf:"database_url"`
	NATSURL     string         `koanf:"nats_url"`
	CORSOrigins []string       `koanf:"cors_origins"`
	RateLimit   RateLimit      `koanf:"rate_limit"`
	Relay       Relay          `koanf:"relay"`
	SessionTTL  time.Duration  `koanf:"session_ttl"`
	Log         logging.Config `koanf:"log"`
}

type RateLimit struct {
	RequestsPerMinute int `koanf:"requests_per_minute"`
}

type Relay struct {
	PollInterval time.Duration `koanf:"poll_interval"`
	BatchSize    int           `koanf:"batch_size"`
}

func defaults() *Config {
	return &Config{
		Port:        "8080",
		DatabaseURL: "",
		NATSURL:     "",
		CORSOrigins: []string{"*"},
		RateLimit:   RateLimit{RequestsPerMinute: 120},
		Relay:       Relay{PollInterval: time.Second, BatchSize: 100},
		SessionTTL:  8 * time.Hour,
		Log:         logging.Config{Level: "info"},
	}
}

// Load layers defaults, an optional YAML file (ALUMNI_CONFIG or ./config.yaml),
// and ALUMNI_-prefixed environment variables, highest last.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := configPath(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Relay.PollInterval <= 0 {
		cfg.Relay.PollInterval = time.Second
	}
	if cfg.Relay.BatchSize <= 0 {
		cfg.Relay.BatchSize = 100
	}
	return cfg, nil
}

// envKey maps ALUMNI_RATE_LIMIT_REQUESTS_PER_MINUTE style variables onto
// koanf paths. Single-underscore segments nest one level deep at most, so
// the mapping is by longest known section prefix.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	for _, section := range []string{"rate_limit", "relay", "log"} {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

func configPath() string {
	if path := os.Getenv("ALUMNI_CONFIG"); path != "" {
		return path
	}
	for _, path := range []string{"config.yaml", "config.yml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
