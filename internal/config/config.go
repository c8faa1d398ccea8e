// Package config loads service configuration from an optional YAML file with
// environment variable overrides. Env always wins, so a deployment can ship a
// base file and tweak single values per instance.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr        string  `yaml:"addr"`
	GraphPath   string  `yaml:"graphPath"`
	DatabaseURL string  `yaml:"databaseUrl"`
	RedisURL    string  `yaml:"redisUrl"`
	Fleet       Fleet   `yaml:"fleet"`
	Planner     Planner `yaml:"planner"`
	Rate        Rate    `yaml:"rate"`
}

type Fleet struct {
	// Vehicles is the default fleet size when a request does not set one.
	Vehicles int `yaml:"vehicles"`
}

type Planner struct {
	Workers       int  `yaml:"workers"`
	ReturnToDepot bool `yaml:"returnToDepot"`
}

// Rate bounds dispatch requests per client; the exact search is expensive
// enough that an open endpoint needs a ceiling.
type Rate struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

func Default() Config {
	return Config{
		Addr:  ":8080",
		Fleet: Fleet{Vehicles: 2},
		Rate:  Rate{RPS: 5, Burst: 10},
	}
}

// Load reads the YAML file at path (missing file is fine, defaults apply) and
// then applies env overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if cfg.Fleet.Vehicles <= 0 {
		return cfg, fmt.Errorf("config: fleet.vehicles must be positive, got %d", cfg.Fleet.Vehicles)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("GRAPH_PATH"); v != "" {
		c.GraphPath = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("FLEET_VEHICLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Fleet.Vehicles = n
		}
	}
	if v := os.Getenv("PLANNER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Planner.Workers = n
		}
	}
	if v := os.Getenv("PLANNER_RETURN_TO_DEPOT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Planner.ReturnToDepot = b
		}
	}
	if v := os.Getenv("RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Rate.RPS = f
		}
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Rate.Burst = n
		}
	}
}
