// Package server implements the main Grafite server logic.
//
// This file defines the Go structs that correspond to the YAML configuration
// file. These structs allow for type-safe parsing of the configuration,
// covering the listen address, authentication and the tuning knobs of the
// embedded graph engine.

package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sferro/grafite/pkg/graph"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level structure of the server configuration file.
type Config struct {
	HTTPAddr  string       `yaml:"http_addr"`
	AuthToken string       `yaml:"auth_token"`
	Engine    EngineConfig `yaml:"engine"`
}

// EngineConfig holds the tunables of the embedded graph engine. Zero values
// fall back to the engine defaults.
type EngineConfig struct {
	PartitionThreshold int    `yaml:"partition_threshold"`
	MutationShards     int    `yaml:"mutation_shards"`
	WeightPrecision    string `yaml:"weight_precision"` // "float32" or "float16"
	CacheTTL           string `yaml:"cache_ttl"`        // Go duration, e.g. "5m"; "0" disables expiry
	Workers            int    `yaml:"workers"`
}

// LoadConfig reads and parses the YAML configuration file from the given path.
// It uses Strict Mode (KnownFields) to prevent silent errors due to typos.
// An empty path yields a Config with defaults only.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read configuration file '%s': %w", path, err)
	}

	// Allow ${VAR} references, e.g. for the auth token.
	expandedData := os.ExpandEnv(string(data))

	var config Config
	decoder := yaml.NewDecoder(strings.NewReader(expandedData))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}

	return &config, nil
}

// EngineOptions converts the YAML engine section into graph.Options,
// validating the precision and TTL strings.
func (c *EngineConfig) EngineOptions() (graph.Options, error) {
	opts := graph.DefaultOptions()

	if c.PartitionThreshold > 0 {
		opts.PartitionThreshold = c.PartitionThreshold
	}
	if c.MutationShards > 0 {
		opts.MutationShards = c.MutationShards
	}
	if c.Workers > 0 {
		opts.Workers = c.Workers
	}

	switch c.WeightPrecision {
	case "", "float32":
		opts.WeightPrecision = graph.Float32
	case "float16":
		opts.WeightPrecision = graph.Float16
	default:
		return opts, fmt.Errorf("unknown weight_precision '%s' (use \"float32\" or \"float16\")", c.WeightPrecision)
	}

	if c.CacheTTL != "" {
		ttl, err := time.ParseDuration(c.CacheTTL)
		if err != nil {
			return opts, fmt.Errorf("invalid cache_ttl '%s': %w", c.CacheTTL, err)
		}
		if ttl < 0 {
			return opts, fmt.Errorf("cache_ttl must not be negative, got '%s'", c.CacheTTL)
		}
		opts.CacheTTL = ttl
	}

	return opts, nil
}
