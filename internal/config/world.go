package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// World holds all configuration for the world binary: the World Instance
// Manager's tick loop (C10), each WorldInstance's Visibility Grid sizing
// (C3), the Movement Core's heartbeat timing (C4), and the realm-link
// listener a Server accepts C9 proxy connections on.
type World struct {
	// Network — the realm-facing listener (C9's world side).
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// World Instance Manager (C10)
	TickRate time.Duration `yaml:"tick_rate"` // global ticker period

	// Visibility Grid (C3)
	TileSize    float32 `yaml:"tile_size"`
	SightRadius int     `yaml:"sight_radius"` // in tiles

	// Movement Core (C4)
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	AckTimeout        time.Duration `yaml:"ack_timeout"`

	// Database (C5 load/save via internal/db)
	Database DatabaseConfig `yaml:"database"`

	LogLevel string `yaml:"log_level"`
}

// DefaultWorld returns World config with the spec's stated design
// defaults (sight radius 2, heartbeat 500ms, ack timeout 10s — see
// DESIGN.md's Open Question decisions).
func DefaultWorld() World {
	return World{
		BindAddress:       "0.0.0.0",
		Port:              9014,
		TickRate:          100 * time.Millisecond,
		TileSize:          256,
		SightRadius:       2,
		HeartbeatInterval: 500 * time.Millisecond,
		AckTimeout:        10 * time.Second,
		Database:          defaultDatabase("realmcore_world"),
		LogLevel:          "info",
	}
}

// LoadWorld loads world config from a YAML file. If the file doesn't
// exist, returns defaults.
func LoadWorld(path string) (World, error) {
	cfg := DefaultWorld()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
