package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Realm holds all configuration for the realm binary: the client-facing
// listener, the capacity-gated account/character collections of C11, and
// the per-session write-queue timing the teacher's client.go exposes.
type Realm struct {
	// Network — the client-facing listener.
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// World-link connection (C9's realm side). Out of scope for this
	// repo's single-process Server (realm and world share an
	// InstanceManager in-process, see cmd/realm/main.go), kept here so a
	// future split-process deployment only needs to fill it in.
	WorldHost string `yaml:"world_host"`
	WorldPort int    `yaml:"world_port"`

	// Player/World Managers (C11)
	SessionCapacity int `yaml:"session_capacity"` // 0 = unbounded

	// Per-session write queue (mirrors the teacher's client.go timings)
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	SendQueueSize int           `yaml:"send_queue_size"`

	Database DatabaseConfig `yaml:"database"`

	LogLevel string `yaml:"log_level"`
}

// DefaultRealm returns Realm config with sensible defaults.
func DefaultRealm() Realm {
	return Realm{
		BindAddress:     "0.0.0.0",
		Port:            2106,
		WorldHost:       "127.0.0.1",
		WorldPort:       9014,
		SessionCapacity: 0,
		WriteTimeout:    5 * time.Second,
		SendQueueSize:   256,
		Database:        defaultDatabase("realmcore_world"),
		LogLevel:        "info",
	}
}

// LoadRealm loads realm config from a YAML file. If the file doesn't
// exist, returns defaults.
func LoadRealm(path string) (Realm, error) {
	cfg := DefaultRealm()

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
