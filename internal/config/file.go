// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors ServerConfig for the optional YAML config file.
// Durations are strings in Go duration syntax ("48h", "10m"). Values
// from the file sit between the built-in defaults and the environment:
// env vars always win.
type fileConfig struct {
	ListenAddr    string `yaml:"listen_addr"`
	DatabaseURL   string `yaml:"database_url"`
	StaleAfter    string `yaml:"source_stale_after"`
	SweepInterval string `yaml:"sweep_interval"`

	RateLimit struct {
		Enabled         *bool  `yaml:"enabled"`
		CleanupInterval string `yaml:"cleanup_interval"`

		Register  fileRouteLimit `yaml:"register"`
		Telemetry fileRouteLimit `yaml:"telemetry"`
		Analytics fileRouteLimit `yaml:"analytics"`
	} `yaml:"ratelimit"`
}

type fileRouteLimit struct {
	Requests *int   `yaml:"requests"`
	Period   string `yaml:"period"`
	Burst    *int   `yaml:"burst"`
}

// loadFile reads the YAML config file at path. A missing file is not an
// error unless the path was set explicitly via CORPUSWATCH_CONFIG.
func loadFile(path string, explicit bool) (fileConfig, error) {
	var fc fileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return fc, nil
		}
		return fc, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return fc, nil
}

func stringOr(fileVal, defaultVal string) string {
	if fileVal != "" {
		return fileVal
	}
	return defaultVal
}

func durationOr(fileVal string, defaultVal time.Duration) time.Duration {
	if fileVal != "" {
		if d, err := time.ParseDuration(fileVal); err == nil {
			return d
		}
	}
	return defaultVal
}

func intOr(fileVal *int, defaultVal int) int {
	if fileVal != nil {
		return *fileVal
	}
	return defaultVal
}

func boolOr(fileVal *bool, defaultVal bool) bool {
	if fileVal != nil {
		return *fileVal
	}
	return defaultVal
}
