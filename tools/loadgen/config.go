package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// LoadgenConfig represents the configuration file structure
type LoadgenConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (*LoadgenConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg LoadgenConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(path string, cfg *LoadgenConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}
