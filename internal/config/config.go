// Package config provides configuration loading and structs for the chatbox server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Chat       ChatConfig       `yaml:"chat"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the document warehouse and the vector index.
type StorageConfig struct {
	WarehouseDir string `yaml:"warehouse_dir"`
	IndexPath    string `yaml:"index_path"`
}

// EmbeddingConfig holds settings for the remote embedding capability.
type EmbeddingConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`
}

// GenerationConfig holds settings for the remote generation capability.
type GenerationConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// ChatConfig holds chunking, retrieval, and language policy settings.
type ChatConfig struct {
	ChunkSize         int    `yaml:"chunk_size"`
	ChunkOverlap      int    `yaml:"chunk_overlap"`
	TopK              int    `yaml:"top_k"`
	PrimaryLanguage   string `yaml:"primary_language"`
	FallbackLanguage  string `yaml:"fallback_language"`
	StreamLineDelayMS int    `yaml:"stream_line_delay_ms"`
}

// LineDelay returns the pacing delay between streamed answer lines.
func (c *ChatConfig) LineDelay() time.Duration {
	return time.Duration(c.StreamLineDelayMS) * time.Millisecond
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// A .env file next to the config (or in the working directory) is loaded first so
// that API-key environment variables are available. Returns an error if the file
// cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.WarehouseDir = expandPath(cfg.Storage.WarehouseDir, configDir)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)

	// .env is optional; missing files are not an error.
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
