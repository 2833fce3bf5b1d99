package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"llmchat/internal/history"
)

// Config holds runtime parameters for every entry point. Load starts from Default,
// so keys missing from a file keep their defaults.
type Config struct {
	Log     LogConfig      `json:"log" yaml:"log" toml:"log"`
	Server  ServerConfig   `json:"server" yaml:"server" toml:"server"`
	UI      UIConfig       `json:"ui" yaml:"ui" toml:"ui"`
	Model   ModelConfig    `json:"model" yaml:"model" toml:"model"`
	History history.Config `json:"history" yaml:"history" toml:"history"`
	Client  ClientConfig   `json:"client" yaml:"client" toml:"client"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `json:"level" yaml:"level" toml:"level"`
	// File enables a rotating log file in addition to stderr.
	File       string `json:"file" yaml:"file" toml:"file"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days" toml:"max_age_days"`
	JSON       bool   `json:"json" yaml:"json" toml:"json"`
}

// ServerConfig configures the inference API server.
type ServerConfig struct {
	Addr                   string   `json:"addr" yaml:"addr" toml:"addr"`
	MaxBodyBytes           int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	GenerateTimeoutSeconds int64    `json:"generate_timeout_seconds" yaml:"generate_timeout_seconds" toml:"generate_timeout_seconds"`
	CORSOrigins            []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// UIConfig configures the chat front-end.
type UIConfig struct {
	Addr          string `json:"addr" yaml:"addr" toml:"addr"`
	SessionSecret string `json:"session_secret" yaml:"session_secret" toml:"session_secret"`
	HistoryLimit  int    `json:"history_limit" yaml:"history_limit" toml:"history_limit"`
	Title         string `json:"title" yaml:"title" toml:"title"`
}

// ModelConfig selects and tunes the local generation pipeline.
type ModelConfig struct {
	Name           string `json:"name" yaml:"name" toml:"name"`
	Dir            string `json:"dir" yaml:"dir" toml:"dir"`
	ContextSize    int    `json:"context_size" yaml:"context_size" toml:"context_size"`
	Threads        int    `json:"threads" yaml:"threads" toml:"threads"`
	MaxQueueDepth  int    `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitSeconds int    `json:"max_wait_seconds" yaml:"max_wait_seconds" toml:"max_wait_seconds"`
}

// ClientConfig configures the remote inference client.
type ClientConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`
	// TimeoutSeconds of 0 waits indefinitely.
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 30},
		Server: ServerConfig{Addr: ":8000", MaxBodyBytes: 1 << 20},
		UI:     UIConfig{Addr: ":8501", HistoryLimit: 50, Title: "LLM Chatbot"},
		Model: ModelConfig{
			Name:        "gpt2.gguf",
			Dir:         "~/models/llm",
			ContextSize: 2048,
			Threads:     4,
		},
		History: history.Config{Driver: "sqlite", DSN: "chat_history.db"},
		Client:  ClientConfig{BaseURL: "http://localhost:8000"},
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from LLMCHAT_* variables (and MODEL_NAME) found via lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	str("LLMCHAT_LOG_LEVEL", &cfg.Log.Level)
	str("LLMCHAT_LOG_FILE", &cfg.Log.File)
	str("LLMCHAT_ADDR", &cfg.Server.Addr)
	if v, ok := lookup("LLMCHAT_CORS_ORIGINS"); ok && v != "" {
		cfg.Server.CORSOrigins = SplitCSV(v)
	}
	str("LLMCHAT_UI_ADDR", &cfg.UI.Addr)
	str("LLMCHAT_SESSION_SECRET", &cfg.UI.SessionSecret)
	str("MODEL_NAME", &cfg.Model.Name)
	str("LLMCHAT_MODEL", &cfg.Model.Name)
	str("LLMCHAT_MODELS_DIR", &cfg.Model.Dir)
	str("LLMCHAT_HISTORY_DRIVER", &cfg.History.Driver)
	str("LLMCHAT_HISTORY_DSN", &cfg.History.DSN)
	str("LLMCHAT_API_URL", &cfg.Client.BaseURL)
	if err := num("LLMCHAT_CLIENT_TIMEOUT", &cfg.Client.TimeoutSeconds); err != nil {
		return err
	}
	return num("LLMCHAT_THREADS", &cfg.Model.Threads)
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empty items.
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
