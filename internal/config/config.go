package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	// DataDir holds the sqlite database.
	DataDir string `json:"data_dir"`

	LLM       LLMConfig       `json:"llm"`
	Agent     AgentConfig     `json:"agent"`
	Tools     ToolsConfig     `json:"tools"`
	Store     StoreConfig     `json:"store"`
	Messaging MessagingConfig `json:"messaging"`
	Server    ServerConfig    `json:"server"`
}

type LLMConfig struct {
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	APIKey   string        `json:"api_key,omitempty"`
	BaseURL  string        `json:"base_url,omitempty"`
	Timeout  time.Duration `json:"timeout"`
}

type AgentConfig struct {
	// MaxIterations bounds the agentic loop; when it is exhausted without a
	// final answer the fixed fallback message is returned.
	MaxIterations int     `json:"max_iterations"`
	Temperature   float64 `json:"temperature"`
	MaxRetries    int     `json:"max_retries"`
}

type ToolsConfig struct {
	DefaultTimezone string `json:"default_timezone"`
	// MaxListLimit caps limit-style parameters on history lookup tools.
	MaxListLimit   int `json:"max_list_limit"`
	MaxTopProducts int `json:"max_top_products"`
	MaxDaysAhead   int `json:"max_days_ahead"`
}

type StoreConfig struct {
	BaseURL string        `json:"base_url"`
	APIKey  string        `json:"api_key,omitempty"`
	Timeout time.Duration `json:"timeout"`
}

type MessagingConfig struct {
	BaseURL string        `json:"base_url"`
	Token   string        `json:"token,omitempty"`
	Timeout time.Duration `json:"timeout"`
}

type ServerConfig struct {
	Addr string `json:"addr"`
	// RequestTimeout is the upstream deadline applied to each inbound
	// message; cancellation aborts the loop at the next suspension point.
	RequestTimeout time.Duration `json:"request_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir: ".balcao",
		LLM: LLMConfig{
			Provider: "anthropic",
			Model:    "claude-sonnet-4-20250514",
			Timeout:  60 * time.Second,
		},
		Agent: AgentConfig{
			MaxIterations: 6,
			Temperature:   0.2,
			MaxRetries:    2,
		},
		Tools: ToolsConfig{
			DefaultTimezone: "America/Sao_Paulo",
			MaxListLimit:    100,
			MaxTopProducts:  25,
			MaxDaysAhead:    365,
		},
		Store: StoreConfig{
			BaseURL: "http://localhost:8090",
			Timeout: 10 * time.Second,
		},
		Messaging: MessagingConfig{
			BaseURL: "http://localhost:8091",
			Timeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 2 * time.Minute,
		},
	}
}

// Load reads config from path, layering the file over defaults. A missing
// file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DBPath returns the sqlite database location under DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "balcao.db")
}

func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
