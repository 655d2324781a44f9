package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Library struct {
		Dir      string `yaml:"dir"`      // directory of authored .json/.yaml specs
		Database string `yaml:"database"` // sqlite path for imported specs
		Watch    bool   `yaml:"watch"`    // hot-reload the spec directory
	} `yaml:"library"`
	Renderer struct {
		Endpoint       string `yaml:"endpoint"` // Kroki-compatible base URL
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"renderer"`
	Cache struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"cache"`
	Player struct {
		IntervalMS int `yaml:"interval_ms"` // autoplay tick interval
	} `yaml:"player"`
	Server struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	AI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"` // narration model
	} `yaml:"ai"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.Library.Dir = "specs"
	cfg.Library.Database = "stepviz.db"
	cfg.Renderer.Endpoint = "https://kroki.io"
	cfg.Renderer.TimeoutSeconds = 15
	cfg.Cache.Capacity = 20
	cfg.Player.IntervalMS = 2000
	cfg.Server.Addr = ":8080"
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.AI.Model = "gemini-2.0-flash"
	return cfg
}

// RendererTimeout returns the render request timeout as a duration.
func (c *Config) RendererTimeout() time.Duration {
	return time.Duration(c.Renderer.TimeoutSeconds) * time.Second
}

// PlayerInterval returns the autoplay interval as a duration.
func (c *Config) PlayerInterval() time.Duration {
	return time.Duration(c.Player.IntervalMS) * time.Millisecond
}

// LoadConfig reads the YAML config at path, falling back to defaults
// when the file is missing, then applies .env and environment
// overrides.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if file, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if v := os.Getenv("STEPVIZ_LIBRARY_DIR"); v != "" {
		cfg.Library.Dir = v
	}
	if v := os.Getenv("STEPVIZ_DATABASE"); v != "" {
		cfg.Library.Database = v
	}
	if v := os.Getenv("STEPVIZ_RENDERER_ENDPOINT"); v != "" {
		cfg.Renderer.Endpoint = v
	}
	if v := os.Getenv("STEPVIZ_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("STEPVIZ_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}

	return cfg, nil
}
