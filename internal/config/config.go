package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the project-level configuration file location.
const DefaultPath = ".giv/config.yaml"

type Config struct {
	Project struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"project"`
	API struct {
		Provider    string  `yaml:"provider"` // gemini, openai, ollama
		URL         string  `yaml:"url"`
		Key         string  `yaml:"key"`
		Model       string  `yaml:"model"`
		Temperature float64 `yaml:"temperature"`
		TimeoutSecs int     `yaml:"timeout_seconds"`
	} `yaml:"api"`
	Cache struct {
		Dir string `yaml:"dir"`
	} `yaml:"cache"`
	Output struct {
		Mode             string `yaml:"mode"`
		Version          string `yaml:"version"`
		ChangelogFile    string `yaml:"changelog_file"`
		ReleaseNotesFile string `yaml:"release_notes_file"`
		AnnouncementFile string `yaml:"announcement_file"`
	} `yaml:"output"`
}

// LoadConfig reads the YAML config at path, then applies GIV_* environment
// overrides. A missing config file is not an error: defaults are returned.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := defaults()

	// 2. Load YAML config
	if path == "" {
		path = DefaultPath
	}
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if provider := os.Getenv("GIV_API_PROVIDER"); provider != "" {
		cfg.API.Provider = provider
	}
	if url := os.Getenv("GIV_API_URL"); url != "" {
		cfg.API.URL = url
	}
	if key := os.Getenv("GIV_API_KEY"); key != "" {
		cfg.API.Key = key
	}
	if model := os.Getenv("GIV_API_MODEL"); model != "" {
		cfg.API.Model = model
	}
	if dir := os.Getenv("GIV_CACHE_DIR"); dir != "" {
		cfg.Cache.Dir = dir
	}
	if mode := os.Getenv("GIV_OUTPUT_MODE"); mode != "" {
		cfg.Output.Mode = mode
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.API.Provider = "openai"
	cfg.API.Temperature = 0.9
	cfg.API.TimeoutSecs = 60
	cfg.Cache.Dir = filepath.Join(".giv", "cache")
	cfg.Output.ChangelogFile = "CHANGELOG.md"
	cfg.Output.ReleaseNotesFile = "{VERSION}_release_notes.md"
	cfg.Output.AnnouncementFile = "{VERSION}_announcement.md"
	return cfg
}
