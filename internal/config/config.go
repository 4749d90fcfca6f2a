package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// RepoConfig names one GitHub repository to poll for releases.
type RepoConfig struct {
	Project string `yaml:"project"` // tracked object name, e.g. "Akash"
	Repo    string `yaml:"repo"`    // owner/name, e.g. "akash-network/node"
}

// Config holds all application configuration.
type Config struct {
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	GitHub struct {
		Token string       `yaml:"token"`
		Repos []RepoConfig `yaml:"repos"`
	} `yaml:"github"`
	Feeds   []string `yaml:"feeds"`
	Metrics struct {
		Endpoint string `yaml:"endpoint"`
		Netuid   int    `yaml:"netuid"`
		Object   string `yaml:"object"`
	} `yaml:"metrics"`
	Projects []string `yaml:"projects"`
	Schedule struct {
		PipelineCron string `yaml:"pipeline_cron"`
	} `yaml:"schedule"`
	Scoring struct {
		Limit int `yaml:"limit"`
	} `yaml:"scoring"`
	Index struct {
		WindowDays int `yaml:"window_days"`
		RecentDays int `yaml:"recent_days"`
	} `yaml:"index"`
	Docs struct {
		InboxDir string `yaml:"inbox_dir"`
	} `yaml:"docs"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ATLAS_DB_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("METRICS_ENDPOINT"); v != "" {
		cfg.Metrics.Endpoint = v
	}
	if v := os.Getenv("BT_NETUID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Netuid = n
		}
	}
	if v := os.Getenv("CRON_PIPELINE"); v != "" {
		cfg.Schedule.PipelineCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/atlas.db"
	}
	if cfg.Metrics.Netuid == 0 {
		cfg.Metrics.Netuid = 1
	}
	if cfg.Metrics.Object == "" {
		cfg.Metrics.Object = "Bittensor"
	}
	if len(cfg.Projects) == 0 {
		cfg.Projects = []string{"Akash", "Bittensor", "GAEA", "EigenLayer", "Render"}
	}
	if cfg.Schedule.PipelineCron == "" {
		cfg.Schedule.PipelineCron = "0 0 * * * *" // hourly
	}
	if cfg.Scoring.Limit == 0 {
		cfg.Scoring.Limit = 200
	}
	if cfg.Index.WindowDays == 0 {
		cfg.Index.WindowDays = 30
	}
	if cfg.Index.RecentDays == 0 {
		cfg.Index.RecentDays = 3
	}

	return cfg, nil
}

// Validate checks that the config describes at least one source.
func (c *Config) Validate() error {
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	if len(c.GitHub.Repos) == 0 && len(c.Feeds) == 0 && c.Metrics.Endpoint == "" {
		return fmt.Errorf("no sources configured: need github.repos, feeds or metrics.endpoint")
	}
	for _, r := range c.GitHub.Repos {
		if r.Repo == "" {
			return fmt.Errorf("github.repos entries require a repo (owner/name)")
		}
	}
	if c.Index.WindowDays < c.Index.RecentDays {
		return fmt.Errorf("index.window_days must be >= index.recent_days")
	}
	return nil
}
