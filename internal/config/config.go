package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
)

type Config struct {
	HTTP          HttpConfig          `yaml:"http"`
	Rod           RodConfig           `yaml:"rod"`
	Storage       StorageConfig       `yaml:"storage"`
	Snapshot      SnapshotConfig      `yaml:"snapshot"`
	Poll          PollConfig          `yaml:"poll"`
	Observability ObservabilityConfig `yaml:"observability"`
	Keywords      []string            `yaml:"keywords"`
	SourcesFile   string              `yaml:"sources_file"`
	Sources       []SourceConfig      `yaml:"sources"`
}

// SourceConfig описывает одну отслеживаемую страницу
type SourceConfig struct {
	Name         string `yaml:"name"`
	URL          string `yaml:"url"`
	ItemSelector string `yaml:"item_selector"`
	TitleAttr    string `yaml:"title_attr"` // пусто: берём текст элемента
	HrefAttr     string `yaml:"href_attr"`
	Render       bool   `yaml:"render"` // загрузка через headless-браузер
}

type HttpConfig struct {
	UserAgent                 string `yaml:"user_agent"`
	AcceptLanguage            string `yaml:"accept_language"`
	TotalTimeoutMS            int    `yaml:"total_timeout_ms"`
	MaxIdleConnections        int    `yaml:"max_idle_connections"`
	MaxIdleConnectionsPerHost int    `yaml:"max_idle_connections_per_host"`
	IdleConnectionTimeoutS    int    `yaml:"idle_connection_timeout_s"`
}

type RodConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ChromePath string `yaml:"chrome_path"` // пусто: rod сам скачает браузер
	Headless   bool   `yaml:"headless"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type SnapshotConfig struct {
	Path string `yaml:"path"`
}

type PollConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type ObservabilityConfig struct {
	LogPath       string `yaml:"log_path"`
	LogLevel      string `yaml:"log_level"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`
	MetricsPath   string `yaml:"metrics_path"`
}

var (
	storageDrivers = map[string]bool{"sqlite": true, "mssql": true, "postgres": true, "redis": true}
	logLevels      = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validation
func (c *Config) Validate() error {
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return fmt.Errorf("http.total_timeout_ms must be > 0")
	}
	if c.HTTP.MaxIdleConnections < 0 || c.HTTP.MaxIdleConnectionsPerHost < 0 {
		return fmt.Errorf("http.max_idle_connections must be >= 0")
	}
	if !storageDrivers[c.Storage.Driver] {
		return fmt.Errorf("storage.driver must be 'sqlite', 'mssql', 'postgres' or 'redis'")
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required")
	}
	if c.Storage.CommandTimeoutMS <= 0 {
		return fmt.Errorf("storage.command_timeout_ms must be > 0")
	}
	if c.Snapshot.Path == "" {
		return fmt.Errorf("snapshot.path is required")
	}
	if c.Poll.Concurrency <= 0 {
		return fmt.Errorf("poll.concurrency must be > 0")
	}
	if !logLevels[strings.ToLower(c.Observability.LogLevel)] {
		return fmt.Errorf("observability.log_level must be one of debug, info, warn, error")
	}
	if c.Observability.LogMaxSizeMB < 0 || c.Observability.LogMaxBackups < 0 || c.Observability.LogMaxAgeDays < 0 {
		return fmt.Errorf("observability log rotation settings must be >= 0")
	}
	if len(c.Keywords) == 0 {
		return fmt.Errorf("keywords: at least one pattern is required")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources: at least one source is required")
	}

	seen := make(map[string]bool, len(c.Sources))
	for i := range c.Sources {
		src := &c.Sources[i]
		if err := validateSource(src); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
		if seen[src.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, src.Name)
		}
		seen[src.Name] = true
		if src.Render && !c.Rod.Enabled {
			return fmt.Errorf("sources[%d]: render requires rod.enabled", i)
		}
	}
	return nil
}

// validateSource проверяет источник и проставляет href_attr по умолчанию
func validateSource(s *SourceConfig) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source %q: url must be an absolute http(s) URL", s.Name)
	}
	if s.ItemSelector == "" {
		return fmt.Errorf("source %q: item_selector is required", s.Name)
	}
	if _, err := cascadia.Compile(s.ItemSelector); err != nil {
		return fmt.Errorf("source %q: invalid item_selector: %w", s.Name, err)
	}
	if s.HrefAttr == "" {
		s.HrefAttr = "href"
	}
	return nil
}

// Getters
func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetIdleConnectionTimeout() time.Duration {
	return time.Duration(c.HTTP.IdleConnectionTimeoutS) * time.Second
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}
