package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig читает YAML поверх значений по умолчанию.
// Если required=false и файла нет, используются только значения по умолчанию.
func LoadConfig(filePath string, required bool) (*Config, error) {
	loadDotEnv(filepath.Join(filepath.Dir(filePath), ".env"))

	cfg := Default()

	file, err := os.Open(filePath)
	switch {
	case err == nil:
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				// Логируем ошибку, но не возвращаем, иначе перезапишем основную ошибку
				log.Printf("Warning: failed to close config file: %v", closeErr)
			}
		}()

		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
		// работаем на встроенных источниках
	default:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	if cfg.SourcesFile != "" {
		sourcesPath := cfg.SourcesFile
		// Относительный путь считаем от каталога конфига
		if !filepath.IsAbs(sourcesPath) {
			sourcesPath = filepath.Join(filepath.Dir(filePath), sourcesPath)
		}
		sources, err := LoadSources(sourcesPath)
		if err != nil {
			return nil, err
		}
		cfg.Sources = sources
	}

	cfg.expandEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return cfg, nil
}

// expandEnv подставляет ${VAR} в значения, где обычно лежат секреты и пути
func (c *Config) expandEnv() {
	c.Storage.DSN = os.ExpandEnv(c.Storage.DSN)
	c.Snapshot.Path = os.ExpandEnv(c.Snapshot.Path)
	c.Observability.LogPath = os.ExpandEnv(c.Observability.LogPath)
	c.Observability.MetricsPath = os.ExpandEnv(c.Observability.MetricsPath)
	c.Rod.ChromePath = os.ExpandEnv(c.Rod.ChromePath)
}

// loadDotEnv подхватывает .env из рабочего каталога и каталога конфига.
// Уже заданные переменные окружения не перезаписываются.
func loadDotEnv(paths ...string) {
	candidates := append([]string{".env"}, paths...)
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Printf("Warning: failed to load %s: %v", p, err)
		}
	}
}
