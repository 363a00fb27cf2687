package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"sitemap-gen/pkg/sitemap"
)

type manager struct {
	mu     sync.RWMutex
	config *Config
	viper  *viper.Viper
}

func NewManager() Manager {
	return &manager{
		viper: viper.New(),
	}
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func (m *manager) Load(configPath string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setupViper(configPath)

	if err := m.viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := m.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	m.config = &config
	return &config, nil
}

func (m *manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *manager) setupViper(configPath string) {
	m.viper.SetConfigFile(configPath)

	m.viper.SetEnvPrefix("SITEMAP")
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()
}

func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "127.0.0.1"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 5000
	}
	if config.Storage.UploadDir == "" {
		config.Storage.UploadDir = "uploads"
	}
	if config.Storage.OutputDir == "" {
		config.Storage.OutputDir = "output"
	}
	if config.Storage.LogDir == "" {
		config.Storage.LogDir = "logs"
	}
	if config.Sitemap.MaxURLs == 0 {
		config.Sitemap.MaxURLs = sitemap.MaxURLsPerSitemap
	}
	if config.Sitemap.MaxSizeMB == 0 {
		config.Sitemap.MaxSizeMB = sitemap.MaxSitemapBytes / (1024 * 1024)
	}
	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
	if config.Logger.Format == "" {
		config.Logger.Format = "console"
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Sitemap.MaxURLs <= 0 {
		return fmt.Errorf("max_urls must be positive")
	}

	if config.Sitemap.MaxSizeMB <= 0 {
		return fmt.Errorf("max_size_mb must be positive")
	}

	if config.Storage.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}

	return nil
}
