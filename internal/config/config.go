package config

import "sitemap-gen/pkg/logger"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Sitemap SitemapConfig `mapstructure:"sitemap"`
	Logger  logger.Config `mapstructure:"logger"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir"`
	OutputDir string `mapstructure:"output_dir"`
	LogDir    string `mapstructure:"log_dir"`
}

type SitemapConfig struct {
	MaxURLs   int `mapstructure:"max_urls"`
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// IndexBaseURL anchors index locations for sequences that have no
	// homepage of their own (paginated and master).
	IndexBaseURL string `mapstructure:"index_base_url"`
}

type Manager interface {
	Load(configPath string) (*Config, error)
	GetConfig() *Config
}
