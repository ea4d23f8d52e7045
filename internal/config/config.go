package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	Server  ServerConfig  `mapstructure:"server"`
}

type StorageConfig struct {
	Path     string         `mapstructure:"path"`
	Memgraph MemgraphConfig `mapstructure:"memgraph"`
}

type MemgraphConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type IngestConfig struct {
	Manifest    string   `mapstructure:"manifest"`
	MaxFileSize int64    `mapstructure:"max_file_size"`
	Exclude     []string `mapstructure:"exclude"`
	Schedule    string   `mapstructure:"schedule"`
	OnStartup   bool     `mapstructure:"on_startup"`
}

type ServerConfig struct {
	Listen     string `mapstructure:"listen"`
	ReadOnly   bool   `mapstructure:"read_only"`
	APIToken   string `mapstructure:"api_token"`
	CORSOrigin string `mapstructure:"cors_origin"`
}

// Load reads the configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".docradar"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("docradar")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DOCRADAR")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("storage.path", "./data/docradar.db")
	viper.SetDefault("storage.memgraph.enabled", false)
	viper.SetDefault("storage.memgraph.uri", "bolt://localhost:7687")
	viper.SetDefault("ingest.max_file_size", 1<<20)
	viper.SetDefault("ingest.exclude", []string{".git", "node_modules", "vendor", "dist"})
	viper.SetDefault("ingest.on_startup", false)
	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.read_only", false)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
