package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem used for config and plan-file access; tests swap
// in an in-memory implementation.
var AppFs = afero.NewOsFs()

// Config holds the CLI configuration.
type Config struct {
	DatabasePath string
	SchemaPath   string
	OutputPath   string
}

// Load reads configuration from config files, environment and .env files.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	viper.SetConfigName(".schemakit")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "schemakit"))

	viper.SetEnvPrefix("SCHEMAKIT")
	viper.AutomaticEnv()

	viper.SetDefault("schema_path", "schema.skt")
	viper.SetDefault("output_path", "migration.sql")

	// Config file is optional.
	_ = viper.ReadInConfig()

	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	cfg := &Config{
		DatabasePath: viper.GetString("database_path"),
		SchemaPath:   viper.GetString("schema_path"),
		OutputPath:   viper.GetString("output_path"),
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = os.Getenv("DATABASE_PATH")
	}
	return cfg, nil
}
