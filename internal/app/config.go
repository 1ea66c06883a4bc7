package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type SheetExportConfig struct {
	SpreadsheetID   string `toml:"spreadsheet_id"`
	SheetName       string `toml:"sheet_name"`
	CredentialsPath string `toml:"credentials_path"`
}

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL    string `toml:"redis_url"`
		TokenHeader string `toml:"token_header"`
	} `toml:"auth"`

	API struct {
		// Dev-mode identity header, honoured only when auth is disabled.
		UserIDHeader string `toml:"user_id_header"`
	} `toml:"api"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	AI struct {
		APIKey  string `toml:"api_key"`
		BaseURL string `toml:"base_url"`
		Model   string `toml:"model"`
	} `toml:"ai"`

	Export struct {
		IntervalMinutes int                 `toml:"interval_minutes"`
		Sheets          []SheetExportConfig `toml:"sheets"`
	} `toml:"export"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Auth.TokenHeader == "" {
		config.Auth.TokenHeader = "Authorization"
	}
	if config.API.UserIDHeader == "" {
		config.API.UserIDHeader = "X-User-ID"
	}
	if apiKey := os.Getenv("GRADETRACK_AI_API_KEY"); apiKey != "" {
		config.AI.APIKey = apiKey
	}

	logger.Debug.Printf("Loaded AI config: model=%s base_url=%s", config.AI.Model, config.AI.BaseURL)

	return &config, nil
}
