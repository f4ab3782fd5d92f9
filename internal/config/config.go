package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Odoo   OdooConfig
	Terra  TerraConfig
	Agidra AgidraConfig
	Data   DataConfig
}

// OdooConfig contains the endpoint and credentials for the Odoo external API.
type OdooConfig struct {
	BaseURL  string
	Database string
	Username string
	Password string
	Timeout  time.Duration
}

// TerraConfig describes the Terra Naturkost FTP price list delivery.
type TerraConfig struct {
	FTPHost string
	// Price list files fetched per run, in merge order: barcodes in later
	// files override earlier ones.
	Files []string
}

// AgidraConfig describes the locally delivered Agidra catalog exports.
type AgidraConfig struct {
	// Catalog CSVs in merge order.
	Files []string
}

// DataConfig holds paths to local reference data.
type DataConfig struct {
	ProducersPath string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	timeout, err := time.ParseDuration(getenvWithDefault("ODOO_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ODOO_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Odoo: OdooConfig{
			BaseURL:  getenvWithDefault("ODOO_BASE_URL", "https://erp.supercoop.de/"),
			Database: getenvWithDefault("ODOO_DATABASE", "odoo"),
			Username: getenvWithDefault("ODOO_USERNAME", "product-updater-bot"),
			Password: os.Getenv("ODOO_PASSWORD"),
			Timeout:  timeout,
		},
		Terra: TerraConfig{
			FTPHost: getenvWithDefault("TERRA_FTP_HOST", "order.terra-natur.com"),
			Files:   splitList(getenvWithDefault("TERRA_FILES", "PL_FOOD.bnn,PL_DROG.bnn,PL_FRISCH.bnn")),
		},
		Agidra: AgidraConfig{
			Files: splitList(getenvWithDefault("AGIDRA_FILES", "data/agidra.csv,data/agidra-2021-10-27.csv")),
		},
		Data: DataConfig{
			ProducersPath: getenvWithDefault("PRODUCERS_PATH", "producers.csv"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	switch {
	case c.Odoo.BaseURL == "":
		return errors.New("ODOO_BASE_URL must be provided")
	case c.Odoo.Database == "":
		return errors.New("ODOO_DATABASE must be provided")
	case c.Odoo.Username == "":
		return errors.New("ODOO_USERNAME must be provided")
	case c.Odoo.Password == "":
		return errors.New("ODOO_PASSWORD must be provided")
	}

	if c.Terra.FTPHost == "" {
		return errors.New("TERRA_FTP_HOST must not be empty")
	}

	if len(c.Terra.Files) == 0 {
		return errors.New("TERRA_FILES must name at least one price list file")
	}

	if len(c.Agidra.Files) == 0 {
		return errors.New("AGIDRA_FILES must name at least one catalog file")
	}

	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
