package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Costing CostingConfig
	Store   StoreConfig
	Export  ExportConfig
	Graph   GraphConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// CostingConfig carries the labour rate applied to every submitted entry.
// The rate is configuration, never user input, and is stamped onto each
// stored row so historical rows keep the rate they were costed with.
type CostingConfig struct {
	HourlyRate float64
}

// Store driver names accepted in STORE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverFile   = "file"
	DriverSheets = "sheets"
)

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Driver string

	// mongo driver
	MongoURI    string
	MongoDBName string

	// file driver
	FilePath string

	// sheets driver
	CredentialsPath string
	SpreadsheetID   string
}

// ExportConfig holds workbook snapshot settings for the scheduler.
type ExportConfig struct {
	Dir          string
	CronSchedule string
	Timezone     string
}

// GraphConfig contains credentials for the optional SharePoint mirror via
// Microsoft Graph. Leaving every field empty disables the mirror.
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	LoginBaseURL string
	GraphBaseURL string
	SiteHost     string
	SitePath     string
	ListName     string
}

// Enabled reports whether the SharePoint mirror is configured.
func (g GraphConfig) Enabled() bool {
	return g.TenantID != "" || g.ClientID != "" || g.ClientSecret != "" ||
		g.SiteHost != "" || g.SitePath != ""
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

	hourlyRate, err := getenvFloat("LABOUR_HOURLY_RATE", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Costing: CostingConfig{
			HourlyRate: hourlyRate,
		},
		Store: StoreConfig{
			Driver:          getenvWithDefault("STORE_DRIVER", DriverFile),
			MongoURI:        getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			MongoDBName:     getenvWithDefault("MONGODB_DB_NAME", "packhouse"),
			FilePath:        getenvWithDefault("PACKLOG_FILE", "./data/packing_log.jsonl"),
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Export: ExportConfig{
			Dir:          getenvWithDefault("EXPORT_DIR", "./exports"),
			CronSchedule: getenvWithDefault("EXPORT_CRON_SCHEDULE", "0 20 * * 5"),
			Timezone:     getenvWithDefault("TIMEZONE", "Europe/London"),
		},
		Graph: GraphConfig{
			TenantID:     os.Getenv("GRAPH_TENANT_ID"),
			ClientID:     os.Getenv("GRAPH_CLIENT_ID"),
			ClientSecret: os.Getenv("GRAPH_CLIENT_SECRET"),
			LoginBaseURL: getenvWithDefault("GRAPH_LOGIN_BASE_URL", "https://login.microsoftonline.com"),
			GraphBaseURL: getenvWithDefault("GRAPH_BASE_URL", "https://graph.microsoft.com"),
			SiteHost:     os.Getenv("SP_HOST"),
			SitePath:     os.Getenv("SP_SITE_PATH"),
			ListName:     getenvWithDefault("SP_LIST_NAME", "PackingLog"),
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

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if c.Server.LogLevel == "" {
		return errors.New("LOG_LEVEL must not be empty")
	}

	if c.Costing.HourlyRate <= 0 {
		return errors.New("LABOUR_HOURLY_RATE must be a positive number")
	}

	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return errors.New("MONGODB_URI must be provided for the mongo driver")
		}
		if c.Store.MongoDBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided for the mongo driver")
		}
	case DriverFile:
		if c.Store.FilePath == "" {
			return errors.New("PACKLOG_FILE must be provided for the file driver")
		}
	case DriverSheets:
		if c.Store.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided for the sheets driver")
		}
		if c.Store.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided for the sheets driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Export.Dir == "" {
		return errors.New("EXPORT_DIR must not be empty")
	}
	if c.Export.CronSchedule == "" {
		return errors.New("EXPORT_CRON_SCHEDULE must be provided")
	}
	if c.Export.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Graph.Enabled() {
		switch {
		case c.Graph.TenantID == "":
			return errors.New("GRAPH_TENANT_ID must be provided when the SharePoint mirror is configured")
		case c.Graph.ClientID == "":
			return errors.New("GRAPH_CLIENT_ID must be provided when the SharePoint mirror is configured")
		case c.Graph.ClientSecret == "":
			return errors.New("GRAPH_CLIENT_SECRET must be provided when the SharePoint mirror is configured")
		case c.Graph.SiteHost == "":
			return errors.New("SP_HOST must be provided when the SharePoint mirror is configured")
		case c.Graph.SitePath == "":
			return errors.New("SP_SITE_PATH must be provided when the SharePoint mirror is configured")
		case c.Graph.ListName == "":
			return errors.New("SP_LIST_NAME must not be empty")
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric: %w", key, err)
	}
	return parsed, nil
}
