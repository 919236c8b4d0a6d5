package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"wip-dashboard/internal/constants"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	DB         DB       `yaml:"db"`
	Docstore   Docstore `yaml:"docstore"`
	Sources    Sources  `yaml:"sources"`
	ErrorLog   string   `yaml:"error_log" env:"ERROR_LOG" env-default:"errors.log"`

	AdminLogin  string   `yaml:"admin_login" env:"ADMIN_LOGIN"`
	AdminPass   string   `yaml:"admin_pass" env:"ADMIN_PASS"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:","`

	Exclusions Exclusions `yaml:"exclusions"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type DB struct {
	Driver     string `yaml:"driver" env:"DB_DRIVER" env-default:"mysql"`
	User       string `yaml:"user" env:"DB_USER"`
	Password   string `yaml:"password" env:"DB_PASSWORD"`
	Host       string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port       int    `yaml:"port" env:"DB_PORT" env-default:"3306"`
	Name       string `yaml:"name" env:"DB_NAME"`
	ParseTime  bool   `yaml:"parse_time" env-default:"true"`
	SQLitePath string `yaml:"sqlite_path" env:"DB_SQLITE_PATH" env-default:"wip.db"`
}

type Docstore struct {
	Path       string `yaml:"path" env:"DOCSTORE_PATH" env-default:"./data/docstore"`
	InMemory   bool   `yaml:"in_memory" env:"DOCSTORE_IN_MEMORY"`
	MaxRetries int    `yaml:"max_retries" env-default:"5"`
}

type Sources struct {
	// Legacy adds the legacy document store's projects to dashboard reads.
	Legacy bool `yaml:"legacy" env:"SOURCES_LEGACY" env-default:"true"`
}

// Exclusions is the data behind the exclusion filter. Empty lists fall back
// to the built-in defaults.
type Exclusions struct {
	BlockedProjectNames       []string `yaml:"blocked_project_names"`
	BlockedCustomerSubstrings []string `yaml:"blocked_customer_substrings"`
	BlockedNameSubstrings     []string `yaml:"blocked_name_substrings"`
	BlockedProjectNumbers     []string `yaml:"blocked_project_numbers"`
	ExcludedEstimators        []string `yaml:"excluded_estimators"`
	ExcludedStatuses          []string `yaml:"excluded_statuses"`
	PriorityStatuses          []string `yaml:"priority_statuses"`
	PMPrefix                  string   `yaml:"pm_prefix"`
}

// Load reads an optional .env file, then the YAML config at path, then
// environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.Exclusions.applyDefaults()

	return &cfg, nil
}

func MustConfig() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}

func (e *Exclusions) applyDefaults() {
	if len(e.BlockedProjectNames) == 0 {
		e.BlockedProjectNames = constants.BlockedProjectNames
	}
	if len(e.BlockedCustomerSubstrings) == 0 {
		e.BlockedCustomerSubstrings = constants.BlockedCustomerSubstrings
	}
	if len(e.BlockedNameSubstrings) == 0 {
		e.BlockedNameSubstrings = constants.BlockedNameSubstrings
	}
	if len(e.BlockedProjectNumbers) == 0 {
		e.BlockedProjectNumbers = constants.BlockedProjectNumbers
	}
	if len(e.ExcludedEstimators) == 0 {
		e.ExcludedEstimators = constants.ExcludedEstimators
	}
	if len(e.ExcludedStatuses) == 0 {
		e.ExcludedStatuses = constants.ExcludedStatuses
	}
	if len(e.PriorityStatuses) == 0 {
		e.PriorityStatuses = constants.PriorityStatuses
	}
	if e.PMPrefix == "" {
		e.PMPrefix = constants.PMPrefix
	}
}

// DSN builds the data source name for the configured driver.
func (d DB) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=%v",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.ParseTime,
	)
}
