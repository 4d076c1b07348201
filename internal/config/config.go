package config

import (
	"os"
	"whist-server/internal/util"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config provides configuration for the whist score server
type Config struct {
	loaded         bool
	Host           string `yaml:"host" envconfig:"host"`
	Storage        string `yaml:"storage" envconfig:"storage"`
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	}
	RecaptchaSecret string `yaml:"recaptchaSecret" envconfig:"recaptcha_secret"`
	UserCreateDelay int    `yaml:"userCreateDelay" envconfig:"user_create_delay"`
	Log             struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
	Email struct {
		From, Sender, Username, Password, Host string
		TemplatesPath                          string `yaml:"templatesPath" envconfig:"templates_path"`
		Disable                                bool
	}
}

// DefaultConfig returns the configuration used when no file overrides it
func DefaultConfig() Config {
	cfg := Config{
		Host:           "http://localhost:5000",
		Storage:        StoragePostgres,
		PGDSN:          "postgres://postgres@localhost:5432/postgres?sslmode=disable",
		MigrationsPath: "./sql",
	}

	cfg.JWT.PublicKey = ".keys/public.pem"
	cfg.JWT.PrivateKey = ".keys/private.key"
	cfg.UserCreateDelay = 5
	cfg.Log.Level = "info"
	cfg.Email.From = "Whist Score <no-reply@whist-score.app>"
	cfg.Email.Sender = "no-reply@whist-score.app"
	cfg.Email.Host = "localhost:25"
	cfg.Email.TemplatesPath = "templates"

	return cfg
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A missing config file is not an error, the defaults and the environment are used instead
func Load() error {
	config = DefaultConfig()

	configFile := util.Getenv("WHIST_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if file != nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return err
		}
	}

	if err := envconfig.Process("whist", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
