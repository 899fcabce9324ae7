package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	MailSendGrid = "sendgrid"
	MailConsole  = "console"
)

type Config struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"local"`
	Storage    `yaml:"storage"`
	HTTPServer `yaml:"http_server"`
	Redis      `yaml:"redis"`
	Mail       `yaml:"mail"`
}

type Storage struct {
	Driver  string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	DSN     string `yaml:"dsn" env:"STORAGE_DSN"`
	Migrate bool   `yaml:"migrate" env:"STORAGE_MIGRATE" env-default:"true"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

// Redis is optional. With an empty address Idempotency-Key headers are ignored.
type Redis struct {
	Addr           string        `yaml:"addr" env:"REDIS_ADDR"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl" env-default:"24h"`
}

type Mail struct {
	Provider    string `yaml:"provider" env:"MAIL_PROVIDER" env-default:"console"`
	SendGridKey string `yaml:"sendgrid_key" env:"SENDGRID_API_KEY"`
	FromName    string `yaml:"from_name" env-default:"Tutor Billing"`
	FromEmail   string `yaml:"from_email" env:"MAIL_FROM" env-default:"billing@example.com"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/local.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.DSN == "" {
			return errMissing("storage.dsn")
		}
	default:
		return errUnknown("storage.driver", c.Storage.Driver)
	}

	switch c.Mail.Provider {
	case MailConsole:
	case MailSendGrid:
		if c.Mail.SendGridKey == "" {
			return errMissing("mail.sendgrid_key")
		}
	default:
		return errUnknown("mail.provider", c.Mail.Provider)
	}

	return nil
}

func errMissing(field string) error {
	return fmt.Errorf("config: %s is required", field)
}

func errUnknown(field, value string) error {
	return fmt.Errorf("config: unknown %s %q", field, value)
}
