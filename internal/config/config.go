package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"
)

type Config struct {
	App
	Backend
	PostgreSQL
	HTTP
}

type App struct {
	LogFormat       string `validate:"oneof=text json"`
	OutputDirectory string
	WatchDirectory  string
	ScanInterval    time.Duration `validate:"gt=0"`
	Parallelism     int           `validate:"gte=1"`
	TemplateRows    int           `validate:"gte=0,lte=10000"`
	MaxUploadSize   int64         `validate:"gt=0"`
}

type Backend struct {
	URL     string        `validate:"required,http_url"`
	Timeout time.Duration `validate:"gte=0"`
}

type PostgreSQL struct {
	Enabled  bool
	Host     string `validate:"required_if=Enabled true"`
	Port     string `validate:"required_if=Enabled true"`
	Username string `validate:"required_if=Enabled true"`
	Password string
	DBName   string `validate:"required_if=Enabled true"`
}

type HTTP struct {
	Host         string
	Port         string        `validate:"required"`
	IdleTimeout  time.Duration `validate:"gte=0"`
	ReadTimeout  time.Duration `validate:"gte=0"`
	WriteTimeout time.Duration `validate:"gte=0"`
}

func Load(cmd *cli.Command) *Config {
	return &Config{
		App: App{
			LogFormat:       cmd.String("log-format"),
			OutputDirectory: cmd.String("output-dir"),
			WatchDirectory:  cmd.String("watch-dir"),
			ScanInterval:    cmd.Duration("scan-interval"),
			Parallelism:     int(cmd.Int("parallel")),
			TemplateRows:    int(cmd.Int("template-rows")),
			MaxUploadSize:   cmd.Int64("max-upload-size"),
		},
		Backend: Backend{
			URL:     cmd.String("backend-url"),
			Timeout: cmd.Duration("backend-timeout"),
		},
		PostgreSQL: PostgreSQL{
			Enabled:  cmd.Bool("pg-enabled"),
			Host:     cmd.String("pg-host"),
			Port:     cmd.String("pg-port"),
			Username: cmd.String("pg-username"),
			Password: cmd.String("pg-password"),
			DBName:   cmd.String("pg-dbname"),
		},
		HTTP: HTTP{
			Host:         cmd.String("http-host"),
			Port:         cmd.String("http-port"),
			IdleTimeout:  cmd.Duration("http-idle-timeout"),
			ReadTimeout:  cmd.Duration("http-read-timeout"),
			WriteTimeout: cmd.Duration("http-write-timeout"),
		},
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}
