package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kurochkinivan/stego_portal/internal/app"
	"github.com/kurochkinivan/stego_portal/internal/config"
	"github.com/kurochkinivan/stego_portal/internal/infrastructure/template_generator"
	"github.com/kurochkinivan/stego_portal/internal/transfer"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

var version = "dev"

const (
	defaultBackendURL   = "http://localhost:5001"
	backendURLEnv       = "STEGO_BACKEND_URL"
	pgPasswordEnv       = "STEGO_PG_PASSWORD"
	defaultTemplateRows = 100
)

func cmd() *cli.Command {
	return &cli.Command{
		Name:    "stego_portal",
		Usage:   "Casino data processing front-end",
		Version: version,
		Flags:   flags(),
		Before:  setupLogger,
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the upload and recovery forms over HTTP",
				Action: serve,
			},
			submitCommand("process", "Send transaction CSV files for processing", transfer.ProcessSpec),
			submitCommand("recover", "Recover transactions from encoded files", transfer.RecoverySpec),
			{
				Name:  "watch",
				Usage: "Submit every new file appearing in the watch directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:      "form",
						Aliases:   []string{"f"},
						Usage:     "Form to submit files with: process or recover",
						Value:     transfer.ProcessSpec.Name,
						Validator: validateForm,
					},
				},
				Action: watch,
			},
			{
				Name:  "template",
				Usage: "Write a sample transaction CSV",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "rows",
						Aliases: []string{"n"},
						Usage:   "Number of sample transactions",
						Value:   defaultTemplateRows,
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Write the template to `FILE` instead of stdout",
					},
				},
				Action: writeTemplate,
			},
		},
	}
}

func setupLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	return context.WithValue(ctx, loggerKey{}, newLogger(cmd.String("log-format"))), nil
}

func load(ctx context.Context, cmd *cli.Command) (*slog.Logger, *config.Config, error) {
	log, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok {
		return nil, nil, errors.New("failed to get logger from context")
	}

	cfg := config.Load(cmd)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return log, cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	log, cfg, err := load(ctx, cmd)
	if err != nil {
		return err
	}

	return app.New(log, cfg).Serve(ctx)
}

func submitCommand(name, usage string, spec transfer.Spec) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "FILE...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log, cfg, err := load(ctx, cmd)
			if err != nil {
				return err
			}

			return app.New(log, cfg).Submit(ctx, spec, cmd.Args().Slice())
		},
	}
}

func watch(ctx context.Context, cmd *cli.Command) error {
	log, cfg, err := load(ctx, cmd)
	if err != nil {
		return err
	}

	spec, _ := transfer.SpecByName(cmd.String("form"))

	if err := validateDirectory(cfg.App.WatchDirectory); err != nil {
		return fmt.Errorf("invalid watch directory: %w", err)
	}

	return app.New(log, cfg).Watch(ctx, spec)
}

func writeTemplate(_ context.Context, cmd *cli.Command) (err error) {
	var w io.Writer = os.Stdout

	if out := cmd.String("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %q: %w", out, err)
		}
		defer func() { err = errors.Join(err, f.Close()) }()

		w = f
	}

	return template_generator.New().WriteTemplate(w, int(cmd.Int("rows")))
}

func flags() []cli.Flag {
	var config string

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Validator:   validateConfig,
			Usage:       "Load configuration from `FILE`",
			Destination: &config,
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Set log format: text or json",
			Value:   "text",
			Sources: cli.NewValueSourceChain(yaml.YAML("app.log_format", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "backend-url",
			Aliases: []string{"b"},
			Usage:   "Set base URL of the processing backend",
			Value:   defaultBackendURL,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar(backendURLEnv),
				yaml.YAML("backend.url", altsrc.NewStringPtrSourcer(&config)),
			),
		},
		&cli.DurationFlag{
			Name:    "backend-timeout",
			Usage:   "Set timeout of one backend request, 0 disables it",
			Value:   2 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("backend.timeout", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:      "output-dir",
			Aliases:   []string{"o"},
			Usage:     "Set directory to save downloaded results to",
			Value:     ".",
			Sources:   cli.NewValueSourceChain(yaml.YAML("app.output_dir", altsrc.NewStringPtrSourcer(&config))),
			Validator: validateDirectory,
		},
		&cli.StringFlag{
			Name:    "watch-dir",
			Aliases: []string{"w"},
			Usage:   "Set directory to watch for new files",
			Value:   "input",
			Sources: cli.NewValueSourceChain(yaml.YAML("app.watch_dir", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "scan-interval",
			Aliases: []string{"s"},
			Value:   3 * time.Second,
			Usage:   "Set directory scan interval",
			Sources: cli.NewValueSourceChain(yaml.YAML("app.scan_interval", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.IntFlag{
			Name:    "parallel",
			Aliases: []string{"p"},
			Value:   4,
			Usage:   "Set number of files submitted at once",
			Sources: cli.NewValueSourceChain(yaml.YAML("app.parallel", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.IntFlag{
			Name:    "template-rows",
			Value:   defaultTemplateRows,
			Usage:   "Set number of rows in the downloadable template",
			Sources: cli.NewValueSourceChain(yaml.YAML("app.template_rows", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.Int64Flag{
			Name:    "max-upload-size",
			Value:   32 << 20,
			Usage:   "Set maximum size of an uploaded file in bytes",
			Sources: cli.NewValueSourceChain(yaml.YAML("app.max_upload_size", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.BoolFlag{
			Name:    "pg-enabled",
			Usage:   "Journal submissions in PostgreSQL",
			Sources: cli.NewValueSourceChain(yaml.YAML("postgresql.enabled", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "pg-host",
			Usage:   "Set PostgreSQL host",
			Value:   "localhost",
			Sources: cli.NewValueSourceChain(yaml.YAML("postgresql.host", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "pg-port",
			Usage:   "Set PostgreSQL port",
			Value:   "5432",
			Sources: cli.NewValueSourceChain(yaml.YAML("postgresql.port", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "pg-username",
			Usage:   "Set PostgreSQL username",
			Sources: cli.NewValueSourceChain(yaml.YAML("postgresql.username", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:  "pg-password",
			Usage: "Set PostgreSQL password",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar(pgPasswordEnv),
				yaml.YAML("postgresql.password", altsrc.NewStringPtrSourcer(&config)),
			),
		},
		&cli.StringFlag{
			Name:    "pg-dbname",
			Usage:   "Set PostgreSQL database name",
			Value:   "stego_portal",
			Sources: cli.NewValueSourceChain(yaml.YAML("postgresql.dbname", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "http-host",
			Usage:   "Set HTTP server host",
			Value:   "localhost",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.host", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "http-port",
			Usage:   "Set HTTP server port",
			Value:   "8080",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.port", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "http-idle-timeout",
			Usage:   "Set HTTP server idle timeout",
			Value:   1 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.idle_timeout", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "http-read-timeout",
			Usage:   "Set HTTP server read timeout",
			Value:   15 * time.Second,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.read_timeout", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "http-write-timeout",
			Usage:   "Set HTTP server write timeout",
			Value:   3 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.write_timeout", altsrc.NewStringPtrSourcer(&config))),
		},
	}
}

func validateForm(name string) error {
	if _, ok := transfer.SpecByName(name); !ok {
		return fmt.Errorf("unknown form %q", name)
	}

	return nil
}

func validateDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", dir)
		}
		return fmt.Errorf("failed to stat %q: %w", dir, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}

	return nil
}

func validateConfig(config string) error {
	info, err := os.Stat(config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", config)
		}
		return fmt.Errorf("failed to stat %q: %w", config, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", config)
	}

	ext := filepath.Ext(info.Name())
	if ext != ".yml" && ext != ".yaml" {
		return fmt.Errorf("invalid extension %q", config)
	}

	return nil
}
