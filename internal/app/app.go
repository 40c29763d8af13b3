package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kurochkinivan/stego_portal/internal/config"
	v1 "github.com/kurochkinivan/stego_portal/internal/controller/http/v1"
	"github.com/kurochkinivan/stego_portal/internal/domain"
	"github.com/kurochkinivan/stego_portal/internal/infrastructure/report_generator"
	"github.com/kurochkinivan/stego_portal/internal/infrastructure/template_generator"
	"github.com/kurochkinivan/stego_portal/internal/pipeline"
	"github.com/kurochkinivan/stego_portal/internal/repository/postgresql"
	"github.com/kurochkinivan/stego_portal/internal/transfer"
	"golang.org/x/sync/errgroup"
)

const (
	filesBuffer     = 100
	shutdownTimeout = 5 * time.Second
	templateSeed    = 1001
)

type App struct {
	log *slog.Logger
	cfg *config.Config
}

func New(log *slog.Logger, cfg *config.Config) *App {
	return &App{
		log: log,
		cfg: cfg,
	}
}

// Serve runs the web front-end until ctx is canceled.
func (a *App) Serve(ctx context.Context) error {
	a.log.InfoContext(ctx, "starting app",
		slog.String("backend_url", a.cfg.Backend.URL),
		slog.Bool("journal_enabled", a.cfg.PostgreSQL.Enabled),
	)

	client, err := a.newClient()
	if err != nil {
		return err
	}

	pool, err := a.connect(ctx)
	if err != nil {
		return err
	}

	var (
		recorder    transfer.Recorder = transfer.NopRecorder{}
		submissions *v1.SubmissionsHandler
	)

	if pool != nil {
		defer pool.Close()

		repo := postgresql.NewSubmissionsRepository(pool)
		recorder = repo
		submissions = v1.NewSubmissionsHandler(
			a.log,
			repo,
			postgresql.NewReadOnlyTxManager(pool),
			report_generator.New(),
		)
	}

	forms := v1.NewFormsHandler(
		a.log,
		client,
		recorder,
		template_generator.NewSeeded(templateSeed),
		a.cfg.App.TemplateRows,
		a.cfg.App.MaxUploadSize,
	)

	server := v1.NewServer(a.cfg.HTTP, v1.NewRouter(forms, submissions))

	erg, ctx := errgroup.WithContext(ctx)

	erg.Go(func() error {
		a.log.InfoContext(ctx, "starting http server",
			slog.String("addr", net.JoinHostPort(a.cfg.HTTP.Host, a.cfg.HTTP.Port)),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}

		return nil
	})

	erg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := erg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.ErrorContext(ctx, "app stopped with error", slog.String("err", err.Error()))

		return err
	}

	a.log.InfoContext(ctx, "app stopped gracefully")

	return nil
}

// Submit sends every file through its own form and saves the results into
// the output directory. Without files it fails with the form's validation
// error and sends nothing.
func (a *App) Submit(ctx context.Context, spec transfer.Spec, paths []string) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}

	recorder, closeJournal, err := a.recorder(ctx)
	if err != nil {
		return err
	}
	defer closeJournal()

	saver := transfer.NewDirSaver(a.log, a.cfg.App.OutputDirectory)

	if len(paths) == 0 {
		return transfer.NewForm(a.log, spec, client, saver, recorder).Submit(ctx)
	}

	submitter := pipeline.NewFormSubmitter(a.log, spec, client, saver, recorder)

	var (
		erg  errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	erg.SetLimit(a.cfg.App.Parallelism)

	for _, path := range paths {
		erg.Go(func() error {
			if err := submitter.Submit(ctx, path); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				mu.Unlock()
			}

			return nil
		})
	}

	_ = erg.Wait()

	return errors.Join(errs...)
}

// Watch submits every new file appearing in the watch directory.
func (a *App) Watch(ctx context.Context, spec transfer.Spec) error {
	a.log.InfoContext(ctx, "starting watcher",
		slog.String("form", spec.Name),
		slog.String("watch_dir", a.cfg.App.WatchDirectory),
		slog.String("output_dir", a.cfg.App.OutputDirectory),
		slog.Duration("scan_interval", a.cfg.App.ScanInterval),
	)

	client, err := a.newClient()
	if err != nil {
		return err
	}

	recorder, closeJournal, err := a.recorder(ctx)
	if err != nil {
		return err
	}
	defer closeJournal()

	saver := transfer.NewDirSaver(a.log, a.cfg.App.OutputDirectory)

	files := make(chan string, filesBuffer)

	scanner := pipeline.NewScanner(a.log, a.cfg.App.WatchDirectory, a.cfg.App.ScanInterval, files)
	dispatcher := pipeline.NewDispatcher(a.log, files, pipeline.NewFormSubmitter(a.log, spec, client, saver, recorder))

	erg, ctx := errgroup.WithContext(ctx)

	for range a.cfg.App.Parallelism {
		erg.Go(func() error {
			return dispatcher.Run(ctx)
		})
	}

	erg.Go(func() error {
		return scanner.Run(ctx)
	})

	if err := erg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	a.log.InfoContext(ctx, "watcher stopped gracefully")

	return nil
}

func (a *App) newClient() (*transfer.Client, error) {
	client, err := transfer.NewClient(a.log, a.cfg.Backend.URL, &http.Client{Timeout: a.cfg.Backend.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	return client, nil
}

// connect returns a nil pool when the journal is disabled.
func (a *App) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if !a.cfg.PostgreSQL.Enabled {
		return nil, nil
	}

	a.log.InfoContext(ctx, "establishing postgresql connection",
		slog.String("postgresql_host", a.cfg.PostgreSQL.Host),
		slog.String("postgresql_port", a.cfg.PostgreSQL.Port),
		slog.String("postgresql_dbname", a.cfg.PostgreSQL.DBName),
	)

	pool, err := postgresql.NewConnection(ctx, a.log, a.cfg.PostgreSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to create db connection: %w", err)
	}

	return pool, nil
}

func (a *App) recorder(ctx context.Context) (transfer.Recorder, func(), error) {
	pool, err := a.connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	if pool == nil {
		return transfer.NopRecorder{}, func() {}, nil
	}

	return postgresql.NewSubmissionsRepository(pool), pool.Close, nil
}

// UserMessage returns the message a form shows the user for err.
func UserMessage(err error) (string, bool) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message, true
	}

	var processingErr *domain.ProcessingError
	if errors.As(err, &processingErr) {
		return processingErr.Message, true
	}

	return "", false
}
