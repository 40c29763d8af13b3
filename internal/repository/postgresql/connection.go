package postgresql

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kurochkinivan/stego_portal/internal/config"
)

const (
	applicationName = "stego_portal"

	pingAttempts = 5
	pingDelay    = 2 * time.Second
)

// ConnectionString builds the DSN shared by the service and the migrator.
func ConnectionString(cfg config.PostgreSQL) string {
	query := url.Values{}
	query.Set("sslmode", "disable")
	query.Set("application_name", applicationName)

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     cfg.DBName,
		RawQuery: query.Encode(),
	}

	return u.String()
}

func NewConnection(ctx context.Context, log *slog.Logger, cfg config.PostgreSQL) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(ConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	ping := Retry(log, pool.Ping, pingAttempts, pingDelay)

	if err := ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return pool, nil
}

type PingFunction func(context.Context) error

// Retry calls ping up to attempts+1 times, waiting delay between calls.
func Retry(log *slog.Logger, ping PingFunction, attempts int, delay time.Duration) PingFunction {
	return func(ctx context.Context) error {
		for attempt := 1; ; attempt++ {
			err := ping(ctx)
			if err == nil || attempt > attempts {
				return err
			}

			log.WarnContext(ctx, "database is not reachable yet",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", attempts),
				slog.String("err", err.Error()),
			)

			timer := time.NewTimer(delay)

			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}
}
