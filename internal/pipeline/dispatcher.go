package pipeline

import (
	"context"
	"log/slog"
)

// Dispatcher submits every file received from the scanner.
type Dispatcher struct {
	log       *slog.Logger
	files     <-chan string
	submitter Submitter
}

func NewDispatcher(log *slog.Logger, files <-chan string, submitter Submitter) *Dispatcher {
	return &Dispatcher{
		log:       log,
		files:     files,
		submitter: submitter,
	}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case path, ok := <-d.files:
			if !ok {
				return nil
			}

			log := d.log.With(slog.String("path", path))

			log.InfoContext(ctx, "received file to submit")

			if err := d.submitter.Submit(ctx, path); err != nil {
				log.ErrorContext(ctx, "failed to submit file", slog.String("err", err.Error()))
				continue
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
