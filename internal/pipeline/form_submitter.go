package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kurochkinivan/stego_portal/internal/domain"
	"github.com/kurochkinivan/stego_portal/internal/transfer"
)

var _ Submitter = (*FormSubmitter)(nil)

// FormSubmitter runs one form per file, so files never share state.
type FormSubmitter struct {
	log      *slog.Logger
	spec     transfer.Spec
	sender   transfer.Sender
	saver    transfer.Saver
	recorder transfer.Recorder
}

func NewFormSubmitter(
	log *slog.Logger,
	spec transfer.Spec,
	sender transfer.Sender,
	saver transfer.Saver,
	recorder transfer.Recorder,
) *FormSubmitter {
	return &FormSubmitter{
		log:      log,
		spec:     spec,
		sender:   sender,
		saver:    saver,
		recorder: recorder,
	}
}

func (s *FormSubmitter) Submit(ctx context.Context, path string) error {
	file, err := domain.LocalFile(path)
	if err != nil {
		return fmt.Errorf("failed to select file: %w", err)
	}

	form := transfer.NewForm(s.log, s.spec, s.sender, s.saver, s.recorder)
	form.Select(file)

	return form.Submit(ctx)
}
