package transfer

import (
	"context"

	"github.com/kurochkinivan/stego_portal/internal/domain"
)

type Sender interface {
	Send(ctx context.Context, endpointPath string, file *domain.SelectedFile) (*domain.Payload, error)
}

type Saver interface {
	Save(ctx context.Context, filename string, payload *domain.Payload) error
}

type Recorder interface {
	RecordSubmission(ctx context.Context, submission *domain.Submission) error
}

// NopRecorder is used when the submission journal is disabled.
type NopRecorder struct{}

func (NopRecorder) RecordSubmission(context.Context, *domain.Submission) error {
	return nil
}
