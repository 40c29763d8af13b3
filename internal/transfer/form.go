package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kurochkinivan/stego_portal/internal/domain"
)

const settleTimeout = 5 * time.Second

// Form selects a single file, submits it to the backend and hands the
// response over to a Saver.
type Form struct {
	log      *slog.Logger
	spec     Spec
	sender   Sender
	saver    Saver
	recorder Recorder

	mu       sync.Mutex
	selected *domain.SelectedFile
	state    domain.SubmissionState
}

func NewForm(log *slog.Logger, spec Spec, sender Sender, saver Saver, recorder Recorder) *Form {
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &Form{
		log:      log.With(slog.String("form", spec.Name)),
		spec:     spec,
		sender:   sender,
		saver:    saver,
		recorder: recorder,
	}
}

func (f *Form) Spec() Spec {
	return f.spec
}

// Select replaces the current selection.
func (f *Form) Select(file *domain.SelectedFile) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.selected = file
}

func (f *Form) Selected() *domain.SelectedFile {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.selected
}

func (f *Form) State() domain.SubmissionState {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}

// Submit sends the selected file and saves the response under the form's
// download filename. It returns *domain.ValidationError when nothing is
// selected, domain.ErrBusy while another submission of this form is in
// flight and *domain.ProcessingError for any other failure.
func (f *Form) Submit(ctx context.Context) error {
	file, err := f.begin()
	if err != nil {
		return err
	}

	var payload *domain.Payload
	defer func() { f.finish(err) }()

	submission := &domain.Submission{
		ID:        uuid.NewString(),
		Form:      f.spec.Name,
		Filename:  file.Name,
		FileSize:  file.Size,
		Status:    domain.StatusProcessing,
		StartedAt: time.Now(),
	}
	f.record(ctx, submission)

	payload, err = f.sender.Send(ctx, f.spec.EndpointPath, file)
	if err == nil {
		err = f.saver.Save(ctx, f.spec.DownloadFilename, payload)
		if err != nil {
			err = fmt.Errorf("failed to save %q: %w", f.spec.DownloadFilename, err)
		}
	}

	now := time.Now()
	submission.FinishedAt = &now

	if err != nil {
		f.log.ErrorContext(ctx, "submission failed",
			slog.String("filename", file.Name),
			slog.String("err", err.Error()),
		)

		submission.Status = domain.StatusError
		submission.ErrorMessage = err.Error()
		f.settle(ctx, submission)

		err = &domain.ProcessingError{Message: f.spec.FailureMessage, Err: err}
		return err
	}

	f.log.InfoContext(ctx, "submission completed",
		slog.String("filename", file.Name),
		slog.String("download", f.spec.DownloadFilename),
		slog.Int("payload_size", len(payload.Data)),
	)

	submission.Status = domain.StatusDone
	submission.PayloadSize = int64(len(payload.Data))
	f.settle(ctx, submission)

	return nil
}

func (f *Form) begin() (*domain.SelectedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Processing {
		return nil, domain.ErrBusy
	}

	if f.selected == nil {
		f.state = domain.SubmissionState{ErrorMessage: f.spec.ValidationMessage}
		return nil, &domain.ValidationError{Message: f.spec.ValidationMessage}
	}

	f.state = domain.SubmissionState{Processing: true}

	return f.selected, nil
}

func (f *Form) finish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = domain.SubmissionState{}
	if err != nil {
		f.state.ErrorMessage = f.spec.FailureMessage
	}
}

// settle records the final status. It must reach the journal even when ctx
// was canceled mid-request.
func (f *Form) settle(ctx context.Context, submission *domain.Submission) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	f.record(ctx, submission)
}

func (f *Form) record(ctx context.Context, submission *domain.Submission) {
	if err := f.recorder.RecordSubmission(ctx, submission); err != nil {
		f.log.WarnContext(ctx, "failed to record submission",
			slog.String("submission_id", submission.ID),
			slog.String("err", err.Error()),
		)
	}
}
