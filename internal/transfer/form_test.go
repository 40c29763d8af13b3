package transfer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kurochkinivan/stego_portal/internal/domain"
	"github.com/kurochkinivan/stego_portal/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestForm_Submit_NoFileSelected(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	for _, spec := range transfer.Specs() {
		t.Run(spec.Name, func(t *testing.T) {
			t.Parallel()

			sender := NewMockSender(t)
			saver := NewMockSaver(t)

			form := transfer.NewForm(log, spec, sender, saver, nil)

			err := form.Submit(t.Context())

			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, spec.ValidationMessage, validationErr.Message)
			assert.Equal(t, domain.SubmissionState{ErrorMessage: spec.ValidationMessage}, form.State())

			sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
			saver.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestForm_Submit_RecoveryValidationMessage(t *testing.T) {
	t.Parallel()

	form := transfer.NewForm(slog.New(slog.DiscardHandler), transfer.RecoverySpec, NewMockSender(t), NewMockSaver(t), nil)

	err := form.Submit(t.Context())
	require.EqualError(t, err, "Please upload the encoded file.")
}

func TestForm_Submit_HappyPath(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	file := newFile("transactions.csv", "Transaction ID,User ID\n1001,600\n")
	payload := &domain.Payload{Data: []byte("B"), ContentType: "text/csv"}

	sender := NewMockSender(t)
	saver := NewMockSaver(t)

	form := transfer.NewForm(log, transfer.ProcessSpec, sender, saver, nil)
	form.Select(file)

	sender.EXPECT().
		Send(mock.Anything, "/api/process-transaction", file).
		Run(func(ctx context.Context, endpointPath string, file *domain.SelectedFile) {
			assert.True(t, form.State().Processing, "form must be processing while the request is in flight")
		}).
		Return(payload, nil)

	saver.EXPECT().
		Save(mock.Anything, "processed_result.csv", payload).
		Run(func(ctx context.Context, filename string, payload *domain.Payload) {
			assert.True(t, form.State().Processing)
		}).
		Return(nil)

	require.NoError(t, form.Submit(t.Context()))
	assert.Equal(t, domain.SubmissionState{}, form.State())
}

func TestForm_Submit_RecoveryHappyPath(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	file := newFile("processed_result.csv", "encoded")
	payload := &domain.Payload{Data: []byte("recovered")}

	sender := NewMockSender(t)
	sender.EXPECT().Send(mock.Anything, "/api/recover-transaction", file).Return(payload, nil)

	saver := NewMockSaver(t)
	saver.EXPECT().Save(mock.Anything, "recovered_transaction.csv", payload).Return(nil)

	form := transfer.NewForm(log, transfer.RecoverySpec, sender, saver, nil)
	form.Select(file)

	require.NoError(t, form.Submit(t.Context()))
}

func TestForm_Submit_TransportError(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	sender := NewMockSender(t)
	sender.EXPECT().
		Send(mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &domain.TransportError{StatusCode: 500, Detail: "An unexpected error occurred"})

	saver := NewMockSaver(t)

	form := transfer.NewForm(log, transfer.ProcessSpec, sender, saver, nil)
	form.Select(newFile("transactions.csv", "data"))

	err := form.Submit(t.Context())

	var processingErr *domain.ProcessingError
	require.ErrorAs(t, err, &processingErr)
	assert.Equal(t, "Failed to process file. Please try again.", processingErr.Message)

	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 500, transportErr.StatusCode)

	assert.Equal(t, domain.SubmissionState{ErrorMessage: "Failed to process file. Please try again."}, form.State())
	saver.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestForm_Submit_SaveError(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)
	saveErr := errors.New("disk full")

	sender := NewMockSender(t)
	sender.EXPECT().Send(mock.Anything, mock.Anything, mock.Anything).Return(&domain.Payload{Data: []byte("x")}, nil)

	saver := NewMockSaver(t)
	saver.EXPECT().Save(mock.Anything, mock.Anything, mock.Anything).Return(saveErr)

	form := transfer.NewForm(log, transfer.RecoverySpec, sender, saver, nil)
	form.Select(newFile("encoded.csv", "data"))

	err := form.Submit(t.Context())
	require.ErrorIs(t, err, saveErr)
	require.EqualError(t, err, transfer.RecoverySpec.FailureMessage)
	assert.False(t, form.State().Processing)
}

func TestForm_Submit_LatestSelectionWins(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	first := newFile("first.csv", "1")
	second := newFile("second.csv", "2")

	sender := NewMockSender(t)
	sender.EXPECT().Send(mock.Anything, mock.Anything, second).Return(&domain.Payload{Data: []byte("x")}, nil)

	saver := NewMockSaver(t)
	saver.EXPECT().Save(mock.Anything, mock.Anything, mock.Anything).Return(nil)

	form := transfer.NewForm(log, transfer.ProcessSpec, sender, saver, nil)
	form.Select(first)
	form.Select(second)

	require.Same(t, second, form.Selected())
	require.NoError(t, form.Submit(t.Context()))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, first)
}

func TestForm_Submit_Busy(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	started := make(chan struct{})
	release := make(chan struct{})

	sender := NewMockSender(t)
	sender.EXPECT().
		Send(mock.Anything, mock.Anything, mock.Anything).
		Run(func(context.Context, string, *domain.SelectedFile) {
			close(started)
			<-release
		}).
		Return(&domain.Payload{Data: []byte("x")}, nil).
		Once()

	saver := NewMockSaver(t)
	saver.EXPECT().Save(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	form := transfer.NewForm(log, transfer.ProcessSpec, sender, saver, nil)
	form.Select(newFile("transactions.csv", "data"))

	errChan := make(chan error, 1)
	go func() {
		errChan <- form.Submit(t.Context())
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("timeout: request was not sent")
	}

	require.ErrorIs(t, form.Submit(t.Context()), domain.ErrBusy)
	assert.True(t, form.State().Processing)

	close(release)

	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("timeout: submission did not settle")
	}

	assert.False(t, form.State().Processing)
}

func TestForm_Submit_FormsAreIndependent(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	started := make(chan struct{})
	release := make(chan struct{})

	uploadSender := NewMockSender(t)
	uploadSender.EXPECT().
		Send(mock.Anything, "/api/process-transaction", mock.Anything).
		Run(func(context.Context, string, *domain.SelectedFile) {
			close(started)
			<-release
		}).
		Return(nil, &domain.TransportError{Err: errors.New("connection refused")})

	recoverySender := NewMockSender(t)
	recoverySender.EXPECT().
		Send(mock.Anything, "/api/recover-transaction", mock.Anything).
		Return(&domain.Payload{Data: []byte("x")}, nil)

	saver := NewMockSaver(t)
	saver.EXPECT().Save(mock.Anything, "recovered_transaction.csv", mock.Anything).Return(nil)

	upload := transfer.NewForm(log, transfer.ProcessSpec, uploadSender, NewMockSaver(t), nil)
	upload.Select(newFile("transactions.csv", "data"))

	recovery := transfer.NewForm(log, transfer.RecoverySpec, recoverySender, saver, nil)
	recovery.Select(newFile("encoded.csv", "data"))

	errChan := make(chan error, 1)
	go func() {
		errChan <- upload.Submit(t.Context())
	}()

	<-started

	require.NoError(t, recovery.Submit(t.Context()))
	assert.False(t, recovery.State().Processing)
	assert.True(t, upload.State().Processing)

	close(release)

	require.Error(t, <-errChan)
	assert.Equal(t, domain.SubmissionState{ErrorMessage: transfer.ProcessSpec.FailureMessage}, upload.State())
	assert.Empty(t, recovery.State().ErrorMessage)
}

func TestForm_Submit_RecordsSubmission(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	sender := NewMockSender(t)
	sender.EXPECT().Send(mock.Anything, mock.Anything, mock.Anything).Return(&domain.Payload{Data: []byte("abc")}, nil)

	saver := NewMockSaver(t)
	saver.EXPECT().Save(mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var statuses []domain.Status
	recorder := NewMockRecorder(t)
	recorder.EXPECT().
		RecordSubmission(mock.Anything, mock.MatchedBy(func(s *domain.Submission) bool {
			return s.ID != "" && s.Form == "process" && s.Filename == "transactions.csv"
		})).
		Run(func(ctx context.Context, s *domain.Submission) {
			statuses = append(statuses, s.Status)
		}).
		Return(nil).
		Twice()

	form := transfer.NewForm(log, transfer.ProcessSpec, sender, saver, recorder)
	form.Select(newFile("transactions.csv", "data"))

	require.NoError(t, form.Submit(t.Context()))
	assert.Equal(t, []domain.Status{domain.StatusProcessing, domain.StatusDone}, statuses)
}

func TestForm_Submit_RecorderFailureIsIgnored(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	sender := NewMockSender(t)
	sender.EXPECT().Send(mock.Anything, mock.Anything, mock.Anything).Return(&domain.Payload{Data: []byte("abc")}, nil)

	saver := NewMockSaver(t)
	saver.EXPECT().Save(mock.Anything, mock.Anything, mock.Anything).Return(nil)

	recorder := NewMockRecorder(t)
	recorder.EXPECT().RecordSubmission(mock.Anything, mock.Anything).Return(errors.New("db is down"))

	form := transfer.NewForm(log, transfer.ProcessSpec, sender, saver, recorder)
	form.Select(newFile("transactions.csv", "data"))

	require.NoError(t, form.Submit(t.Context()))
}

func TestForm_Submit_CanceledRequestStillSettlesJournal(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	sender := NewMockSender(t)
	sender.EXPECT().
		Send(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, string, *domain.SelectedFile) (*domain.Payload, error) {
			// client went away while the backend was working
			cancel()
			return nil, &domain.TransportError{Err: context.Canceled}
		})

	type record struct {
		status domain.Status
		ctxErr error
	}

	var records []record
	recorder := NewMockRecorder(t)
	recorder.EXPECT().
		RecordSubmission(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, s *domain.Submission) {
			records = append(records, record{status: s.Status, ctxErr: ctx.Err()})
		}).
		Return(nil).
		Twice()

	form := transfer.NewForm(log, transfer.ProcessSpec, sender, NewMockSaver(t), recorder)
	form.Select(newFile("transactions.csv", "data"))

	var processingErr *domain.ProcessingError
	require.ErrorAs(t, form.Submit(ctx), &processingErr)

	require.Len(t, records, 2)
	assert.Equal(t, domain.StatusProcessing, records[0].status)
	assert.Equal(t, domain.StatusError, records[1].status)
	assert.NoError(t, records[1].ctxErr)
}

func newFile(name, content string) *domain.SelectedFile {
	return domain.NewSelectedFile(name, int64(len(content)), func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	})
}
