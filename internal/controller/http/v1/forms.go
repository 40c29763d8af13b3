package v1

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kurochkinivan/stego_portal/internal/domain"
	"github.com/kurochkinivan/stego_portal/internal/transfer"
)

const (
	multipartMemory = 8 << 20
	maxTemplateRows = 10000
)

type TemplateWriter interface {
	WriteTemplate(w io.Writer, rows int) error
}

type FormsHandler struct {
	log           *slog.Logger
	sender        transfer.Sender
	recorder      transfer.Recorder
	templates     TemplateWriter
	templateRows  int
	maxUploadSize int64
}

func NewFormsHandler(
	log *slog.Logger,
	sender transfer.Sender,
	recorder transfer.Recorder,
	templates TemplateWriter,
	templateRows int,
	maxUploadSize int64,
) *FormsHandler {
	return &FormsHandler{
		log:           log,
		sender:        sender,
		recorder:      recorder,
		templates:     templates,
		templateRows:  templateRows,
		maxUploadSize: maxUploadSize,
	}
}

func (h *FormsHandler) Index(w http.ResponseWriter, r *http.Request) {
	if err := renderPage(w, http.StatusOK, nil); err != nil {
		h.log.ErrorContext(r.Context(), "failed to render page", slog.String("err", err.Error()))
	}
}

// Submit accepts the multipart upload of one form and answers with the
// backend's payload as an attachment.
func (h *FormsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	spec, ok := transfer.SpecByName(chi.URLParam(r, "form"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	file, err := h.selectedFile(r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.fail(w, r, spec, http.StatusRequestEntityTooLarge, "File is too large.")
			return
		}

		h.fail(w, r, spec, http.StatusBadRequest, "Invalid upload.")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	saver := &attachmentSaver{w: w}

	form := transfer.NewForm(h.log, spec, h.sender, saver, h.recorder)
	if file != nil {
		form.Select(file)
	}

	err = form.Submit(r.Context())
	if err == nil || saver.committed {
		return
	}

	var (
		validationErr *domain.ValidationError
		processingErr *domain.ProcessingError
	)

	switch {
	case errors.As(err, &validationErr):
		h.fail(w, r, spec, http.StatusUnprocessableEntity, validationErr.Message)
	case errors.As(err, &processingErr):
		h.fail(w, r, spec, http.StatusBadGateway, processingErr.Message)
	default:
		h.fail(w, r, spec, http.StatusInternalServerError, spec.FailureMessage)
	}
}

func (h *FormsHandler) Template(w http.ResponseWriter, r *http.Request) {
	rows := h.templateRows
	if v := r.URL.Query().Get("rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxTemplateRows {
			http.Error(w, "invalid rows, must be in [0;10000]", http.StatusBadRequest)
			return
		}
		rows = n
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transaction_template.csv"`)

	if err := h.templates.WriteTemplate(w, rows); err != nil {
		h.log.ErrorContext(r.Context(), "failed to write template", slog.String("err", err.Error()))
	}
}

// selectedFile returns nil when the request carries no file.
func (h *FormsHandler) selectedFile(r *http.Request) (*domain.SelectedFile, error) {
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 || headers[0].Filename == "" {
		return nil, nil
	}

	header := headers[0]

	return domain.NewSelectedFile(header.Filename, header.Size, func() (io.ReadCloser, error) {
		return header.Open()
	}), nil
}

func (h *FormsHandler) fail(w http.ResponseWriter, r *http.Request, spec transfer.Spec, status int, message string) {
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": message})
		return
	}

	if err := renderPage(w, status, map[string]string{spec.Name: message}); err != nil {
		h.log.ErrorContext(r.Context(), "failed to render page", slog.String("err", err.Error()))
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
