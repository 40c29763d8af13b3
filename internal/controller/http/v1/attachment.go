package v1

import (
	"context"
	"mime"
	"net/http"
	"strconv"

	"github.com/kurochkinivan/stego_portal/internal/domain"
	"github.com/kurochkinivan/stego_portal/internal/transfer"
)

var _ transfer.Saver = (*attachmentSaver)(nil)

// attachmentSaver offers the payload to the browser as a file download.
type attachmentSaver struct {
	w         http.ResponseWriter
	committed bool
}

func (s *attachmentSaver) Save(_ context.Context, filename string, payload *domain.Payload) error {
	h := s.w.Header()
	h.Set("Content-Type", payload.ContentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	h.Set("Content-Length", strconv.Itoa(len(payload.Data)))
	h.Set("Cache-Control", "no-store")

	s.committed = true
	s.w.WriteHeader(http.StatusOK)

	_, err := s.w.Write(payload.Data)

	return err
}
