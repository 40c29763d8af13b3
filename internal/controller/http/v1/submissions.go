package v1

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/jszwec/csvutil"
	"github.com/kurochkinivan/stego_portal/internal/domain"
)

type SubmissionsRepository interface {
	Submissions(ctx context.Context, limit, offset uint64) ([]*domain.Submission, int, error)
}

type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ReportGenerator interface {
	GenerateReport(submissions []*domain.Submission) ([]byte, error)
}

type SubmissionsHandler struct {
	log                   *slog.Logger
	submissionsRepository SubmissionsRepository
	transactor            Transactor
	reportGenerator       ReportGenerator
}

func NewSubmissionsHandler(
	log *slog.Logger,
	submissionsRepository SubmissionsRepository,
	transactor Transactor,
	reportGenerator ReportGenerator,
) *SubmissionsHandler {
	return &SubmissionsHandler{
		log:                   log,
		submissionsRepository: submissionsRepository,
		transactor:            transactor,
		reportGenerator:       reportGenerator,
	}
}

type Pagination struct {
	Page       uint64 `json:"page"`
	Limit      uint64 `json:"limit"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
}

func newPagination(page, limit uint64, total int) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + int(limit) - 1) / int(limit),
	}
}

type GetSubmissionsResponse struct {
	Submissions []*domain.Submission `json:"submissions"`
	Pagination  Pagination           `json:"pagination"`
}

func (h *SubmissionsHandler) GetSubmissions(w http.ResponseWriter, r *http.Request) {
	submissions, pagination, ok := h.page(w, r)
	if !ok {
		return
	}

	if submissions == nil {
		submissions = []*domain.Submission{}
	}

	writeJSON(w, http.StatusOK, GetSubmissionsResponse{
		Submissions: submissions,
		Pagination:  pagination,
	})
}

func (h *SubmissionsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	submissions, _, ok := h.page(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(domain.Submission{}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for _, s := range submissions {
		if err := enc.Encode(s); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="submissions.csv"`)
	w.Write(buf.Bytes())
}

func (h *SubmissionsHandler) Report(w http.ResponseWriter, r *http.Request) {
	submissions, _, ok := h.page(w, r)
	if !ok {
		return
	}

	pdf, err := h.reportGenerator.GenerateReport(submissions)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to generate report", slog.String("err", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="submissions.pdf"`)
	w.Write(pdf)
}

// page loads the requested page of the journal. Count and rows are read in
// one transaction.
func (h *SubmissionsHandler) page(w http.ResponseWriter, r *http.Request) ([]*domain.Submission, Pagination, bool) {
	page, limit, err := h.parsePagination(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, Pagination{}, false
	}

	offset := (page - 1) * limit

	var (
		submissions []*domain.Submission
		total       int
	)

	err = h.transactor.WithTransaction(r.Context(), func(ctx context.Context) error {
		var err error
		submissions, total, err = h.submissionsRepository.Submissions(ctx, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to get submissions: %w", err)
		}

		return nil
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to load submissions", slog.String("err", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, Pagination{}, false
	}

	return submissions, newPagination(page, limit, total), true
}

func (h *SubmissionsHandler) parsePagination(r *http.Request) (page uint64, limit uint64, err error) {
	page, limit = 1, 10

	if p := r.URL.Query().Get("page"); p != "" {
		page, err = strconv.ParseUint(p, 10, 64)
		if err != nil || page == 0 {
			return 0, 0, errors.New("invalid page")
		}
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err = strconv.ParseUint(l, 10, 64)
		if err != nil || limit < 1 || limit > 100 {
			return 0, 0, errors.New("invalid limit, must be in [1;100]")
		}
	}

	// OFFSET is a signed bigint
	if page-1 > math.MaxInt64/limit {
		return 0, 0, errors.New("invalid page, out of range")
	}

	return page, limit, nil
}
