package report_generator

import (
	"fmt"
	"strconv"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/kurochkinivan/stego_portal/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	headerProps = props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center}
	cellProps   = props.Text{Size: 8, Align: align.Center}
	errorProps  = props.Text{Size: 7, Align: align.Left, Color: &props.Color{Red: 200}}
)

type ReportGenerator struct {
	now func() time.Time
}

func New() *ReportGenerator {
	return &ReportGenerator{now: time.Now}
}

// GenerateReport renders the submissions as a PDF table.
func (g *ReportGenerator) GenerateReport(submissions []*domain.Submission) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	m.AddRows(
		text.NewRow(12, "Submissions report", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Center}),
		text.NewRow(8, "Generated at "+g.now().Format(timeLayout), props.Text{Size: 8, Align: align.Center}),
	)

	m.AddRow(8,
		text.NewCol(3, "Started", headerProps),
		text.NewCol(2, "Form", headerProps),
		text.NewCol(3, "Filename", headerProps),
		text.NewCol(2, "Status", headerProps),
		text.NewCol(2, "Result size", headerProps),
	)

	for _, s := range submissions {
		addSubmission(m, s)
	}

	if len(submissions) == 0 {
		m.AddRows(text.NewRow(8, "No submissions recorded", cellProps))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pdf: %w", err)
	}

	return doc.GetBytes(), nil
}

func addSubmission(m core.Maroto, s *domain.Submission) {
	m.AddRow(6,
		text.NewCol(3, s.StartedAt.Format(timeLayout), cellProps),
		text.NewCol(2, s.Form, cellProps),
		text.NewCol(3, s.Filename, cellProps),
		text.NewCol(2, string(s.Status), cellProps),
		text.NewCol(2, strconv.FormatInt(s.PayloadSize, 10), cellProps),
	)

	if s.ErrorMessage != "" {
		m.AddRows(text.NewRow(6, s.ErrorMessage, errorProps))
	}
}
