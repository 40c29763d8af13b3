package v1

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/kurochkinivan/stego_portal/internal/transfer"
)

const (
	pageTitle   = "Casino Data Processing System"
	templateURL = "/transaction_template.csv"
)

//go:embed web/index.html
var webFS embed.FS

var pageTemplate = template.Must(template.ParseFS(webFS, "web/index.html"))

type pageData struct {
	Title string
	Forms []formView
}

type formView struct {
	Spec        transfer.Spec
	Action      string
	TemplateURL string
	Error       string
}

// renderPage writes the shell with both forms. errs maps a form name to the
// message shown under it.
func renderPage(w http.ResponseWriter, status int, errs map[string]string) error {
	data := pageData{Title: pageTitle}

	for _, spec := range transfer.Specs() {
		view := formView{
			Spec:   spec,
			Action: "/forms/" + spec.Name,
			Error:  errs[spec.Name],
		}
		if spec.Name == transfer.ProcessSpec.Name {
			view.TemplateURL = templateURL
		}

		data.Forms = append(data.Forms, view)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())

	return err
}
