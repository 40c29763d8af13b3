package v1

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kurochkinivan/stego_portal/internal/config"
)

type Server struct {
	httpServer *http.Server
}

// NewRouter mounts the page, the form endpoints and, when submissions is not
// nil, the journal API.
func NewRouter(forms *FormsHandler, submissions *SubmissionsHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", forms.Index)
	r.Get(templateURL, forms.Template)
	r.Post("/forms/{form}", forms.Submit)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	if submissions != nil {
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/submissions", submissions.GetSubmissions)
			r.Get("/submissions/export.csv", submissions.ExportCSV)
			r.Get("/submissions/report.pdf", submissions.Report)
		})
	}

	return r
}

func NewServer(cfg config.HTTP, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			Handler:      handler,
		},
	}
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
