package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Scanner polls a directory and emits every new file exactly once.
type Scanner struct {
	log          *slog.Logger
	watchDir     string
	scanInterval time.Duration
	files        chan<- string
	seen         map[string]struct{}
}

func NewScanner(
	log *slog.Logger,
	watchDir string,
	scanInterval time.Duration,
	files chan<- string,
) *Scanner {
	return &Scanner{
		log:          log,
		watchDir:     watchDir,
		scanInterval: scanInterval,
		files:        files,
		seen:         make(map[string]struct{}),
	}
}

func (s *Scanner) Run(ctx context.Context) error {
	defer close(s.files)

	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.log.DebugContext(ctx, "scan cycle started")

			err := s.scanFiles(ctx)
			if err != nil {
				s.log.ErrorContext(ctx, "failed to scan files", slog.String("err", err.Error()))
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Scanner) scanFiles(ctx context.Context) error {
	entries, err := os.ReadDir(s.watchDir)
	if err != nil {
		return fmt.Errorf("failed to read directory %q: %w", s.watchDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		if _, ok := s.seen[entry.Name()]; ok {
			continue
		}

		s.seen[entry.Name()] = struct{}{}

		s.log.DebugContext(ctx, "found new file", slog.String("filename", entry.Name()))

		select {
		case s.files <- filepath.Join(s.watchDir, entry.Name()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}
