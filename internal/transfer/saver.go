package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kurochkinivan/stego_portal/internal/domain"
)

const maxNameAttempts = 1000

var _ Saver = (*DirSaver)(nil)

// DirSaver writes payloads into a directory. Existing files are never
// overwritten, "name (n).ext" is used instead.
type DirSaver struct {
	log *slog.Logger
	dir string

	mu    sync.Mutex
	saved []string
}

func NewDirSaver(log *slog.Logger, dir string) *DirSaver {
	return &DirSaver{
		log: log,
		dir: dir,
	}
}

func (s *DirSaver) Save(ctx context.Context, filename string, payload *domain.Payload) (err error) {
	f, err := s.create(filename)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	if _, err := f.Write(payload.Data); err != nil {
		return fmt.Errorf("failed to write %q: %w", f.Name(), err)
	}

	s.mu.Lock()
	s.saved = append(s.saved, f.Name())
	s.mu.Unlock()

	s.log.InfoContext(ctx, "payload saved", slog.String("path", f.Name()), slog.Int("size", len(payload.Data)))

	return nil
}

// Saved returns the paths written so far.
func (s *DirSaver) Saved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.saved...)
}

func (s *DirSaver) create(filename string) (*os.File, error) {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for i := 0; i < maxNameAttempts; i++ {
		name := filename
		if i > 0 {
			name = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}

		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %q: %w", name, err)
		}

		return f, nil
	}

	return nil, fmt.Errorf("failed to find a free name for %q in %q", filename, s.dir)
}
