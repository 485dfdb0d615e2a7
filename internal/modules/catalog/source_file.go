package catalog

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "towquote/internal/errors"
)

// FileSource reads <dir>/<name>.json.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *FileSource) Document(_ context.Context, name string) ([]byte, error) {
	body, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.Configuration("missing configuration document %q", name)
	}
	if err != nil {
		return nil, apperrors.WrapConfiguration(err, "read %s", s.path(name))
	}
	return body, nil
}

func (s *FileSource) Put(_ context.Context, name string, body []byte) error {
	return os.WriteFile(s.path(name), body, 0o644)
}
