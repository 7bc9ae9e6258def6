package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local writes images to a directory that the HTTP server exposes under urlPrefix.
type Local struct {
	dir       string
	urlPrefix string
}

func NewLocal(dir, urlPrefix string) *Local {
	return &Local{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}
}

func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) URLPrefix() string {
	return l.urlPrefix
}

func (l *Local) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll -> %w", err)
	}

	if err := os.WriteFile(filepath.Join(l.dir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile -> %w", err)
	}

	return path.Join(l.urlPrefix, key), nil
}

func (l *Local) Delete(_ context.Context, url string) error {
	name := strings.TrimPrefix(url, l.urlPrefix+"/")
	if name == url || name == "" || name != filepath.Base(name) {
		return fmt.Errorf("%w: %q is not served from %s", ErrImageNotFound, url, l.urlPrefix)
	}

	if err := os.Remove(filepath.Join(l.dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrImageNotFound
		}

		return fmt.Errorf("os.Remove -> %w", err)
	}

	return nil
}
