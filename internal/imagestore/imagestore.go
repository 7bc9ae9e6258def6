package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/baylot/raffle-api/internal/config"
)

var (
	ErrNotAnImage    = errors.New("uploaded file is not an image")
	ErrEmptyUpload   = errors.New("uploaded file is empty")
	ErrImageNotFound = errors.New("image not found")
)

// Backend persists encoded image bytes under a key and returns the public URL.
type Backend interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// Pipeline checks, downscales and names uploads before handing them to a Backend.
type Pipeline struct {
	backend  Backend
	maxWidth int
}

func NewPipeline(backend Backend, maxWidth int) *Pipeline {
	return &Pipeline{
		backend:  backend,
		maxWidth: maxWidth,
	}
}

// New builds the pipeline for the configured storage driver.
func New(ctx context.Context, conf *config.StorageConfig) (*Pipeline, error) {
	switch conf.Driver {
	case "s3":
		backend, err := NewS3(ctx, conf.S3Bucket, conf.S3Region, conf.S3PublicURL, conf.Dir)
		if err != nil {
			return nil, fmt.Errorf("NewS3 -> %w", err)
		}

		return NewPipeline(backend, conf.MaxImageWidth), nil
	default:
		return NewPipeline(NewLocal(conf.Dir, conf.URLPrefix), conf.MaxImageWidth), nil
	}
}

// Save stores data as an image named after originalName and returns its URL.
func (p *Pipeline) Save(ctx context.Context, originalName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyUpload
	}

	mtype := mimetype.Detect(data)
	if !isImage(mtype) {
		return "", fmt.Errorf("%w: detected %s", ErrNotAnImage, mtype.String())
	}

	data = p.downscale(data, mtype)

	key := UniqueName(originalName, mtype.Extension())
	url, err := p.backend.Put(ctx, key, data, mtype.String())
	if err != nil {
		return "", fmt.Errorf("p.backend.Put -> %w", err)
	}

	return url, nil
}

func (p *Pipeline) Remove(ctx context.Context, url string) error {
	if err := p.backend.Delete(ctx, url); err != nil {
		return fmt.Errorf("p.backend.Delete -> %w", err)
	}

	return nil
}

func isImage(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}

	return false
}

// downscale shrinks raster images wider than maxWidth. Formats imaging cannot
// re-encode, or images it fails to decode, are stored untouched.
func (p *Pipeline) downscale(data []byte, mtype *mimetype.MIME) []byte {
	if p.maxWidth <= 0 {
		return data
	}

	format, err := imaging.FormatFromExtension(mtype.Extension())
	if err != nil {
		return data
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		zap.L().Warn("image decode failed, storing original", zap.String("mime", mtype.String()), zap.Error(err))
		return data
	}
	if img.Bounds().Dx() <= p.maxWidth {
		return data
	}

	var buf bytes.Buffer
	resized := imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
	if err = imaging.Encode(&buf, resized, format); err != nil {
		zap.L().Warn("image encode failed, storing original", zap.String("mime", mtype.String()), zap.Error(err))
		return data
	}

	return buf.Bytes()
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename keeps only the base name of name and replaces unsafe characters with underscores.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}

	return name
}

// UniqueName prefixes the sanitised name with a random hex id. When the name has no
// extension the detected one is appended.
func UniqueName(originalName, detectedExt string) string {
	name := SanitizeFilename(originalName)
	if filepath.Ext(name) == "" && detectedExt != "" {
		name += detectedExt
	}

	return strings.ReplaceAll(uuid.NewString(), "-", "") + "_" + name
}
