package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Transformer is a pure transform bound to validated parameters.
// Implementations must not retain src or the returned image.
type Transformer interface {
	Name() string
	Transform(src Image) (Image, error)
}

// Metadata describes the loaded source image
type Metadata struct {
	Path     string
	Format   string
	Width    int
	Height   int
	Channels int
}

// Session is the original/processed pair of one loaded image.
// It is a value: every action returns a new Session and leaves the receiver untouched.
// The images it points to are never mutated after being set.
type Session struct {
	id        string
	original  *Image
	processed *Image
	lastOp    string
	metadata  Metadata
}

// Load starts a session for a freshly decoded image. The image is copied.
func Load(img Image, path string) (Session, error) {
	if err := img.Validate(); err != nil {
		return Session{}, err
	}

	original := img.Clone()
	return Session{
		id:       uuid.NewString(),
		original: &original,
		metadata: Metadata{
			Path:     path,
			Format:   formatFromPath(path),
			Width:    img.Width,
			Height:   img.Height,
			Channels: img.Channels,
		},
	}, nil
}

// Apply runs t against the original image and replaces the processed image
// with its output. The processed image is never used as input.
func (s Session) Apply(t Transformer) (Session, error) {
	if s.original == nil {
		return s, ErrNoImageLoaded
	}

	out, err := t.Transform(s.original.Clone())
	if err != nil {
		return s, fmt.Errorf("%s: %w", t.Name(), err)
	}
	if err := out.Validate(); err != nil {
		return s, fmt.Errorf("%s produced an invalid image: %w", t.Name(), err)
	}

	next := s
	next.processed = &out
	next.lastOp = t.Name()
	return next, nil
}

// Reset drops the processed image, leaving the original in place
func (s Session) Reset() (Session, error) {
	if s.original == nil {
		return s, ErrNoImageLoaded
	}
	next := s
	next.processed = nil
	next.lastOp = ""
	return next, nil
}

// ID identifies the load that created this session; empty before any load
func (s Session) ID() string {
	return s.id
}

// HasImage returns true once an image has been loaded
func (s Session) HasImage() bool {
	return s.original != nil
}

// HasProcessed returns true when a transform output is available
func (s Session) HasProcessed() bool {
	return s.processed != nil
}

// Original returns a copy of the loaded image
func (s Session) Original() (Image, error) {
	if s.original == nil {
		return Image{}, ErrNoImageLoaded
	}
	return s.original.Clone(), nil
}

// Processed returns a copy of the last transform output
func (s Session) Processed() (Image, error) {
	if s.original == nil {
		return Image{}, ErrNoImageLoaded
	}
	if s.processed == nil {
		return Image{}, ErrNoProcessedImage
	}
	return s.processed.Clone(), nil
}

// Current returns the image that should be on screen: the processed one if any, else the original
func (s Session) Current() (Image, error) {
	if s.processed != nil {
		return s.processed.Clone(), nil
	}
	return s.Original()
}

// LastOperation names the transform that produced the processed image
func (s Session) LastOperation() string {
	return s.lastOp
}

// Metadata returns information about the loaded file
func (s Session) Metadata() Metadata {
	return s.metadata
}

func formatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}
