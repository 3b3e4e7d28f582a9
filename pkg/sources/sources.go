// Package sources obtains the raw registry exports consumed by the pipeline.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Source is a retrievable byte stream for one registry export.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// RetrievalError means the stream for a source could not be obtained at all.
type RetrievalError struct {
	Source string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieving %s dataset: %v", e.Source, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

func IsRetrievalError(err error) bool {
	var re *RetrievalError
	return errors.As(err, &re)
}

type FileSource struct {
	name string
	path string
}

func NewFileSource(name, path string) *FileSource {
	return &FileSource{name: name, path: filepath.Clean(path)}
}

func (f *FileSource) Name() string { return f.name }

func (f *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, &RetrievalError{Source: f.name, Err: err}
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, &RetrievalError{Source: f.name, Err: err}
	}
	return file, nil
}

type FetchOptions struct {
	Timeout   time.Duration
	Attempts  int
	BaseDelay time.Duration
}

// New returns an HTTP source for http(s) locations and a file source otherwise.
func New(name, location string, opts FetchOptions) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPSource(name, location, opts)
	}
	return NewFileSource(name, location)
}

// StaticSource serves fixed content; used for embedded fixtures and tests.
type StaticSource struct {
	name    string
	content string
	err     error
}

func NewStaticSource(name, content string) *StaticSource {
	return &StaticSource{name: name, content: content}
}

// NewFailingSource always fails retrieval with err.
func NewFailingSource(name string, err error) *StaticSource {
	return &StaticSource{name: name, err: err}
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, &RetrievalError{Source: s.name, Err: s.err}
	}
	return io.NopCloser(strings.NewReader(s.content)), nil
}
