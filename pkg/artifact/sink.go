package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// filePermissions for written artifacts
const filePermissions = 0o644

// ErrInvalidLocation is returned for a location a sink cannot address.
var ErrInvalidLocation = errors.New("invalid artifact location")

// Sink stores whole artifacts by location. Put replaces the artifact
// atomically: readers see either the previous content or the new one.
type Sink interface {
	Put(ctx context.Context, location string, data []byte) error
	Get(ctx context.Context, location string) ([]byte, error)
}

// FileSink writes artifacts to the local filesystem.
type FileSink struct{}

// Put writes data to a temporary file beside location and renames it into
// place, creating parent directories as needed.
func (FileSink) Put(ctx context.Context, location string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if location == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidLocation)
	}
	if dir := filepath.Dir(location); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	tmpPath := location + ".tmp"

	// Write to temporary file first
	if err := os.WriteFile(tmpPath, data, filePermissions); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, location); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename artifact: %w", err)
	}
	return nil
}

// Get reads the artifact at location.
func (FileSink) Get(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(location)
}

// Router sends s3:// locations to a lazily constructed remote sink and
// everything else to a local one.
type Router struct {
	local     Sink
	newRemote func(context.Context) (Sink, error)

	mu     sync.Mutex
	remote Sink
}

// NewRouter creates a router. newRemote runs at most once, on the first
// remote location.
func NewRouter(local Sink, newRemote func(context.Context) (Sink, error)) *Router {
	return &Router{local: local, newRemote: newRemote}
}

// DefaultRouter routes to FileSink and to an S3Sink built from the default
// AWS credential chain.
func DefaultRouter() *Router {
	return NewRouter(FileSink{}, func(ctx context.Context) (Sink, error) {
		return NewS3SinkFromConfig(ctx, "")
	})
}

// IsRemote reports whether location addresses object storage.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, s3Scheme)
}

func (r *Router) sinkFor(ctx context.Context, location string) (Sink, error) {
	if !IsRemote(location) {
		return r.local, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.remote != nil {
		return r.remote, nil
	}
	if r.newRemote == nil {
		return nil, fmt.Errorf("%w: no remote sink configured for %s", ErrInvalidLocation, location)
	}
	remote, err := r.newRemote(ctx)
	if err != nil {
		return nil, err
	}
	r.remote = remote
	return remote, nil
}

// Put implements Sink.
func (r *Router) Put(ctx context.Context, location string, data []byte) error {
	s, err := r.sinkFor(ctx, location)
	if err != nil {
		return err
	}
	return s.Put(ctx, location, data)
}

// Get implements Sink.
func (r *Router) Get(ctx context.Context, location string) ([]byte, error) {
	s, err := r.sinkFor(ctx, location)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, location)
}

var (
	_ Sink = FileSink{}
	_ Sink = (*Router)(nil)
)
