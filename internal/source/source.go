// Package source provides the post collections the app reads from.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/ibeckermayer/sentiview/internal/config"
	"github.com/ibeckermayer/sentiview/internal/types"
)

// ErrUnknownKind is returned by New for an unrecognised source.kind.
var ErrUnknownKind = errors.New("unknown source kind")

// Source returns read-only snapshots of posts, newest first.
type Source interface {
	Posts(ctx context.Context) ([]types.Post, error)
	UserPosts(ctx context.Context, username string) ([]types.Post, error)
}

// New selects the source named by cfg.Kind. local is used for the store
// kind and must be non-nil in that case.
func New(cfg config.SourceConfig, local Source, logger *log.Logger) (Source, error) {
	switch cfg.Kind {
	case config.SourceREST:
		return NewREST(cfg, logger), nil
	case config.SourceFile:
		return NewFile(cfg.FilePath), nil
	case config.SourceStore:
		if local == nil {
			return nil, errors.New("store source requires a local store")
		}
		return local, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

// File reads posts from a JSON array on disk.
type File struct {
	path string
}

// NewFile returns a source backed by the JSON file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Posts reads and decodes the file. Content that is not a JSON array of
// objects yields no posts rather than an error.
func (f *File) Posts(ctx context.Context) ([]types.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read posts file: %w", err)
	}

	posts := types.DecodePosts(data)
	types.SortNewestFirst(posts)
	return posts, nil
}

// UserPosts returns the posts in the file authored by username.
func (f *File) UserPosts(ctx context.Context, username string) ([]types.Post, error) {
	posts, err := f.Posts(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(posts, func(p types.Post) bool { return p.Username != username }), nil
}
