// Package glob lists files under a base directory that match
// dockerignore-style patterns.
//
// Patterns are slash-separated and relative to the base directory. They
// support *, ? and [...] within one path element, ** across elements, and
// a leading ! to exclude paths matched by an earlier pattern. A pattern
// that matches a directory also matches everything beneath it.
package glob

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/patternmatcher"
)

// Prefix is accepted, and stripped, at the start of a pattern.
const Prefix = "glob:"

type options struct {
	base string
	dirs bool
}

type Option func(*options)

// WithBase sets the directory patterns are relative to. Default: cwd.
func WithBase(dir string) Option {
	return func(o *options) { o.base = dir }
}

// WithDirs includes matching directories in the result. By default only
// files (and symlinks) are returned.
func WithDirs(include bool) Option {
	return func(o *options) { o.dirs = include }
}

// Glob returns the paths under the base directory that match pattern.
func Glob(pattern string, opts ...Option) ([]string, error) {
	return GlobAll([]string{pattern}, opts...)
}

// GlobAll is Glob with several patterns, applied in order so that a later
// !pattern can exclude what an earlier one matched.
func GlobAll(patterns []string, opts ...Option) ([]string, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return match(o, patterns...)
}

// Match returns the files under base matching patterns, applied in order.
func Match(base string, patterns ...string) ([]string, error) {
	return match(options{base: base}, patterns...)
}

func match(o options, patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	cleaned := make([]string, len(patterns))
	for i, p := range patterns {
		cleaned[i] = strings.TrimPrefix(strings.TrimSpace(p), Prefix)
		if cleaned[i] == "" || cleaned[i] == "!" {
			return nil, fmt.Errorf("glob: empty pattern at position %d", i)
		}
	}

	pm, err := patternmatcher.New(cleaned)
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}

	base := o.base
	if base == "" {
		if base, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("glob: %w", err)
		}
	}

	var out []string
	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == base {
			return nil
		}
		if d.IsDir() && !o.dirs {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		ok, err := pm.MatchesOrParentMatches(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if ok {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", base, err)
	}
	return out, nil
}
