// Package dotenv resolves configuration values from two layers: the real
// process environment and a .env file. The environment always wins; the
// file fills in names the environment does not set.
//
// A DotEnv is immutable once built and safe for concurrent use. The only
// live input is its EnvProvider, which by default reads the process
// environment on every query.
package dotenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// DefaultFilename is the file Load reads from the working directory.
const DefaultFilename = ".env"

// Layer names where a resolved value came from.
type Layer int

const (
	LayerNone Layer = iota
	LayerEnv
	LayerFile
)

func (l Layer) String() string {
	switch l {
	case LayerEnv:
		return "env"
	case LayerFile:
		return "file"
	default:
		return "none"
	}
}

// DotEnv merges an EnvProvider with a parsed .env Mapping. The zero value
// reads the process environment and has an empty file layer.
type DotEnv struct {
	provider EnvProvider
	file     *Mapping
	path     string
}

// New composes a resolver from explicit inputs. A nil provider reads the
// process environment; a nil mapping is an empty file layer.
func New(provider EnvProvider, m *Mapping) *DotEnv {
	if provider == nil {
		provider = SystemEnvProvider{}
	}
	if m == nil {
		m = NewMapping()
	}
	return &DotEnv{provider: provider, file: m}
}

// ─── Construction ─────────────────────────────────────────────────────────────

type options struct {
	provider    EnvProvider
	syntax      Syntax
	requireFile bool
	dir         string
	logger      *log.Logger
}

// Option configures Load, LoadFile, FromText and Watch.
type Option func(*options)

// RequireFile makes a missing .env file an error (ErrFileNotFound) instead
// of an empty file layer.
func RequireFile() Option {
	return func(o *options) { o.requireFile = true }
}

// RequireFileIf is RequireFile when cond is true, for flag plumbing.
func RequireFileIf(cond bool) Option {
	return func(o *options) { o.requireFile = cond }
}

// WithProvider replaces the process environment layer.
func WithProvider(p EnvProvider) Option {
	return func(o *options) { o.provider = p }
}

func WithSyntax(s Syntax) Option {
	return func(o *options) { o.syntax = s }
}

// WithDir sets the directory Load looks in. Defaults to the working directory.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) *options {
	o := &options{syntax: SyntaxStrict}
	for _, opt := range opts {
		opt(o)
	}
	if o.provider == nil {
		o.provider = SystemEnvProvider{}
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	return o
}

// Load reads DefaultFilename from the working directory (or WithDir).
// A missing file yields an empty file layer unless RequireFile is given.
func Load(opts ...Option) (*DotEnv, error) {
	o := buildOptions(opts)
	dir := o.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	return loadFile(filepath.Join(dir, DefaultFilename), o)
}

// LoadFile reads the .env file at path. A missing path, or a path that is
// a directory, yields an empty file layer unless RequireFile is given.
func LoadFile(path string, opts ...Option) (*DotEnv, error) {
	return loadFile(path, buildOptions(opts))
}

// FromText parses text directly; no file is involved.
func FromText(text string, opts ...Option) (*DotEnv, error) {
	o := buildOptions(opts)
	m, err := ParseWithSyntax(text, o.syntax)
	if err != nil {
		return nil, err
	}
	return &DotEnv{provider: o.provider, file: m}, nil
}

func loadFile(path string, o *options) (*DotEnv, error) {
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return missingFile(path, err, o)
	case err != nil:
		return nil, fmt.Errorf("stat dotenv file: %w", err)
	case info.IsDir():
		return missingFile(path, fs.ErrNotExist, o)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dotenv file: %w", err)
	}
	m, err := ParseWithSyntax(string(data), o.syntax)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	o.logger.Debug("loaded dotenv file", "path", path, "keys", m.Len(), "syntax", o.syntax)
	return &DotEnv{provider: o.provider, file: m, path: path}, nil
}

func missingFile(path string, cause error, o *options) (*DotEnv, error) {
	if o.requireFile {
		return nil, &FileError{Path: path, Err: cause}
	}
	o.logger.Debug("dotenv file not found, using empty file layer", "path", path)
	return &DotEnv{provider: o.provider, file: NewMapping(), path: path}, nil
}

// ─── Queries ──────────────────────────────────────────────────────────────────

// lookup is the single resolution path: environment first, then the file,
// where a placeholder counts as absent.
func (d *DotEnv) lookup(name string) (string, Layer) {
	if v, ok := d.env().Getenv(name); ok {
		return v, LayerEnv
	}
	if v, ok := d.file.Lookup(name); ok {
		if s, set := v.Get(); set {
			return s, LayerFile
		}
	}
	return "", LayerNone
}

func (d *DotEnv) env() EnvProvider {
	if d.provider == nil {
		return SystemEnvProvider{}
	}
	return d.provider
}

// IsPresent reports whether name resolves to a value in either layer. A
// placeholder entry in the file does not make a name present.
func (d *DotEnv) IsPresent(name string) bool {
	_, layer := d.lookup(name)
	return layer != LayerNone
}

// Fetch returns the value for name or a *VariableError wrapping
// ErrMissingVariable.
func (d *DotEnv) Fetch(name string) (string, error) {
	v, layer := d.lookup(name)
	if layer == LayerNone {
		return "", &VariableError{Name: name}
	}
	return v, nil
}

// FetchOr returns the value for name, or defaultValue when unresolved.
func (d *DotEnv) FetchOr(name, defaultValue string) string {
	v, layer := d.lookup(name)
	if layer == LayerNone {
		return defaultValue
	}
	return v
}

// FetchOrNull returns the value for name and true, or "" and false.
func (d *DotEnv) FetchOrNull(name string) (string, bool) {
	v, layer := d.lookup(name)
	return v, layer != LayerNone
}

// MustFetch is Fetch for scripts: it panics with the *VariableError.
func (d *DotEnv) MustFetch(name string) string {
	v, err := d.Fetch(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Source reports which layer supplies name.
func (d *DotEnv) Source(name string) Layer {
	_, layer := d.lookup(name)
	return layer
}

// AllVariables returns a fresh merged map: the whole environment, plus every
// file key the environment does not set. Placeholders are omitted.
func (d *DotEnv) AllVariables() map[string]string {
	env := d.env().Environ()
	vars := make(map[string]string, len(env)+d.file.Len())
	for k, v := range env {
		vars[k] = v
	}
	for _, e := range d.file.Entries() {
		s, ok := e.Value.Get()
		if !ok {
			continue
		}
		if _, exists := vars[e.Key]; !exists {
			vars[e.Key] = s
		}
	}
	return vars
}

// Path is the absolute path of the .env file, or "" for FromText and New.
// The file may not exist.
func (d *DotEnv) Path() string {
	return d.path
}

// FileVariables exposes the parsed file layer.
func (d *DotEnv) FileVariables() *Mapping {
	return d.file
}
