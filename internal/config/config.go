// Package config loads the optional .strikts.yaml settings file. Command
// line flags override anything read here.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uzzu/strikts/dotenv"
)

// EnvVar names the variable that points at an alternative config file.
const EnvVar = "STRIKTS_CONFIG"

// Filename is looked up in the working directory when EnvVar is unset.
const Filename = ".strikts.yaml"

type Config struct {
	EnvFile        string `yaml:"env_file"`
	RequireEnvFile bool   `yaml:"require_env_file"`
	Syntax         string `yaml:"syntax"`
	Verbose        bool   `yaml:"verbose"`

	Exec Exec `yaml:"exec"`
	Glob Glob `yaml:"glob"`

	// Path is where the config was read from; empty when defaults are used.
	Path string `yaml:"-"`
}

type Exec struct {
	Dir     string   `yaml:"dir"`
	Timeout Duration `yaml:"timeout"`
	PTY     bool     `yaml:"pty"`
}

type Glob struct {
	Base string `yaml:"base"`
}

// Duration accepts Go duration strings such as "30s" or "1m30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func Default() *Config {
	return &Config{
		EnvFile: dotenv.DefaultFilename,
		Syntax:  string(dotenv.SyntaxStrict),
	}
}

// Path returns the config file location.
// Precedence: STRIKTS_CONFIG env var > ./.strikts.yaml
func Path() string {
	if env := os.Getenv(EnvVar); env != "" {
		abs, err := filepath.Abs(env)
		if err == nil {
			return abs
		}
		return env
	}
	wd, err := os.Getwd()
	if err != nil {
		return Filename
	}
	return filepath.Join(wd, Filename)
}

// Load reads the config at path, or at Path() when path is empty. A missing
// file yields Default() unless path was given explicitly.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes YAML over Default(). Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := dotenv.ParseSyntax(c.Syntax); err != nil {
		return err
	}
	if c.Exec.Timeout < 0 {
		return fmt.Errorf("exec.timeout must not be negative, got %s", time.Duration(c.Exec.Timeout))
	}
	if c.EnvFile == "" {
		c.EnvFile = dotenv.DefaultFilename
	}
	return nil
}
