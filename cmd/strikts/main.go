// strikts – strict .env resolution for scripts and shells.
//
// Usage:
//
//	strikts env get NAME [--default V | --or-null]   – print one variable
//	strikts env has NAME                             – exit 0 if set, 1 if not
//	strikts env list [--format dotenv|yaml]          – print the merged view
//	strikts env which NAME                           – show which layer wins
//	strikts env watch                                – reprint on .env changes
//	strikts exec [--pty] [--timeout D] -- CMD ARGS…  – run with the merged env
//	strikts glob PATTERN… [--base DIR] [--dirs]      – list matching paths
//
// Variables set in the process environment always win over the .env file.
// A key written without a value in .env (KEY= or KEY) only documents that
// the variable exists; it never counts as set.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/uzzu/strikts/dotenv"
	"github.com/uzzu/strikts/internal/config"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stderr)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(stderr, "%s %v\n", errorPrefix(), exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "%s %v\n", errorPrefix(), err)
	return ExitFailure
}

// app carries global flags and what PersistentPreRunE derives from them.
type app struct {
	configPath     string
	envFile        string
	requireEnvFile bool
	syntax         string
	verbose        bool

	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "strikts",
		Short: "Strict .env resolution: the environment wins, placeholders never count",
		Long: `strikts resolves variables from two layers: the process environment and
a .env file. The environment always wins. A .env key without a value is a
placeholder that documents the variable; it is never treated as set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, stderr)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvVar+" or ./"+config.Filename+")")
	flags.StringVarP(&a.envFile, "env-file", "f", dotenv.DefaultFilename, ".env file to read")
	flags.BoolVar(&a.requireEnvFile, "require-env-file", false, "fail when the .env file does not exist")
	flags.StringVar(&a.syntax, "syntax", string(dotenv.SyntaxStrict), "dotenv syntax: strict or compat")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(newEnvCmd(a))
	root.AddCommand(newExecCmd(a))
	root.AddCommand(newGlobCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// setup loads the config file and lets explicitly set flags override it.
func (a *app) setup(cmd *cobra.Command, stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return &exitError{Code: ExitConfigError, Err: err}
	}

	flags := cmd.Flags()
	if flags.Changed("env-file") {
		cfg.EnvFile = a.envFile
	}
	if flags.Changed("require-env-file") {
		cfg.RequireEnvFile = a.requireEnvFile
	}
	if flags.Changed("syntax") {
		cfg.Syntax = a.syntax
	}
	if flags.Changed("verbose") {
		cfg.Verbose = a.verbose
	}
	if err := cfg.Validate(); err != nil {
		return usageError(err)
	}
	a.cfg = cfg

	a.logger = log.NewWithOptions(stderr, log.Options{Prefix: "strikts"})
	if cfg.Verbose {
		a.logger.SetLevel(log.DebugLevel)
	}
	if cfg.Path != "" {
		a.logger.Debug("using config", "path", cfg.Path)
	}
	return nil
}

// load resolves the .env layer described by the effective config.
func (a *app) load() (*dotenv.DotEnv, error) {
	syntax, err := dotenv.ParseSyntax(a.cfg.Syntax)
	if err != nil {
		return nil, usageError(err)
	}
	d, err := dotenv.LoadFile(a.cfg.EnvFile, a.dotenvOptions(syntax)...)
	if err != nil {
		return nil, dotenvError(err)
	}
	return d, nil
}

func (a *app) dotenvOptions(syntax dotenv.Syntax) []dotenv.Option {
	return []dotenv.Option{
		dotenv.WithSyntax(syntax),
		dotenv.RequireFileIf(a.cfg.RequireEnvFile),
		dotenv.WithLogger(a.logger),
	}
}

// dotenvError maps resolver failures onto exit codes.
func dotenvError(err error) error {
	switch {
	case errors.Is(err, dotenv.ErrFileNotFound):
		return &exitError{Code: ExitFileError, Err: err}
	case errors.Is(err, dotenv.ErrMalformedLine):
		return &exitError{Code: ExitParseError, Err: err}
	case errors.Is(err, dotenv.ErrMissingVariable):
		return &exitError{Code: ExitFailure, Err: err}
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// No config or .env needed.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "strikts version %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", buildTime)
		},
	}
}
