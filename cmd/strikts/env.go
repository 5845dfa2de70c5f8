package main

import (
	"fmt"
	"io"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/uzzu/strikts/dotenv"
)

// whichWidth caps the value column of `env which`.
const whichWidth = 60

func newEnvCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Query the merged environment",
	}
	cmd.AddCommand(newEnvGetCmd(a))
	cmd.AddCommand(newEnvHasCmd(a))
	cmd.AddCommand(newEnvListCmd(a))
	cmd.AddCommand(newEnvWhichCmd(a))
	cmd.AddCommand(newEnvWatchCmd(a))
	return cmd
}

func newEnvGetCmd(a *app) *cobra.Command {
	var (
		def    string
		orNull bool
	)
	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print a variable; fails when it is not set",
		Long: `Print the value of NAME. The process environment wins over the .env file.

Without flags a missing variable is an error (exit 1). --default prints a
fallback instead, and --or-null prints nothing and exits 0.

Examples:
  strikts env get DATABASE_URL
  strikts env get PORT --default 8080
  strikts env get OPTIONAL_TOKEN --or-null`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load()
			if err != nil {
				return err
			}
			name := args[0]
			out := cmd.OutOrStdout()

			switch {
			case cmd.Flags().Changed("default"):
				fmt.Fprintln(out, d.OrElse(name, def).Get())
			case orNull:
				if v, ok := d.OrNull(name).Get(); ok {
					fmt.Fprintln(out, v)
				}
			default:
				v, err := d.Var(name).Get()
				if err != nil {
					return dotenvError(err)
				}
				fmt.Fprintln(out, v)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&def, "default", "d", "", "value to print when NAME is not set")
	cmd.Flags().BoolVar(&orNull, "or-null", false, "print nothing and succeed when NAME is not set")
	cmd.MarkFlagsMutuallyExclusive("default", "or-null")
	return cmd
}

func newEnvHasCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "has NAME",
		Short: "Exit 0 when a variable is set, 1 when it is not",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load()
			if err != nil {
				return err
			}
			if !d.IsPresent(args[0]) {
				return silentExit(ExitFailure)
			}
			return nil
		},
	}
}

func newEnvListCmd(a *app) *cobra.Command {
	var (
		format   string
		fileOnly bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print all set variables, sorted by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load()
			if err != nil {
				return err
			}
			vars := d.AllVariables()
			if fileOnly {
				vars = d.FileVariables().Values()
			}
			return writeVars(cmd.OutOrStdout(), vars, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "dotenv", "output format: dotenv or yaml")
	cmd.Flags().BoolVar(&fileOnly, "file-only", false, "only variables defined in the .env file")
	return cmd
}

func newEnvWhichCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "which NAME",
		Short: "Show which layer supplies a variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load()
			if err != nil {
				return err
			}
			name := args[0]
			layer := d.Source(name)
			out := cmd.OutOrStdout()

			if layer == dotenv.LayerNone {
				hint := ""
				if v, ok := d.FileVariables().Lookup(name); ok && v.IsPlaceholder() {
					hint = dim("  (placeholder in " + d.Path() + ")")
				}
				fmt.Fprintf(out, "%s  %s%s\n", bold(name), colorLayer(layer), hint)
				return silentExit(ExitFailure)
			}
			v, _ := d.FetchOrNull(name)
			fmt.Fprintf(out, "%s  %s  %s\n", bold(name), colorLayer(layer), truncate(v, whichWidth))
			return nil
		},
	}
}

func newEnvWatchCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reprint the merged view whenever the .env file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			syntax, err := dotenv.ParseSyntax(a.cfg.Syntax)
			if err != nil {
				return usageError(err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			return dotenv.Watch(ctx, a.cfg.EnvFile, func(d *dotenv.DotEnv, err error) {
				if err != nil {
					fmt.Fprintf(errOut, "%s %v\n", errorPrefix(), err)
					return
				}
				fmt.Fprintln(out, dim("# "+d.Path()))
				if err := writeVars(out, d.AllVariables(), format); err != nil {
					a.logger.Error("write variables", "err", err)
				}
			}, a.dotenvOptions(syntax)...)
		},
	}
	cmd.Flags().StringVar(&format, "format", "dotenv", "output format: dotenv or yaml")
	return cmd
}

// writeVars prints vars sorted by key.
func writeVars(w io.Writer, vars map[string]string, format string) error {
	switch format {
	case "dotenv", "":
		keys := make([]string, 0, len(vars))
		for k := range vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(vars[k])
			b.WriteByte('\n')
		}
		_, err := io.WriteString(w, b.String())
		return err
	case "yaml":
		// yaml.v3 sorts map keys.
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(vars); err != nil {
			return err
		}
		return enc.Close()
	}
	return usageError(fmt.Errorf("unknown format %q (want dotenv or yaml)", format))
}
