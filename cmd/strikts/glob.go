package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uzzu/strikts/glob"
)

func newGlobCmd(a *app) *cobra.Command {
	var (
		base string
		dirs bool
	)
	cmd := &cobra.Command{
		Use:   "glob PATTERN...",
		Short: "List paths matching dockerignore-style patterns",
		Long: `List paths under --base matching PATTERN. Patterns are relative to the
base directory: * and ? match within one path element, ** matches any number
of elements, and a leading ! excludes what earlier patterns matched. A
pattern naming a directory matches everything beneath it. An optional glob:
prefix is ignored. Exits 1 when nothing matches.

Examples:
  strikts glob '**/*.go' '!**/*_test.go'
  strikts glob --base deploy 'glob:*.yaml'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("base") {
				base = a.cfg.Glob.Base
			}
			paths, err := glob.GlobAll(args, glob.WithBase(base), glob.WithDirs(dirs))
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return silentExit(ExitFailure)
			}
			out := cmd.OutOrStdout()
			for _, p := range paths {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "directory patterns are relative to (default: working directory)")
	cmd.Flags().BoolVar(&dirs, "dirs", false, "include matching directories")
	return cmd
}
