package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/oz/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "oz",
		Short: "Drive and inspect the oz reactivity engine",
		Long: `oz runs scripted scenarios against the reactivity engine.

A scenario reacts a document, installs watchers on it and applies
a list of mutations, printing every step and every watcher change:

  oz run counter.yaml
  oz run counter.yaml --format json
  oz inspect counter.yaml --addr localhost:7070`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				errors.DisableColors()
			}
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to oz.json (default: nearest oz.json above the working directory)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error (default from oz.json)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json (default from oz.json)")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		runCmd(&flags),
		inspectCmd(&flags),
		versionCmd(),
	)

	return rootCmd
}
