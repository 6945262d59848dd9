package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/oz/internal/scenario"
)

func runCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a scenario and print its trace",
		Long: `Run a scenario file (YAML or JSON) and print a trace of every
step and every watcher change.

Examples:
  oz run counter.yaml
  oz run counter.yaml --format json
  oz run counter.yaml --log-level debug`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := scenario.ParseFormat(format)
			if err != nil {
				return err
			}
			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}

			s, err := newSession(cmd, flags, false)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			runner := scenario.NewRunner(s.rt, cmd.OutOrStdout(),
				scenario.WithFormat(f),
				scenario.WithLogger(s.logger),
			)
			res, err := runner.Run(cmd.Context(), sc)
			if err != nil {
				return err
			}
			s.logger.Debug("scenario finished", "name", sc.Name, "steps", res.Steps, "changes", res.Changes)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(scenario.FormatText), "Trace format: text or json")

	return cmd
}
