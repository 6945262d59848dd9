package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/oz/internal/errors"
	"github.com/vango-dev/oz/internal/scenario"
	"github.com/vango-dev/oz/pkg/devtools"
)

func inspectCmd(flags *globalFlags) *cobra.Command {
	var (
		addr    string
		format  string
		holdFor time.Duration
	)

	cmd := &cobra.Command{
		Use:   "inspect <scenario>",
		Short: "Run a scenario, then serve the runtime inspector",
		Long: `Run a scenario, then keep its runtime alive and serve the inspector:

  GET /debug/reactive/stats    runtime statistics and event counts
  GET /debug/reactive/events   recent events (?limit=N)
  GET /debug/reactive/ws       live event feed (WebSocket)
  GET /metrics                 Prometheus metrics

The server stops on interrupt, or after --for when set.

Examples:
  oz inspect counter.yaml
  oz inspect counter.yaml --addr 0.0.0.0:7070`,
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

			s, err := newSession(cmd, flags, true)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			runner := scenario.NewRunner(s.rt, cmd.OutOrStdout(),
				scenario.WithFormat(f),
				scenario.WithLogger(s.logger),
			)
			if _, err := runner.Run(cmd.Context(), sc); err != nil {
				return err
			}

			if addr == "" {
				addr = s.cfg.Devtools.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if holdFor > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, holdFor)
				defer cancel()
			}

			// From here on the runtime belongs to Run's goroutine.
			runDone := make(chan error, 1)
			go func() { runDone <- s.rt.Run(ctx) }()

			srv := devtools.NewServer(s.hub, devtools.RuntimeStats(s.rt),
				devtools.WithGatherer(s.registry),
				devtools.WithLogger(s.logger),
			)
			fmt.Fprintf(cmd.ErrOrStderr(), "inspecting %s at http://%s/debug/reactive/stats\n", sc.Name, addr)

			if err := srv.ListenAndServe(ctx, addr); err != nil {
				return errors.New("E302").Wrap(err)
			}
			<-runDone
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Inspector listen address (default from oz.json)")
	cmd.Flags().StringVarP(&format, "format", "f", string(scenario.FormatText), "Trace format: text or json")
	cmd.Flags().DurationVar(&holdFor, "for", 0, "Stop serving after this long (default: until interrupted)")

	return cmd
}
