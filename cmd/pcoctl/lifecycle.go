package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/camdaq/pcoclient/internal/app"
	"github.com/camdaq/pcoclient/pco"
)

var (
	noConfirm      bool
	confirmTimeout time.Duration

	startWait  bool
	startWatch bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "start an acquisition with the resolved configuration",
	Long: `start submits the resolved acquisition configuration to the writer
service and confirms that a writer process came up. With --wait the command
blocks and prints progress until the run ends; --watch opens the live watch
screen instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w, _, log, err := newWriter(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := w.Start(ctx, pco.ConfirmOptions{Skip: noConfirm, Timeout: confirmTimeout}); err != nil {
			return err
		}
		fmt.Printf("writer started, run %d\n", w.LastRunID())

		switch {
		case startWatch:
			return app.Watch(ctx, app.WatchOptions{Writer: w, Logger: log})
		case startWait:
			return followRun(ctx, w)
		}
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "stop the running acquisition",
	Long: `stop asks the writer process to finish writing what it received and
shut down, then confirms the process is gone. Stopping an idle writer is a
no-op.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w, _, _, err := newWriter(cmd)
		if err != nil {
			return err
		}
		if err := w.Stop(cmd.Context(), pco.ConfirmOptions{Skip: noConfirm, Timeout: confirmTimeout}); err != nil {
			return err
		}
		st, err := w.Status(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("writer stopped, status: %s\n", st)
		return nil
	},
}

var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "kill the writer process without waiting for writes",
	Long: `kill terminates the writer process immediately. Frames still in
flight are lost and the acquisition configuration must be set up again
before the next start.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w, _, _, err := newWriter(cmd)
		if err != nil {
			return err
		}
		if err := w.Kill(cmd.Context(), pco.ConfirmOptions{Skip: noConfirm, Timeout: confirmTimeout}); err != nil {
			return err
		}
		fmt.Println("writer killed")
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "kill the writer and drain the camera stream",
	Long: `reset brings the client and the deployment back to a clean slate:
any writer process is killed, buffered messages are drained off the camera
stream, and the run counter and cached statistics are cleared.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w, _, _, err := newWriter(cmd)
		if err != nil {
			return err
		}
		st, err := w.Reset(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("writer reset, status: %s\n", st)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd, stopCmd, killCmd, resetCmd)

	for _, cmd := range []*cobra.Command{startCmd, stopCmd, killCmd} {
		cmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "return as soon as the command is acknowledged")
		cmd.Flags().DurationVar(&confirmTimeout, "confirm-timeout", 0, "confirmation window (default 10s)")
	}
	startCmd.Flags().BoolVar(&startWait, "wait", false, "block and print progress until the run ends")
	startCmd.Flags().BoolVar(&startWatch, "watch", false, "open the live watch screen after starting")
	startCmd.MarkFlagsMutuallyExclusive("wait", "watch")
}

// followRun prints one overwriting progress line per poll until the writer
// process exits. Interrupting leaves the remote writer running.
func followRun(ctx context.Context, w *pco.Writer) error {
	err := w.Wait(ctx, pco.WaitOptions{
		PollInterval: 500 * time.Millisecond,
		OnProgress: func(p pco.Progress) {
			fmt.Printf("\r\033[K%s", p.Message())
		},
	})
	fmt.Println()
	return err
}
