package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/camdaq/pcoclient/internal/app"
)

var (
	pollEvery  time.Duration
	stayOpen   bool
	followOnly bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "watch the acquisition live",
	Long: `watch opens a full-screen view of the running acquisition: status,
frame counters and progress bars, refreshed continuously. The screen closes
by itself once the watched run ends, unless --stay-open is set.

With --follow no screen is opened; plain progress lines are printed until
the writer process exits. Interrupting either mode leaves the remote writer
untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w, _, log, err := newWriter(cmd)
		if err != nil {
			return err
		}
		if followOnly {
			return followRun(cmd.Context(), w)
		}
		return app.Watch(cmd.Context(), app.WatchOptions{
			Writer:       w,
			PollInterval: pollEvery,
			StayOpen:     stayOpen,
			Logger:       log,
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&pollEvery, "poll", 0, "refresh interval (default 500ms)")
	watchCmd.Flags().BoolVar(&stayOpen, "stay-open", false, "keep the screen up after the run ends")
	watchCmd.Flags().BoolVar(&followOnly, "follow", false, "print plain progress lines instead of the full screen")
}
