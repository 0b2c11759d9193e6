package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/camdaq/pcoclient/pco"
	"github.com/camdaq/pcoclient/stream"
)

var flushIdle time.Duration

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "drain buffered messages off the camera stream",
	Long: `flush consumes whatever the camera pushed onto the data stream
while no writer was listening, so stale frames do not leak into the next
acquisition. The drain ends after the stream stays quiet for the idle
window; with --timeout 0 it runs until interrupted. While a writer process
runs the command is a no-op.

With --verbose the metadata half of each message pair is printed as it is
discarded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		wcfg, err := cfg.WriterConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Verbose)
		if err != nil {
			return err
		}

		drainer := &stream.Drainer{Logger: log}
		if cfg.Verbose {
			// The stream alternates metadata and frame data messages. Only
			// the metadata half is printable.
			drainer.OnMessage = func(index int, payload []byte) {
				if index%2 == 0 {
					fmt.Printf("%d %s\n", index, payload)
				}
			}
		}

		w, err := pco.NewWriter(wcfg, pco.WriterOptions{Logger: log, Drainer: drainer})
		if err != nil {
			return err
		}

		idle := cfg.FlushTimeout
		if cmd.Flags().Changed("timeout") {
			idle = flushIdle
		}
		n, err := w.FlushStream(cmd.Context(), idle)
		if err != nil {
			return err
		}
		fmt.Printf("flushed %d messages from %s\n", n, wcfg.ConnectionAddress)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flushCmd)

	flushCmd.Flags().DurationVar(&flushIdle, "timeout", 0, "idle window before the drain ends, 0 drains until interrupted (default from config)")
}
