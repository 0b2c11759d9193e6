package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/camdaq/pcoclient/internal/logfmt"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "print recent writer service log lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w, _, _, err := newWriter(cmd)
		if err != nil {
			return err
		}
		text, err := w.ServerLog(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(logfmt.Colorize(strings.TrimRight(text, "\n")))
		return nil
	},
}

var uptimeCmd = &cobra.Command{
	Use:   "uptime",
	Short: "print the writer service uptime",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w, _, _, err := newWriter(cmd)
		if err != nil {
			return err
		}
		uptime, err := w.ServerUptime(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(uptime)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd, uptimeCmd)
}
