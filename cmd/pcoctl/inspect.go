package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/camdaq/pcoclient/internal/config"
	"github.com/camdaq/pcoclient/pco"
)

var (
	statusLastRun bool
	saveConfig    bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "print the writer status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w, _, _, err := newWriter(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		var st pco.Status
		if statusLastRun {
			st, err = w.StatusLastRun(ctx)
		} else {
			st, err = w.Status(ctx)
		}
		if err != nil {
			return err
		}
		fmt.Println(st)

		if st == pco.StatusError {
			if msg, err := w.ServerError(ctx); err == nil && msg != "" {
				fmt.Printf("last error: %s\n", msg)
			}
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "print the statistics snapshot as JSON",
	Long: `stats prints the current statistics snapshot: the running writer's
live counters, or the final record of the last finished run when no writer
process is up.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w, _, _, err := newWriter(cmd)
		if err != nil {
			return err
		}
		stats, err := w.Statistics(cmd.Context())
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "check that the writer service answers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w, _, _, err := newWriter(cmd)
		if err != nil {
			return err
		}
		endpoint := w.Configuration().FlaskAPIAddress
		if !w.IsConnected(cmd.Context()) {
			return fmt.Errorf("%w: no answer from %s", pco.ErrConnectionUnavailable, endpoint)
		}
		fmt.Printf("writer service reachable at %s\n", endpoint)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "print the effective configuration",
	Long: `config prints the configuration pcoctl resolved from the config
file, the environment and the flags, in the TOML form the config file uses.
With --save the result is written back to the config file, making the
current flag set the new default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if saveConfig {
			if err := config.Save(tomlPath, cfg); err != nil {
				return err
			}
			path := tomlPath
			if path == "" {
				path = config.DefaultPath()
			}
			fmt.Printf("configuration saved to %s\n", path)
			return nil
		}

		out, err := config.Encode(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, statsCmd, pingCmd, configCmd)

	statusCmd.Flags().BoolVar(&statusLastRun, "last-run", false, "status of the last finished run instead of the writer process")
	configCmd.Flags().BoolVar(&saveConfig, "save", false, "write the effective configuration to the config file")
}
