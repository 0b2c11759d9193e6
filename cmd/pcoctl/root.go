package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/camdaq/pcoclient/internal/config"
	"github.com/camdaq/pcoclient/pco"
)

var (
	tomlPath         string
	cameraFile       string
	cameraName       string
	streamAddr       string
	flaskAPI         string
	writerAPI        string
	outputFile       string
	datasetName      string
	nFrames          int
	userID           int
	maxFramesPerFile int
	verbose          bool
)

var rootCmd = &cobra.Command{
	Use:   "pcoctl",
	Short: "control the PCO camera writer service",
	Long: `pcoctl drives a PCO camera writer deployment: it configures
acquisitions, starts and stops the writer process, watches progress and
keeps the camera data stream clean between runs.

Settings are resolved from ~/.config/pcoctl/config.toml, PCO_* environment
variables and command line flags, in that order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	registerRootFlags(rootCmd)
}

func registerRootFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&tomlPath, "toml", "", "pcoctl config file (default ~/.config/pcoctl/config.toml)")
	pf.StringVar(&cameraFile, "config", "", "camera config file (JSON)")
	pf.StringVar(&cameraName, "camera", "", "camera entry to use from the camera config file")
	pf.StringVar(&streamAddr, "stream", "", "camera data stream address (tcp://host:port)")
	pf.StringVar(&flaskAPI, "flask-api", "", "writer service endpoint (http://host:port)")
	pf.StringVar(&writerAPI, "writer-api", "", "writer process endpoint (http://host:port)")
	pf.StringVarP(&outputFile, "output", "o", "", "hdf5 output file")
	pf.StringVarP(&datasetName, "dataset", "d", "", "dataset name under /exchange")
	pf.IntVarP(&nFrames, "frames", "n", 0, "number of frames to acquire")
	pf.IntVar(&userID, "user-id", 0, "user id for output file ownership")
	pf.IntVar(&maxFramesPerFile, "max-frames-per-file", 0, "frames per file before rolling over")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func run(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "pcoctl: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig resolves the tool configuration and overlays the flags the
// operator actually set, so an explicit zero still overrides the file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(tomlPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("config") {
		cfg.CameraFile = cameraFile
	}
	if flags.Changed("camera") {
		cfg.Camera = cameraName
	}
	if flags.Changed("stream") {
		cfg.ConnectionAddress = streamAddr
	}
	if flags.Changed("flask-api") {
		cfg.FlaskAPIAddress = flaskAPI
	}
	if flags.Changed("writer-api") {
		cfg.WriterAPIAddress = writerAPI
	}
	if flags.Changed("output") {
		cfg.OutputFile = outputFile
	}
	if flags.Changed("dataset") {
		cfg.DatasetName = datasetName
	}
	if flags.Changed("frames") {
		cfg.NFrames = nFrames
	}
	if flags.Changed("user-id") {
		cfg.UserID = userID
	}
	if flags.Changed("max-frames-per-file") {
		cfg.MaxFramesPerFile = maxFramesPerFile
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

// newWriter assembles the writer client every remote subcommand works
// through.
func newWriter(cmd *cobra.Command) (*pco.Writer, config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	wcfg, err := cfg.WriterConfig()
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	w, err := pco.NewWriter(wcfg, pco.WriterOptions{Logger: log})
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	return w, cfg, log, nil
}
