// Package main provides the CLI entrypoint for keydyn.
//
//	keydyn capture    Record typing dynamics until Escape is released
//	keydyn generate   Produce a deterministic synthetic dataset
//	keydyn devices    Report keyboard capture availability
//
// Capture emits one feature row per hop interval: average dwell time,
// average flight time and the correction-key ratio over the trailing
// window. Only these aggregates are persisted, never key content.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"keydyn/internal/capture"
	"keydyn/internal/config"
	"keydyn/internal/dynamics"
	"keydyn/internal/logging"
	"keydyn/internal/sink"
	"keydyn/internal/synth"
)

var (
	configPath string

	captureWidth   int
	captureHop     int
	captureOutput  string
	captureSink    string
	capturePairing string

	genSpeed    float64
	genAccuracy float64
	genWords    int
	genWidth    int
	genHop      int
	genSeed     int64
	genOutput   string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keydyn",
		Short:         "Typing dynamics recorder",
		Long:          "keydyn records keyboard timing statistics (dwell, flight, error ratio) over a sliding window and writes them as feature rows for downstream analysis.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")

	rootCmd.AddCommand(newCaptureCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newDevicesCmd())
	return rootCmd
}

func newCaptureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Record typing dynamics until Escape is released",
		RunE:  runCaptureCmd,
	}
	cmd.Flags().IntVar(&captureWidth, "width", 0, "window width in seconds (default from config, 5)")
	cmd.Flags().IntVar(&captureHop, "hop", 0, "hop interval in seconds (default from config, 1)")
	cmd.Flags().StringVar(&captureOutput, "output", "", "artifact output directory")
	cmd.Flags().StringVar(&captureSink, "sink", "", "artifact sink: csv or sqlite")
	cmd.Flags().StringVar(&capturePairing, "pairing", "", "dwell pairing: sequential or per_key")
	return cmd
}

func runCaptureCmd(cmd *cobra.Command, _ []string) error {
	loader, err := config.NewLoader(configPath)
	if err != nil {
		return err
	}
	defer loader.Close()
	cfg := loader.Current()

	if cmd.Flags().Changed("width") {
		cfg.Capture.WidthSec = captureWidth
	}
	if cmd.Flags().Changed("hop") {
		cfg.Capture.HopSec = captureHop
	}
	if captureOutput != "" {
		cfg.Output.Dir = captureOutput
	}
	if captureSink != "" {
		cfg.Output.Sink = captureSink
	}
	if capturePairing != "" {
		cfg.Capture.Pairing = capturePairing
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()
	logging.SetDefault(logger)
	loader.OnChange(func(c *config.Config) {
		if level, err := logging.ParseLevel(c.Logging.Level); err == nil {
			logger.SetLevel(level)
		}
	})

	pairing := dynamics.PairSequential
	if cfg.Capture.Pairing == "per_key" {
		pairing = dynamics.PairPerKey
	}

	source := capture.NewPlatformSource()
	session, err := capture.NewSession(source, capture.Config{
		Width:   time.Duration(cfg.Capture.WidthSec) * time.Second,
		Hop:     time.Duration(cfg.Capture.HopSec) * time.Second,
		Pairing: pairing,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Recording typing dynamics. Press Esc to stop.")
	samples, err := session.Run(ctx)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Println("No windows captured; nothing written.")
		return nil
	}

	// Samples survive in memory past this point: a persistence
	// failure is reported, not silently dropped with them.
	return persist(cfg, samples)
}

func persist(cfg *config.Config, samples []dynamics.WindowSample) error {
	var (
		s    sink.FeatureSink
		dest string
		err  error
	)
	switch cfg.Output.Sink {
	case "sqlite":
		dest = cfg.Output.SQLitePath
		s, err = sink.NewSQLiteSink(dest)
	default:
		dest = filepath.Join(cfg.Output.Dir, sink.LiveFileName(time.Now()))
		s, err = sink.NewCSVSink(dest)
	}
	if err != nil {
		return fmt.Errorf("persist %d samples: %w", len(samples), err)
	}
	if err := sink.WriteAll(s, samples); err != nil {
		return fmt.Errorf("persist %d samples to %s: %w", len(samples), dest, err)
	}
	fmt.Printf("Wrote %d feature rows to %s\n", len(samples), dest)
	return nil
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Produce a deterministic synthetic dataset",
		Long:  "Generate simulates a typist with the given speed and accuracy and writes the same windowed feature rows as live capture, for reproducible test and training corpora.",
		RunE:  runGenerateCmd,
	}
	cmd.Flags().Float64Var(&genSpeed, "speed", 40, "typing speed in words per minute")
	cmd.Flags().Float64Var(&genAccuracy, "accuracy", 0.9, "typing accuracy in [0, 1)")
	cmd.Flags().IntVar(&genWords, "words", 150, "simulated text length in words")
	cmd.Flags().IntVar(&genWidth, "width", 5, "window width in seconds")
	cmd.Flags().IntVar(&genHop, "hop", 1, "hop interval in seconds")
	cmd.Flags().Int64Var(&genSeed, "seed", synth.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&genOutput, "output", ".", "output directory")
	return cmd
}

func runGenerateCmd(_ *cobra.Command, _ []string) error {
	samples, err := synth.Generate(synth.Params{
		Speed:    genSpeed,
		Accuracy: genAccuracy,
		Words:    genWords,
		Width:    genWidth,
		Hop:      genHop,
		Seed:     genSeed,
	})
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Println("Parameters produce no complete window; nothing written.")
		return nil
	}

	dest := filepath.Join(genOutput, sink.SyntheticFileName(genSpeed, genAccuracy, genWords))
	s, err := sink.NewCSVSink(dest)
	if err != nil {
		return err
	}
	if err := sink.WriteAll(s, samples); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	fmt.Printf("Wrote %d feature rows to %s\n", len(samples), dest)
	return nil
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "Report keyboard capture availability",
		RunE: func(_ *cobra.Command, _ []string) error {
			ok, detail := capture.NewPlatformSource().Available()
			if ok {
				fmt.Println("Keyboard capture available:", detail)
				return nil
			}
			fmt.Println("Keyboard capture unavailable:", detail)
			return nil
		},
	}
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(&logging.Config{
		Level:     level,
		Format:    format,
		Output:    cfg.Logging.Output,
		FilePath:  cfg.Logging.FilePath,
		Component: "keydyn",
	})
}
