// Package main provides the CLI entrypoint for the MRZ reading service.
// It wires subcommands (serve, read), loads configuration, and initializes logging.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"mrzreader/internal/config"
	"mrzreader/internal/mrz"
	"mrzreader/pkg/logger"
	"mrzreader/pkg/metrics"
	"mrzreader/pkg/ocr/tesseract"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// getReader builds the recognition pipeline: it creates the Tesseract engine,
// probes the OCR-B trained model and wires the reader. A missing model is a
// deployment error and aborts startup.
func getReader(ctx context.Context, cfg *config.Config, pipelineMetrics *metrics.Pipeline) mrz.Reader {
	engine := tesseract.New(tesseract.Options{
		Language:       cfg.OCR.Language,
		TessdataPrefix: cfg.OCR.TessdataPrefix,
	})

	if err := engine.Probe(ctx); err != nil {
		logger.Fatal(ctx, "could not initialize ocr engine", zap.Error(err))
	}

	return mrz.New(engine, mrz.NewOptions(cfg), pipelineMetrics)
}

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use: "mrzreader",
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	configPath := flag.String("c", "config.yml", "The config file path")
	flag.Parse()

	log.Println("loading config ...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file", err)
	}

	logger.Setup(cfg.Environment)

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		serveCommand(cfg),
		readCommand(cfg),
	)

	err = rootCmd.Execute()
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
