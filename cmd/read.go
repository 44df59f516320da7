package main

import (
	"context"
	"encoding/json"
	"os"

	"mrzreader/internal/config"
	"mrzreader/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// readCommand runs the pipeline once over an image file and prints the result
// as JSON, useful for smoke-testing a deployment without the HTTP server.
func readCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <image>",
		Short: "Reads the MRZ from a single image file and prints the result",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			image, err := os.ReadFile(args[0])
			if err != nil {
				logger.Fatal(ctx, "could not read image file", zap.Error(err))
			}

			reader := getReader(ctx, cfg, nil)
			doc, err := reader.Read(ctx, image)
			if err != nil {
				logger.Fatal(ctx, "could not read mrz", zap.Error(err))
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(doc); err != nil {
				logger.Fatal(ctx, "could not encode result", zap.Error(err))
			}
		},
	}

	return cmd
}
