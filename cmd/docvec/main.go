// Package main implements docvec, an operator CLI that runs the document
// pipeline directly against the configured embedder and vector index.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/akolanti/docvector/internal/app"
	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/rag"
	"github.com/akolanti/docvector/pkg/logger_i"
	"github.com/spf13/cobra"
)

var (
	configPath string
	userID     string
	outputJSON bool
)

// openService builds the same dependency graph as the server. Tests swap it.
var openService = func(ctx context.Context, cfg *config.Config) (rag.Service, func() error, error) {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return a.Service, a.Close, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docvec",
		Short: "Index and search documents from the command line",
		Long: `docvec runs ingestion, search, listing and deletion against the same
embedder and vector index the HTTP server uses.`,
		Version:      config.ServiceVersion,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&outputJSON, "json", false, "print results as JSON")

	root.AddCommand(newIngestCmd(), newSearchCmd(), newListCmd(), newDeleteCmd(), newHealthCmd())
	return root
}

// withService loads the configuration, opens the service and closes it once fn returns.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc rag.Service) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.Log.Level = "warn"
	logger_i.InitWithWriter(cfg.Log, cmd.ErrOrStderr())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, closeFn, err := openService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open services: %w", err)
	}
	defer func() {
		if closeErr := closeFn(); closeErr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "close:", closeErr)
		}
	}()
	return fn(ctx, svc)
}
