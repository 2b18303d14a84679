package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"modatlas/internal/policy"
	"modatlas/internal/resolve"
	"modatlas/internal/server"
)

// serveCmd runs the stdio JSON-RPC server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve resolution and neighborhood requests over stdio",
	Long: `Runs a line-delimited JSON-RPC 2.0 server on stdin/stdout, for
editor and agent integrations that keep modAtlas as a subprocess.

Methods: atlas.resolve, atlas.validate, atlas.neighborhood.

The policy and alias documents are watched for changes; edits to the alias
table take effect without a restart.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	pol, aliasCache, err := loadInputs()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Hot-reload: invalidate the alias cache when either document changes.
	watcher, err := policy.NewWatcher(
		resolvePath(cfg.Paths.PolicyFile),
		resolvePath(cfg.Paths.AliasFile),
		aliasCache,
		func(path string) {
			logger.Info("Input document changed", zap.String("path", path))
		})
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig := <-sigCh
		logger.Info("Shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	srv := server.New(pol, aliasCache, server.Config{
		DefaultRadius: cfg.Atlas.DefaultRadius,
		MaxTokens:     cfg.Atlas.MaxTokens,
		Resolver: resolve.Options{
			MinSubstringLength:  cfg.Resolver.MinSubstringLength,
			MaxAmbiguousMatches: cfg.Resolver.MaxAmbiguousMatches,
		},
	}, os.Stdin, os.Stdout)

	logger.Info("Serving on stdio",
		zap.Int("modules", len(pol.Modules)),
		zap.Int("default_radius", cfg.Atlas.DefaultRadius),
		zap.Int("max_tokens", cfg.Atlas.MaxTokens))

	if err := srv.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
