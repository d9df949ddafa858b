// Package app provides the edge-rag server application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kart-io/edge-rag/cmd/edge-rag/app/options"
	"github.com/kart-io/edge-rag/internal/edgerag"
	"github.com/kart-io/edge-rag/pkg/app"
)

const commandDesc = `Edge RAG request handler

An edge-deployed retrieval-augmented generation service.

This server provides:
  - Question answering over a Milvus vector index with two-stage prompt synthesis
  - Raw similarity retrieval for debugging and tooling
  - Batch vector ingestion and single-fact injection
  - A shared fixed-window rate limiter over Redis`

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	return app.NewApp(
		app.WithName(edgerag.Name),
		app.WithShortDescription("Edge RAG request handler"),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx := setupSignalContext()

		server, err := cfg.NewServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		return server.Run(ctx)
	}
}

// setupSignalContext returns a context that is cancelled on SIGINT or
// SIGTERM. A second signal exits immediately.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
