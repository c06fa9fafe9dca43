// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-finder/internal/lookup"
	"github.com/pdiddy/paper-finder/internal/server"
	"github.com/pdiddy/paper-finder/internal/token"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the paper-finder HTTP API",
	Long: `Serve exposes the lookup pipeline over HTTP: POST /api/lookup resolves a
title and first-author last name to the best open-access match and mints a
single-use download token; GET /api/download/{token} streams the full text.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokens := token.NewStore(cfg.Token)
	if cfg.Token.SweepInterval > 0 {
		go tokens.Sweep(ctx, cfg.Token.SweepInterval)
	}

	svc := lookup.New(cfg, tokens)
	srv := server.New(svc, tokens, cfg.Server, cfg.Search.UserAgent)

	err := srv.Run(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
