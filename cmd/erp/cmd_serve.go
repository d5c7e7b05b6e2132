package main

import (
	"context"
	"fmt"

	"agenticerp/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serves the router and the reporter over HTTP until interrupted.

Endpoints:
  POST /api/v1/route          classify {"text": ...}
  POST /api/v1/ask            classify and dispatch {"text": ...}
  GET  /api/v1/reports/{kind} sales, customer, product, financial or all
  GET  /api/v1/tables         list tables
  GET  /health                store health
  GET  /metrics               Prometheus metrics`,
	RunE: runServe,
}

// infoCmd prints system information
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system information and available agents",
	RunE:  runInfo,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overrides config")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sys, err := bootSystem(ctx)
	if err != nil {
		return err
	}
	defer sys.Close()

	addr := sys.Config.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(addr, server.Deps{
		Router:   sys.Router,
		Reports:  sys.Reporter,
		Tables:   sys.Store,
		Shutdown: sys.Config.GetShutdownTimeout(),
	})
	logger.Info("Starting HTTP API", zap.String("addr", addr))
	fmt.Printf("Serving on %s\n", addr)
	return srv.Run(ctx)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sys, err := bootSystem(ctx)
	if err != nil {
		return err
	}
	defer sys.Close()

	info, err := sys.Info(ctx)
	if err != nil {
		fmt.Printf("Error getting system info: %v\n", err)
		return nil
	}
	fmt.Print(info.String())
	return nil
}
