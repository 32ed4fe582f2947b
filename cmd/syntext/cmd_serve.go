package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/syntpump/syntext/batch"
	"github.com/syntpump/syntext/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	var workers int
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("workers") {
				cfg.Server.Workers = workers
			}
			if len(origins) > 0 {
				cfg.Server.AllowedOrigins = origins
			}

			p, err := newParser(cfg)
			if err != nil {
				return err
			}
			runner := batch.New(p, cfg.Server.Workers)
			defer runner.Close()

			srv := &http.Server{
				Addr:    cfg.Server.Addr,
				Handler: server.New(p, runner, server.Options{AllowedOrigins: cfg.Server.AllowedOrigins}),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			displayAddr := cfg.Server.Addr
			if strings.HasPrefix(displayAddr, ":") {
				displayAddr = "localhost" + displayAddr
			}
			fmt.Printf("Starting server at http://%s\n", displayAddr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "sentences parsed in parallel per batch")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "allowed CORS origins (default: any)")

	return cmd
}
