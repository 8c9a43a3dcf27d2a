package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/planner/internal/cli"
	httpAdapter "github.com/aretw0/planner/pkg/adapters/http"
	"github.com/aretw0/planner/pkg/observability"
	"github.com/aretw0/planner/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves workspaces over a JSON API. Every edit goes through the workspace lock,
history changes are streamed over SSE and journal metrics are exposed on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		settleEvery, _ := cmd.Flags().GetDuration("settle-interval")
		if err := cli.ValidateSettleInterval(settleEvery); err != nil {
			return err
		}
		logger := newLogger(cmd)

		reg := prometheus.NewRegistry()
		opts := workspaceOptions(cmd)
		opts.Metrics = observability.NewMetrics(reg)
		opts.SettleDelay, _ = cmd.Flags().GetDuration("settle-delay")
		opts.RedisAddr, _ = cmd.Flags().GetString("redis-addr")
		opts.RedisPassword, _ = cmd.Flags().GetString("redis-password")
		opts.RedisDB, _ = cmd.Flags().GetInt("redis-db")
		opts.RedisPrefix, _ = cmd.Flags().GetString("redis-prefix")

		sessions := session.NewManager(cli.NewFactory(opts, logger), session.WithLogger(logger))
		handler := httpAdapter.NewHandler(sessions,
			httpAdapter.WithGatherer(reg),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := cli.RunSettler(ctx, sessions, settleEvery, logger); err != nil {
				logger.Error("Settler stopped", "err", err)
			}
		}()

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Planner Server on %s\n", srv.Addr)
			if opts.RedisAddr != "" {
				fmt.Printf("Registries stored in Redis at %s\n", opts.RedisAddr)
			}
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)
			cancel()

			// Give outstanding requests a deadline for completion.
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			for _, id := range sessions.List() {
				_ = sessions.Delete(shutdownCtx, id)
			}
			fmt.Println("Planner Server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Duration("settle-delay", 300*time.Millisecond, "Delay before coverage is recomputed after an edit")
	serveCmd.Flags().Duration("settle-interval", 100*time.Millisecond, "How often deferred work is advanced")
	serveCmd.Flags().String("redis-addr", "", "Store registries in Redis at this address")
	serveCmd.Flags().String("redis-password", "", "Redis password")
	serveCmd.Flags().Int("redis-db", 0, "Redis database")
	serveCmd.Flags().String("redis-prefix", cli.DefaultRedisPrefix, "Key prefix for workspace registries")
}
