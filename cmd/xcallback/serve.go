package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/xcallback"
	"github.com/aretw0/xcallback/internal/cli"
	"github.com/aretw0/xcallback/internal/presentation/tui"
	xhttp "github.com/aretw0/xcallback/pkg/adapters/http"
	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/observability"
	"github.com/aretw0/xcallback/pkg/registry"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP bus",
	Long: `Serves POST /open so that inbound x-callback-url requests and responses
reach this process. Optional endpoints expose Prometheus metrics (/metrics)
and a Server-Sent Events feed of lifecycle events (/events).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		addr, _ := cmd.Flags().GetString("addr")
		withMetrics, _ := cmd.Flags().GetBool("metrics")
		withEvents, _ := cmd.Flags().GetBool("events")
		echo, _ := cmd.Flags().GetBool("echo")

		logger := cli.CreateServerLogger(cmd.ErrOrStderr(), opts.Debug)

		var (
			metrics *observability.Metrics
			events  *xhttp.EventStream
			hooks   = []domain.LifecycleHooks{observability.LogHooks(logger)}
			m       *xcallback.Manager
		)
		if withMetrics {
			metrics = observability.NewMetrics(func() int { return m.Pending().Len() })
			hooks = append(hooks, metrics.Hooks())
		}
		if withEvents {
			events = xhttp.NewEventStream()
			hooks = append(hooks, events.Hooks())
		}

		m, err := cli.NewManager(opts, logger, xcallback.WithLifecycleHooks(observability.Combine(hooks...)))
		if err != nil {
			return err
		}
		if echo {
			m.HandleAction("echo", registry.Func(func(ctx context.Context, params domain.Parameters) domain.Result {
				return domain.Success(params.WithoutProtocolKeys())
			}))
		}

		handlerOpts := []xhttp.HandlerOption{xhttp.WithLogger(logger)}
		if metrics != nil {
			handlerOpts = append(handlerOpts, xhttp.WithMetrics(metrics.Handler()))
		}
		if events != nil {
			handlerOpts = append(handlerOpts, xhttp.WithEvents(events))
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: xhttp.NewHandler(m, handlerOpts...),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			tui.PrintBanner(cmd.ErrOrStderr(), xcallback.Version)
			logger.Info("Starting xcallback bus", "addr", srv.Addr, "actions", m.Actions())
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("could not stop server gracefully: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "127.0.0.1:8337", "Address to listen on")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
	serveCmd.Flags().Bool("events", false, "Stream lifecycle events on /events")
	serveCmd.Flags().Bool("echo", false, "Register an 'echo' action that returns its parameters")
}
