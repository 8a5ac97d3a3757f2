package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/xcallback"
	"github.com/aretw0/xcallback/internal/cli"
	"github.com/aretw0/xcallback/internal/presentation/tui"
	xhttp "github.com/aretw0/xcallback/pkg/adapters/http"
	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <provider|scheme> <action> [key=value...]",
	Short: "Launch an action in another application",
	Long: `Launches the request through the OS opener (or the HTTP buses given with
--route). With --wait the command blocks until the target answers; --listen
starts an HTTP bus so that 'xcallback deliver' can forward the callback URL
into this process.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		wait, _ := cmd.Flags().GetBool("wait")
		listen, _ := cmd.Flags().GetString("listen")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		logger := cli.CreateLogger(opts.Debug)
		catalog, err := cli.LoadCatalog(opts.CatalogPath)
		if err != nil {
			return err
		}
		target, err := cli.ParseTarget(catalog, args)
		if err != nil {
			return err
		}
		m, err := cli.NewManager(opts, logger)
		if err != nil {
			return err
		}

		ctx, stop := cli.SignalContext(context.Background())
		defer stop()

		client := &xcallback.Client{Scheme: target.Scheme, Manager: m}
		if !wait {
			if err := client.Perform(ctx, target.Action, target.Params, nil); err != nil {
				return err
			}
			cli.PrintSystemMessage(cmd.ErrOrStderr(), "Sent '%s' to %s.", target.Action, target.Scheme)
			return nil
		}

		if m.CallbackScheme() == "" {
			return errors.New("--wait needs --callback-scheme")
		}
		if listen != "" {
			closeBus, err := listenBus(ctx, m, listen)
			if err != nil {
				return err
			}
			defer closeBus()
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		reply, err := client.Call(callCtx, target.Action, target.Params)
		var perr *domain.Error
		switch {
		case errors.As(err, &perr):
			tui.PrintOutcome(cmd.OutOrStdout(), domain.Failure(perr))
			return fmt.Errorf("%s failed", target.Action)
		case err != nil:
			return err
		case reply.Cancelled:
			tui.PrintOutcome(cmd.OutOrStdout(), domain.Cancelled())
		default:
			tui.PrintOutcome(cmd.OutOrStdout(), domain.Success(reply.Data))
		}
		return nil
	},
}

// listenBus serves the HTTP bus for m on addr until stop is called.
func listenBus(ctx context.Context, m *xcallback.Manager, addr string) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: xhttp.NewHandler(m)}
	go func() { _ = srv.Serve(ln) }()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().Bool("wait", false, "Wait for the response")
	sendCmd.Flags().String("listen", "", "Address of an HTTP bus receiving the response (e.g. 127.0.0.1:8338)")
	sendCmd.Flags().Duration("timeout", 2*time.Minute, "How long to wait for the response")
}
