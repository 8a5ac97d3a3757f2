package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/xcallback/internal/cli"
	"github.com/aretw0/xcallback/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Model Context Protocol server",
	Long: `Exposes the build_url, perform_action and list_providers tools plus the
xcallback://pending resource over MCP. Use --listen together with
--callback-scheme so that perform_action can wait for responses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		listen, _ := cmd.Flags().GetString("listen")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		// stdout belongs to the protocol in stdio mode.
		logger := cli.CreateServerLogger(cmd.ErrOrStderr(), opts.Debug)

		catalog, err := cli.LoadCatalog(opts.CatalogPath)
		if err != nil {
			return err
		}
		m, err := cli.NewManager(opts, logger)
		if err != nil {
			return err
		}

		ctx, stop := cli.SignalContext(context.Background())
		defer stop()

		if listen != "" {
			closeBus, err := listenBus(ctx, m, listen)
			if err != nil {
				return err
			}
			defer closeBus()
		}

		srv := mcp.NewServer(m, catalog, mcp.WithTimeout(timeout), mcp.WithLogger(logger))
		switch transport {
		case "stdio":
			return srv.ServeStdio()
		case "sse":
			return srv.ServeSSE(ctx, port)
		default:
			return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().Int("port", 8080, "Port for the SSE transport")
	mcpCmd.Flags().String("listen", "", "Address of an HTTP bus receiving callbacks")
	mcpCmd.Flags().Duration("timeout", time.Minute, "Default wait for perform_action")
}
