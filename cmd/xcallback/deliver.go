package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/xcallback/internal/cli"
	xhttp "github.com/aretw0/xcallback/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var deliverCmd = &cobra.Command{
	Use:   "deliver <url>",
	Short: "Forward an inbound URL to a running xcallback bus",
	Long: `Posts the URL to the HTTP bus given with --to. Register this command as the
operating system's handler for your callback scheme so that responses reach
'xcallback serve' or 'xcallback send --wait --listen'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		handled, err := xhttp.Deliver(ctx, &http.Client{}, to, args[0])
		if err != nil {
			return err
		}
		if !handled {
			return errors.New("the bus did not handle the URL")
		}
		cli.PrintSystemMessage(cmd.ErrOrStderr(), "Delivered to %s.", to)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deliverCmd)
	deliverCmd.Flags().String("to", "http://127.0.0.1:8337", "Base URL of the bus")
	deliverCmd.Flags().Duration("timeout", 10*time.Second, "Delivery timeout")
}
