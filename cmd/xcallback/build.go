package main

import (
	"fmt"

	"github.com/aretw0/xcallback/internal/cli"
	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <provider|scheme> <action> [key=value...]",
	Short: "Print the x-callback-url for an action",
	Long: `Builds the request URL without launching it. The first argument is a
provider from the catalog (parameters are validated) or a raw URL scheme.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		catalog, err := cli.LoadCatalog(opts.CatalogPath)
		if err != nil {
			return err
		}
		target, err := cli.ParseTarget(catalog, args)
		if err != nil {
			return err
		}

		m, err := cli.NewManager(opts, cli.CreateLogger(opts.Debug))
		if err != nil {
			return err
		}
		u, err := m.BuildURL(&domain.Request{Scheme: target.Scheme, Action: target.Action, Params: target.Params})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), u.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
