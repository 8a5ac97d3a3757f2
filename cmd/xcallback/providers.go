package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/xcallback/internal/cli"
	"github.com/aretw0/xcallback/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect the provider catalog",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := cli.LoadCatalog(options(cmd).CatalogPath)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSCHEME\tACTIONS")
		for _, p := range catalog.List() {
			names := make([]string, 0, len(p.Actions))
			for _, a := range p.Actions {
				names = append(names, a.Name)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Scheme, strings.Join(names, ","))
		}
		return tw.Flush()
	},
}

var providersShowCmd = &cobra.Command{
	Use:   "show <provider>",
	Short: "Describe the actions of a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := cli.LoadCatalog(options(cmd).CatalogPath)
		if err != nil {
			return err
		}
		p, err := catalog.Lookup(args[0])
		if err != nil {
			return err
		}
		return tui.PrintProvider(cmd.OutOrStdout(), p)
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.AddCommand(providersListCmd, providersShowCmd)
}
