package main

import (
	"fmt"

	"github.com/aretw0/xcallback"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of xcallback",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "xcallback version %s\n", xcallback.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
