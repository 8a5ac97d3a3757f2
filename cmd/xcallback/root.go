package main

import (
	"fmt"
	"os"

	"github.com/aretw0/xcallback/internal/cli"
	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "xcallback",
	Short: "xcallback sends and receives x-callback-url actions",
	Long: `xcallback builds x-callback-url requests, launches them through the operating
system or an HTTP bus, and serves actions and responses for other applications.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Bool("debug", false, "Enable debug logging on stderr")
	flags.String("callback-scheme", "", "Scheme this process receives responses on")
	flags.String("app-name", domain.DefaultAppName, "Value sent as x-source")
	flags.String("config", "", "Host configuration file (YAML or JSON)")
	flags.String("catalog", "", "Additional provider catalog (YAML, JSON or TOML)")
	flags.String("journal-dir", "", "Mirror pending requests into this directory")
	flags.String("redis", "", "Mirror pending requests into Redis (redis:// URL)")
	flags.StringToString("route", nil, "Send a scheme to an HTTP bus instead of the OS opener (scheme=http://host:port)")
}

// options reads the persistent flags.
func options(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	debug, _ := flags.GetBool("debug")
	callbackScheme, _ := flags.GetString("callback-scheme")
	appName, _ := flags.GetString("app-name")
	config, _ := flags.GetString("config")
	catalog, _ := flags.GetString("catalog")
	journalDir, _ := flags.GetString("journal-dir")
	redisURL, _ := flags.GetString("redis")
	routes, _ := flags.GetStringToString("route")

	return cli.Options{
		Debug:          debug,
		CallbackScheme: callbackScheme,
		AppName:        appName,
		ConfigPath:     config,
		CatalogPath:    catalog,
		JournalDir:     journalDir,
		RedisURL:       redisURL,
		Routes:         routes,
	}
}
