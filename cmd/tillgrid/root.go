package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tillgrid",
	Short: "tillgrid is a session server for fleets of retail terminals",
	Long: `tillgrid keeps one authoritative live session per point-of-sale terminal,
reconciles pub/sub subscribe events with the session registry, and routes
screens, toasts and incident messages to the right terminal channel.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML configuration file")
}
