package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tillgrid/tillgrid"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tillgrid version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tillgrid %s\n", tillgrid.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
