package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cv_scorer version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Printf("cv_scorer %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
