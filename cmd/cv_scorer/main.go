// Package main provides the entry point for the CV scoring service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cv_scorer",
	Short: "Asynchronous CV scoring service",
	Long:  "cv_scorer evaluates CVs against job descriptions using LLM-built rubrics, exposing an asynchronous job API and a one-shot CLI mode.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
