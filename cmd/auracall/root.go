package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "auracall",
	Short: "Auracall - streaming conversation gateway for medical voice chat",
	Long: `Auracall orchestrates conversational sessions between an HTTP front end
and LLM backends.

It provides:
  - Per-session conversation state with automatic history truncation
  - Token-by-token SSE relaying to clients
  - Automatic backend failover after consecutive errors
  - A feedback-driven prompt adaptation loop
  - Optional knowledge retrieval enrichment`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}
