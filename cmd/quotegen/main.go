// Package main provides quotegen, the offline companion of the quotes service.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quotegen",
		Short: "Render quotations and maintain the quotes database",
		Long: `quotegen renders quotation workbooks from JSON payloads without the HTTP
server and manages the numbering and conditions tables.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newRenderCmd(), newRenderBatchCmd(), newDBCmd())
	return rootCmd
}
