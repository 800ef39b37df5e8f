package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spssreader",
	Short: "Read and write SPSS system files (.sav)",
	Long: `spssreader inspects and converts SPSS system files: it prints a
file's dictionary and cases, or rewrites one file into another, optionally
changing compression along the way.`,
}

// Execute runs the root command, printing any error and setting a non-zero
// exit status, matching retroio's plain stderr-and-exit error handling.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
