package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RunjeethNikam/braintrain/internal/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("braintrain %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
