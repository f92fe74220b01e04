package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RunjeethNikam/braintrain/internal/models"
)

// pingCmd represents the ping command
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity to the backend",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runPing(cmd); err != nil {
			fmt.Printf("Backend unreachable: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	var resp models.PingResponse
	if err := a.client.Get(cmd.Context(), "/test/hello", &resp); err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", resp.Message, resp.Timestamp)
	return nil
}
