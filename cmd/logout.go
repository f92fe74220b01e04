package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of the current session",
	Long: `Ends the backend session (best-effort) and removes the locally stored
session token. Sign-out always succeeds locally even when the backend call
fails.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runLogout(cmd); err != nil {
			fmt.Printf("Sign-out failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	// Best-effort server-side logout; local sign-out happens regardless.
	a.auth.Logout(ctx)
	a.store.ClearAuth()

	fmt.Println("Signed out.")
	return nil
}
