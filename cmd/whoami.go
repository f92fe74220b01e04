package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently authenticated user",
	Long: `Displays your identity as recognized by the brain-training backend.

Useful for confirming which account later commands will act on.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runWhoami(cmd); err != nil {
			fmt.Printf("Failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if err := requireAuth(ctx, a); err != nil {
		return err
	}

	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s <%s>\n", user.DisplayName, user.Email)
	fmt.Printf("User ID: %s\n", user.ID)
	if user.IsSubscribed {
		fmt.Println("Subscription: premium")
	} else {
		fmt.Println("Subscription: free tier")
	}
	return nil
}
