package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with your Google account",
	Long: `Signs you into the brain-training backend using a Google ID token and
stores the resulting session token so later commands stay authenticated.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runLogin(cmd); err != nil {
			fmt.Printf("Sign-in failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	// Startup validation first: a still-valid stored session needs no work.
	a.store.InitializeAuth(ctx)
	if state := a.store.State(); state.Authenticated {
		fmt.Printf("Already signed in as %s.\n", state.User.Email)
		return nil
	}

	a.store.SetLoading(true)

	idToken, err := a.identity.SignIn(ctx)
	if err != nil {
		a.store.SetError("Sign-in was not completed.")
		return err
	}

	resp, err := a.auth.GoogleSignIn(ctx, idToken)
	if err != nil {
		a.store.SetError(err.Error())
		return err
	}

	if err := a.store.SetUser(resp.User, resp.Token); err != nil {
		return fmt.Errorf("signed in but failed to store session: %w", err)
	}
	a.store.SetLoading(false)

	fmt.Printf("Welcome, %s!\n", resp.User.DisplayName)
	if resp.User.IsSubscribed {
		fmt.Println("Premium subscription active.")
	}
	return nil
}
