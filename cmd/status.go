package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/RunjeethNikam/braintrain/internal/authn"
)

var (
	statusJSON bool
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status",
	Long:  `Displays the current session status including stored token validity and the signed-in user.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showSessionStatus(cmd); err != nil {
			fmt.Printf("Failed to get status: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output status in JSON format")
}

// sessionStatus is the status report shape.
type sessionStatus struct {
	Initialized    bool       `json:"initialized"`
	Authenticated  bool       `json:"authenticated"`
	HasStoredToken bool       `json:"has_stored_token"`
	Email          string     `json:"email,omitempty"`
	DisplayName    string     `json:"display_name,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// showSessionStatus runs startup validation and reports the outcome.
func showSessionStatus(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	a.store.InitializeAuth(cmd.Context())
	state := a.store.State()

	status := sessionStatus{
		Initialized:   state.Initialized,
		Authenticated: state.Authenticated,
		Error:         state.Err,
	}
	if state.User != nil {
		status.Email = state.User.Email
		status.DisplayName = state.User.DisplayName
	}

	if token, err := a.tokens.Load(); err == nil && token != "" {
		status.HasStoredToken = true
		// Local, unverified peek for display; validity stays server-decided.
		if claims, err := authn.PeekClaims(token); err == nil && !claims.ExpiresAt.IsZero() {
			status.TokenExpiresAt = &claims.ExpiresAt
		}
	}

	if statusJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(status)
	}

	fmt.Println("Session Status:")
	fmt.Println("===============")

	if status.Authenticated {
		fmt.Printf("Signed in as %s <%s>\n", status.DisplayName, status.Email)
	} else {
		fmt.Println("Not signed in")
	}

	if status.HasStoredToken {
		fmt.Println("  Stored token: present")
		if status.TokenExpiresAt != nil {
			fmt.Printf("     Expires: %s\n", status.TokenExpiresAt.Format("2006-01-02 15:04:05"))
		}
	} else {
		fmt.Println("  Stored token: missing")
	}

	if status.Error != "" {
		fmt.Printf("  Last error: %s\n", status.Error)
	}

	if !status.Authenticated {
		fmt.Println()
		fmt.Println("Run 'braintrain login' to sign in.")
	}
	return nil
}
