package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/RunjeethNikam/braintrain/internal/api"
	"github.com/RunjeethNikam/braintrain/internal/authn"
	"github.com/RunjeethNikam/braintrain/internal/config"
	"github.com/RunjeethNikam/braintrain/internal/game"
	"github.com/RunjeethNikam/braintrain/internal/logging"
	"github.com/RunjeethNikam/braintrain/internal/subscription"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "braintrain",
	Short: "Brain training from the command line.",
	Long: `braintrain is the terminal client for the brain-training service: timed
memory and math mini-games, a progress dashboard, and subscription management.

All scoring, session validity and ranking live in the backend; this client
renders results and keeps your signed-in session across runs.

Start with 'braintrain login' to sign in with your Google account.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Load environment variables from .env file when present.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Warning: failed to load .env file: %v\n", err)
	}
}

// app bundles the explicitly constructed, process-wide single instances of
// the client stack. Commands receive it instead of reaching for globals.
type app struct {
	cfg      *config.Config
	log      *logging.Logger
	tokens   authn.TokenStorage
	client   *api.Client
	store    *authn.Store
	auth     *authn.Service
	games    *game.Service
	subs     *subscription.Service
	identity authn.IdentityProvider
	nav      subscription.Navigator
}

var (
	appOnce sync.Once
	appInst *app
	appErr  error
)

// newApp constructs the shared client stack exactly once per process.
func newApp() (*app, error) {
	appOnce.Do(func() {
		appInst, appErr = buildApp()
	})
	return appInst, appErr
}

func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logging.Default()

	tokens, err := authn.NewFileTokenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open token storage: %w", err)
	}

	client, err := api.NewClient(api.Config{
		BaseURL:   cfg.APIBaseURL,
		AppOrigin: cfg.AppOrigin,
		Timeout:   time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		Tokens:    tokens,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	auth := authn.NewService(client, log)

	return &app{
		cfg:    cfg,
		log:    log,
		tokens: tokens,
		client: client,
		store:  authn.NewStore(tokens, auth, log),
		auth:   auth,
		games:  game.NewService(client, log),
		subs:   subscription.NewService(client, log),
		identity: &authn.PromptIdentityProvider{
			ClientID: cfg.GoogleClientID,
			In:       os.Stdin,
			Out:      os.Stdout,
		},
		nav: subscription.BrowserNavigator{},
	}, nil
}

// requireAuth runs startup validation and refuses to proceed for commands
// that render protected content until the store is initialized and
// authenticated.
func requireAuth(ctx context.Context, a *app) error {
	a.store.InitializeAuth(ctx)

	state := a.store.State()
	if state.Err != "" {
		fmt.Println(state.Err)
	}
	if !state.Authenticated {
		return fmt.Errorf("not signed in, run 'braintrain login' first")
	}
	return nil
}
