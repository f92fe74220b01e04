package subscription

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"strings"

	"github.com/RunjeethNikam/braintrain/internal/api"
	"github.com/RunjeethNikam/braintrain/internal/logging"
	"github.com/RunjeethNikam/braintrain/internal/models"
)

// Navigator performs the full-page redirect to a hosted checkout page.
// Control does not return until the payment flow redirects back.
type Navigator interface {
	Open(url string) error
}

// BrowserNavigator opens the URL with the platform browser opener.
type BrowserNavigator struct{}

func (BrowserNavigator) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// Service is the thin subscription facade over the API client.
type Service struct {
	client *api.Client
	log    *logging.Logger
}

// NewService creates the subscription service.
func NewService(client *api.Client, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Default()
	}
	return &Service{client: client, log: log}
}

// Plans fetches the available subscription plans.
func (s *Service) Plans(ctx context.Context) (*models.PlansResponse, error) {
	var resp models.PlansResponse
	if err := s.client.Get(ctx, "/subscription/plans", &resp); err != nil {
		return nil, normalize(err, "Failed to get subscription plans")
	}
	return &resp, nil
}

// Status fetches the user's current subscription status.
func (s *Service) Status(ctx context.Context) (*models.SubscriptionStatusResponse, error) {
	var resp models.SubscriptionStatusResponse
	if err := s.client.Get(ctx, "/subscription/status", &resp); err != nil {
		return nil, normalize(err, "Failed to get subscription status")
	}
	return &resp, nil
}

// Overview fetches plans and status as independent, parallel calls.
func (s *Service) Overview(ctx context.Context) (*models.PlansResponse, *models.SubscriptionStatusResponse, error) {
	var (
		plans    *models.PlansResponse
		status   *models.SubscriptionStatusResponse
		plansErr error
		statErr  error
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		status, statErr = s.Status(ctx)
	}()
	plans, plansErr = s.Plans(ctx)
	<-done

	if plansErr != nil {
		return nil, nil, plansErr
	}
	if statErr != nil {
		return nil, nil, statErr
	}
	return plans, status, nil
}

// CreateCheckout posts the plan identifier and returns the hosted checkout
// URL. A success response with an empty URL is a failure, never a no-op.
func (s *Service) CreateCheckout(ctx context.Context, plan string) (*models.CheckoutResponse, error) {
	return s.checkout(ctx, "/subscription/create-checkout", plan, "Failed to create checkout session")
}

// Reactivate restarts a lapsed subscription through a new checkout session.
func (s *Service) Reactivate(ctx context.Context, plan string) (*models.CheckoutResponse, error) {
	return s.checkout(ctx, "/subscription/reactivate", plan, "Failed to reactivate subscription")
}

func (s *Service) checkout(ctx context.Context, path, plan, fallback string) (*models.CheckoutResponse, error) {
	var resp models.CheckoutResponse
	body := map[string]string{"plan": strings.ToUpper(plan)}
	if err := s.client.Post(ctx, path, body, &resp); err != nil {
		return nil, normalize(err, fallback)
	}
	if !resp.Success || resp.CheckoutURL == "" {
		return nil, &api.APIError{Message: "Invalid response from server", Status: http.StatusInternalServerError}
	}
	return &resp, nil
}

// Cancel cancels the current subscription.
func (s *Service) Cancel(ctx context.Context) (*models.CancelResponse, error) {
	var resp models.CancelResponse
	if err := s.client.Post(ctx, "/subscription/cancel", nil, &resp); err != nil {
		return nil, normalize(err, "Failed to cancel subscription")
	}
	return &resp, nil
}

func normalize(err error, fallback string) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &api.APIError{Message: fallback, Status: http.StatusInternalServerError}
}
