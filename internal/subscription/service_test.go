package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/RunjeethNikam/braintrain/internal/api"
)

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := api.NewClient(api.Config{
		BaseURL:   server.URL,
		AppOrigin: "http://localhost",
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewService(client, nil)
}

func TestPlans(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/subscription/plans", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"success": true,
			"plans": {
				"monthly": {"id": "monthly", "name": "Monthly", "price": 9.99, "interval": "month", "features": ["Unlimited games"]},
				"yearly": {"id": "yearly", "name": "Yearly", "price": 99.99, "interval": "year", "features": ["Unlimited games"], "savings": "17%"}
			}
		}`)
	}).Methods(http.MethodGet)

	svc := newTestService(t, r)
	resp, err := svc.Plans(context.Background())
	if err != nil {
		t.Fatalf("Plans: %v", err)
	}
	if resp.Plans.Monthly.Price != 9.99 || resp.Plans.Yearly.Savings != "17%" {
		t.Errorf("plans = %+v", resp.Plans)
	}
}

func TestCreateCheckoutUppercasesPlan(t *testing.T) {
	var sentPlan string
	r := mux.NewRouter()
	r.HandleFunc("/subscription/create-checkout", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		json.NewDecoder(req.Body).Decode(&body)
		sentPlan = body["plan"]
		fmt.Fprint(w, `{"success": true, "checkoutUrl": "https://pay.example.com/cs_123"}`)
	}).Methods(http.MethodPost)

	svc := newTestService(t, r)
	resp, err := svc.CreateCheckout(context.Background(), "monthly")
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if sentPlan != "MONTHLY" {
		t.Errorf("plan on the wire = %q, want MONTHLY", sentPlan)
	}
	if resp.CheckoutURL != "https://pay.example.com/cs_123" {
		t.Errorf("CheckoutURL = %q", resp.CheckoutURL)
	}
}

func TestCheckoutRejectsSuccessWithoutURL(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/subscription/create-checkout", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"success": true, "checkoutUrl": ""}`)
	}).Methods(http.MethodPost)

	svc := newTestService(t, r)
	_, err := svc.CreateCheckout(context.Background(), "yearly")
	if err == nil {
		t.Fatal("checkout succeeded without a URL")
	}
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *api.APIError", err)
	}
	if apiErr.Message != "Invalid response from server" || apiErr.Status != http.StatusInternalServerError {
		t.Errorf("err = %+v", apiErr)
	}
}

func TestReactivateUsesItsOwnEndpoint(t *testing.T) {
	var hit string
	r := mux.NewRouter()
	r.HandleFunc("/subscription/reactivate", func(w http.ResponseWriter, req *http.Request) {
		hit = req.URL.Path
		fmt.Fprint(w, `{"success": true, "checkoutUrl": "https://pay.example.com/cs_456"}`)
	}).Methods(http.MethodPost)

	svc := newTestService(t, r)
	if _, err := svc.Reactivate(context.Background(), "yearly"); err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if hit != "/subscription/reactivate" {
		t.Errorf("endpoint = %q", hit)
	}
}

func TestCancel(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/subscription/cancel", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"success": true, "message": "Subscription will end on 2026-09-30"}`)
	}).Methods(http.MethodPost)

	svc := newTestService(t, r)
	resp, err := svc.Cancel(context.Background())
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !resp.Success || resp.Message == "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestOverviewFetchesInParallel(t *testing.T) {
	var (
		mu       sync.Mutex
		inFlight int
		peak     int
	)
	track := func(next func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()

			time.Sleep(50 * time.Millisecond)
			next(w, req)

			mu.Lock()
			inFlight--
			mu.Unlock()
		}
	}

	r := mux.NewRouter()
	r.HandleFunc("/subscription/plans", track(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"success": true, "plans": {"monthly": {"id": "monthly"}, "yearly": {"id": "yearly"}}}`)
	})).Methods(http.MethodGet)
	r.HandleFunc("/subscription/status", track(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"success": true, "hasSubscription": true,
			"subscription": {"id": "sub_1", "plan": "MONTHLY", "isActive": true, "status": "active"}
		}`)
	})).Methods(http.MethodGet)

	svc := newTestService(t, r)
	plans, status, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if plans.Plans.Monthly.ID != "monthly" {
		t.Errorf("plans = %+v", plans.Plans)
	}
	if status.Subscription == nil || !status.Subscription.IsActive {
		t.Errorf("status = %+v", status)
	}

	mu.Lock()
	defer mu.Unlock()
	if peak != 2 {
		t.Errorf("peak concurrent requests = %d, want 2", peak)
	}
}

func TestOverviewPropagatesStatusFailure(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/subscription/plans", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"success": true, "plans": {"monthly": {"id": "monthly"}, "yearly": {"id": "yearly"}}}`)
	}).Methods(http.MethodGet)
	r.HandleFunc("/subscription/status", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "Authentication required"}`)
	}).Methods(http.MethodGet)

	svc := newTestService(t, r)
	_, _, err := svc.Overview(context.Background())
	if err == nil {
		t.Fatal("Overview ignored the status failure")
	}
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Authentication required" {
		t.Errorf("err = %v", err)
	}
}
