package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RunjeethNikam/braintrain/internal/models"
)

// subscriptionCmd groups the subscription verbs.
var subscriptionCmd = &cobra.Command{
	Use:   "subscription",
	Short: "Manage your premium subscription",
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Show available plans and your current subscription",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runPlans(cmd); err != nil {
			fmt.Printf("Failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe [monthly|yearly]",
	Short: "Start a subscription through the hosted checkout page",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSubscribe(cmd, args[0], false); err != nil {
			fmt.Printf("Failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var reactivateCmd = &cobra.Command{
	Use:   "reactivate [monthly|yearly]",
	Short: "Reactivate a lapsed subscription",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSubscribe(cmd, args[0], true); err != nil {
			fmt.Printf("Failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel your subscription",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCancel(cmd); err != nil {
			fmt.Printf("Failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(subscriptionCmd)
	subscriptionCmd.AddCommand(plansCmd)
	subscriptionCmd.AddCommand(subscribeCmd)
	subscriptionCmd.AddCommand(reactivateCmd)
	subscriptionCmd.AddCommand(cancelCmd)
}

func runPlans(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if err := requireAuth(ctx, a); err != nil {
		return err
	}

	plans, status, err := a.subs.Overview(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Plans:")
	printPlan(plans.Plans.Monthly)
	printPlan(plans.Plans.Yearly)

	fmt.Println()
	if status.HasSubscription && status.Subscription != nil {
		sub := status.Subscription
		fmt.Printf("Current: %s (%s) - %.2f %s, renews %s\n",
			sub.PlanName, sub.Status, sub.Amount, sub.Currency, sub.NextBillingDate)
	} else {
		fmt.Println("No active subscription.")
	}
	return nil
}

func printPlan(plan models.SubscriptionPlan) {
	fmt.Printf("  %s - $%.2f / %s", plan.Name, plan.Price, plan.Interval)
	if plan.Savings != "" {
		fmt.Printf(" (%s)", plan.Savings)
	}
	fmt.Println()
	for _, feature := range plan.Features {
		fmt.Printf("    - %s\n", feature)
	}
}

func runSubscribe(cmd *cobra.Command, plan string, reactivate bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if err := requireAuth(ctx, a); err != nil {
		return err
	}

	checkout, err := checkoutFor(cmd, a, plan, reactivate)
	if err != nil {
		return err
	}

	fmt.Printf("Opening checkout: %s\n", checkout.CheckoutURL)
	if err := a.nav.Open(checkout.CheckoutURL); err != nil {
		a.log.Warnf("failed to open browser: %v", err)
		fmt.Println("Open the URL above in your browser to complete payment.")
	}
	fmt.Println("You'll be redirected back once payment completes or is canceled.")
	return nil
}

func checkoutFor(cmd *cobra.Command, a *app, plan string, reactivate bool) (*models.CheckoutResponse, error) {
	if reactivate {
		return a.subs.Reactivate(cmd.Context(), plan)
	}
	return a.subs.CreateCheckout(cmd.Context(), plan)
}

func runCancel(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if err := requireAuth(ctx, a); err != nil {
		return err
	}

	resp, err := a.subs.Cancel(ctx)
	if err != nil {
		return err
	}
	fmt.Println(resp.Message)
	return nil
}
