package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RunjeethNikam/braintrain/internal/models"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show your progress across all games",
	Long: `Displays your per-game progress, remaining free games and the global
leaderboard summary for every game type.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDashboard(cmd); err != nil {
			fmt.Printf("Failed to load dashboard: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command) error {
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

	fmt.Printf("Dashboard for %s\n", user.DisplayName)
	fmt.Println("========================")

	for _, gameType := range []models.GameType{models.MemoryFlash, models.QuickMath} {
		info := models.Games[gameType]
		fmt.Printf("\n%s %s\n", info.Icon, info.Name)

		if progress, ok := user.GameProgress[string(gameType)]; ok {
			fmt.Printf("  Level %d, %d games played, best score %.2f\n",
				progress.Difficulty, progress.TotalGames, progress.BestScore)
		} else {
			fmt.Println("  Not played yet")
		}

		if remaining, err := a.games.RemainingGames(ctx, gameType); err == nil {
			if remaining.IsSubscribed {
				fmt.Println("  Free games: unlimited (premium)")
			} else {
				fmt.Printf("  Free games left: %d\n", remaining.RemainingGames)
			}
		} else {
			a.log.Warnf("failed to fetch remaining games for %s: %v", gameType, err)
		}

		if stats, err := a.games.LeaderboardStats(ctx, gameType); err == nil {
			fmt.Printf("  Leaderboard: %d players, top %.2f, average %.2f\n",
				stats.TotalPlayers, stats.TopScore, stats.AverageScore)
		}
	}

	if !user.IsSubscribed {
		fmt.Println("\nUpgrade with 'braintrain subscription subscribe yearly' for unlimited games.")
	}
	return nil
}
