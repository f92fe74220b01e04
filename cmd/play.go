package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RunjeethNikam/braintrain/internal/game"
	"github.com/RunjeethNikam/braintrain/internal/models"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play [memory|math]",
	Short: "Play a brain-training game",
	Long: `Starts an interactive round of the chosen game.

The memory game flashes a set of icons for a few seconds; memorize them, then
pick them back out of a larger choice grid.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runPlay(cmd, args[0]); err != nil {
			fmt.Printf("Game over: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, name string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if err := requireAuth(ctx, a); err != nil {
		return err
	}

	switch strings.ToLower(name) {
	case "memory":
		return playMemory(ctx, a)
	case "math":
		return fmt.Errorf("%s is not playable from the CLI yet", models.Games[models.QuickMath].Name)
	default:
		return fmt.Errorf("unknown game %q, expected memory or math", name)
	}
}

func playMemory(ctx context.Context, a *app) error {
	session := game.NewMemorySession(a.games, a.log)
	in := bufio.NewReader(os.Stdin)

	for {
		if err := startRound(ctx, session, in); err != nil {
			return err
		}
		if session.State() != game.StateReady {
			return nil
		}

		handle := session.Handle()
		info := models.Games[models.MemoryFlash]
		fmt.Printf("\n%s %s - %s (level %d)\n", info.Icon, info.Name, handle.DifficultyDescription, handle.Difficulty)
		if !handle.IsSubscribed {
			fmt.Printf("Free games left after this one: %d\n", handle.RemainingFreeGames)
		}
		fmt.Printf("Memorize %d icons in %d seconds, then pick them from %d choices.\n",
			handle.Params.ItemCount, handle.Params.DisplayTimeSeconds, handle.Params.ChoiceCount)
		fmt.Print("Press Enter to start (or q to quit): ")

		line, _ := in.ReadString('\n')
		if strings.TrimSpace(line) == "q" {
			return nil
		}

		if err := session.Begin(); err != nil {
			return err
		}
		runCountdown(session)

		if err := runTestPhase(ctx, a, session, in); err != nil {
			return err
		}
		if session.State() != game.StateResults {
			return nil
		}

		printResults(session, handle)

		fmt.Print("\nPlay again? (y/N): ")
		line, _ = in.ReadString('\n')
		if strings.TrimSpace(strings.ToLower(line)) != "y" {
			return nil
		}
		if err := session.PlayAgain(ctx); err == nil {
			continue
		}
		// PlayAgain lands in the error state; the retry loop handles it.
	}
}

// startRound drives loading, with the error state's retry/abandon recovery.
func startRound(ctx context.Context, session *game.MemorySession, in *bufio.Reader) error {
	if session.State() == game.StateReady {
		return nil
	}
	for {
		if session.State() != game.StateError {
			if err := session.Start(ctx); err == nil {
				return nil
			}
		}
		fmt.Printf("\n%s\n", session.ErrorMessage())
		fmt.Print("Try again? (y/N): ")
		line, _ := in.ReadString('\n')
		if strings.TrimSpace(strings.ToLower(line)) != "y" {
			return nil
		}
		if err := session.Start(ctx); err == nil {
			return nil
		}
	}
}

// runCountdown shows the memorize icons until the countdown flips to test.
func runCountdown(session *game.MemorySession) {
	fmt.Printf("\nMemorize:  %s\n", strings.Join(session.Items(), "  "))

	last := -1
	for session.State() == game.StateMemorize {
		if left := session.TimeLeft(); left != last {
			fmt.Printf("\r%2d seconds left... ", left)
			last = left
		}
		time.Sleep(100 * time.Millisecond)
	}
	// Push the memorized icons off-screen.
	fmt.Print(strings.Repeat("\n", 40))
	fmt.Println("Time's up!")
}

// runTestPhase collects selections until submit or quit.
func runTestPhase(ctx context.Context, a *app, session *game.MemorySession, in *bufio.Reader) error {
	handle := session.Handle()
	choices := session.Choices()

	for session.State() == game.StateTest {
		fmt.Println("\nWhich icons did you see?")
		selected := map[string]bool{}
		for _, item := range session.Selected() {
			selected[item] = true
		}
		for i, item := range choices {
			marker := " "
			if selected[item] {
				marker = "*"
			}
			fmt.Printf("  [%s] %d. %s\n", marker, i+1, item)
		}
		fmt.Printf("Selected %d of %d. ", len(selected), handle.Params.ItemCount)
		if session.CanSubmit() {
			fmt.Print("Enter a number to toggle, s to submit, q to quit: ")
		} else {
			fmt.Print("Enter a number to toggle, q to quit: ")
		}

		line, err := in.ReadString('\n')
		if err != nil {
			session.Abandon(ctx)
			return nil
		}

		switch input := strings.TrimSpace(strings.ToLower(line)); input {
		case "q":
			session.Abandon(ctx)
			return nil
		case "s":
			if !session.CanSubmit() {
				fmt.Printf("Select exactly %d icons before submitting.\n", handle.Params.ItemCount)
				continue
			}
			if _, err := session.Submit(ctx); err != nil {
				fmt.Printf("Failed to submit answers: %v\n", err)
				continue
			}
		default:
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 || n > len(choices) {
				fmt.Println("Enter a choice number, s, or q.")
				continue
			}
			session.Toggle(choices[n-1])
		}
	}
	return nil
}

// printResults renders the backend-authoritative result.
func printResults(session *game.MemorySession, handle *game.Handle) {
	results := session.Results()
	grade := game.DisplayGrade(results.Score)

	fmt.Println("\nResults")
	fmt.Println("=======")
	fmt.Printf("Score: %.2f  Grade: %s %s\n", results.Score, grade.Grade, grade.Emoji)
	fmt.Printf("Accuracy: %.1f%% (%d of %d)\n", results.Accuracy, results.CorrectAnswers, results.TotalQuestions)
	fmt.Printf("Global rank: #%d\n", results.GlobalRank)
	if results.IsNewPersonalBest {
		fmt.Println("New personal best!")
	}

	local := game.CalculateScore(game.ScoreInput{
		CorrectAnswers:    results.CorrectAnswers,
		TotalQuestions:    results.TotalQuestions,
		DurationInSeconds: results.DurationInSeconds,
		Difficulty:        results.Difficulty,
		GameType:          models.MemoryFlash,
	})
	for _, tip := range game.PerformanceTips(local, models.MemoryFlash) {
		fmt.Printf("  Tip: %s\n", tip)
	}

	if results.RequiresSubscription {
		fmt.Println("\nYou're out of free games. Subscribe to keep playing:")
		fmt.Println("  braintrain subscription subscribe yearly")
	} else if !handle.IsSubscribed {
		fmt.Printf("\nFree games left: %d\n", results.RemainingFreeGames)
	}
}
