package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mission"
)

var missionCmd = &cobra.Command{
	Use:   "mission",
	Short: "Record a completed study mission",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, st, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		deckID, _ := cmd.Flags().GetInt64("deck")
		tier, _ := cmd.Flags().GetString("tier")
		seen, _ := cmd.Flags().GetInt("seen")
		correct, _ := cmd.Flags().GetFloat64("correct")
		mode, _ := cmd.Flags().GetString("mode")
		durationMin, _ := cmd.Flags().GetInt("duration")

		level, err := bloom.ParseLevel(tier)
		if err != nil {
			return err
		}

		now := time.Now()
		a := &mission.Attempt{
			LearnerID:    resolveLearner(cmd),
			DeckID:       deckID,
			Level:        level,
			CardsSeen:    seen,
			CardsCorrect: correct,
			Mode:         mission.NormalizeMode(mode),
			StartedAt:    now.Add(-time.Duration(durationMin) * time.Minute),
			EndedAt:      now,
		}

		res, err := eng.CompleteMission(cmd.Context(), a)
		if err != nil {
			return err
		}

		verdict := "FAILED"
		if res.Passed {
			verdict = "PASSED"
		}
		fmt.Printf("Mission %s — score %.1f%%\n", verdict, res.ScorePct)
		if res.RewardSkipped {
			fmt.Println("Reward already credited for this result; skipped.")
		} else {
			fmt.Printf("XP awarded: %d\n", res.XPAwarded)
		}
		if res.UnlockedNextTier {
			fmt.Printf("Unlocked %s (%s)\n", res.NextTier.DisplayName(), res.UnlockReason)
		}
		tp := res.Progress[level]
		fmt.Printf("%s progress: %d/%d missions completed, %d passed\n",
			level.DisplayName(), tp.MissionsCompleted, tp.TotalMissions, tp.MissionsPassed)
		return nil
	},
}

func init() {
	missionCmd.Flags().Int64("deck", 0, "Deck id")
	missionCmd.Flags().String("tier", bloom.Remember.String(), "Bloom tier (remember … create)")
	missionCmd.Flags().Int("seen", 0, "Cards seen in the mission")
	missionCmd.Flags().Float64("correct", 0, "Cards answered correctly (fractional for partial credit)")
	missionCmd.Flags().String("mode", string(mission.DefaultMode), "Study mode: learn, quiz, review, or boss")
	missionCmd.Flags().Int("duration", 0, "Mission duration in minutes")
}
