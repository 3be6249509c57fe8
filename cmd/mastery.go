package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
)

var masteryCmd = &cobra.Command{
	Use:   "mastery",
	Short: "Show persisted tier mastery for a deck",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, st, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		deckID, _ := cmd.Flags().GetInt64("deck")
		learner := resolveLearner(cmd)

		levels := bloom.AllLevels()
		if tier, _ := cmd.Flags().GetString("tier"); tier != "" {
			level, err := bloom.ParseLevel(tier)
			if err != nil {
				return err
			}
			levels = []bloom.Level{level}
		}

		for _, level := range levels {
			tm, err := eng.TierMastery(cmd.Context(), learner, deckID, level)
			if err != nil {
				return err
			}
			if tm == nil {
				fmt.Printf("%-10s  no data\n", level.DisplayName())
				continue
			}
			fmt.Printf("%-10s  mastery %3d%%  retention %.2f  coverage %.2f  ewma %.1f\n",
				level.DisplayName(), tm.MasteryPct, tm.RetentionStrength, tm.Coverage, tm.CorrectnessEwma)

			grad, err := eng.Graduation(cmd.Context(), learner, deckID, level)
			if err != nil {
				return err
			}
			if grad.Eligible {
				fmt.Printf("%-10s  ready to graduate\n", "")
			} else {
				for _, reason := range grad.Reasons {
					fmt.Printf("%-10s  - %s\n", "", reason)
				}
			}
		}
		return nil
	},
}

func init() {
	masteryCmd.Flags().Int64("deck", 0, "Deck id")
	masteryCmd.Flags().String("tier", "", "Bloom tier (default: all tiers)")
}
