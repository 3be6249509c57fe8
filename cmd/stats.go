package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show deck learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, st, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		deckID, _ := cmd.Flags().GetInt64("deck")
		ov, _, err := eng.DeckOverview(cmd.Context(), resolveLearner(cmd), deckID)
		if err != nil {
			return err
		}

		fmt.Printf("Cards studied:   %d\n", ov.TotalCards)
		fmt.Printf("Due now:         %d\n", ov.DueCards)
		fmt.Printf("Struggling:      %d\n", ov.StrugglingCards)
		fmt.Printf("Mastered:        %d\n", ov.MasteredCards)
		if ov.TotalCards > 0 {
			fmt.Printf("Avg ease:        %.2f\n", ov.AvgEase)
			fmt.Printf("Avg interval:    %.1f days\n", ov.AvgIntervalDays)
			fmt.Printf("Accuracy:        %.0f%%\n", ov.OverallAccuracy*100)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int64("deck", 0, "Deck id")
}
