package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset a learner's progress for a deck",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirmed, _ := cmd.Flags().GetBool("yes")
		if !confirmed {
			return fmt.Errorf("reset deletes all mission history and card progress; re-run with --yes to confirm")
		}

		eng, st, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		deckID, _ := cmd.Flags().GetInt64("deck")
		if err := eng.ResetDeck(cmd.Context(), resolveLearner(cmd), deckID); err != nil {
			return err
		}
		fmt.Printf("Deck %d reset.\n", deckID)
		return nil
	},
}

func init() {
	resetCmd.Flags().Int64("deck", 0, "Deck id")
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
