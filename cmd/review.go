package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bloomdeck/bloomdeck/internal/queue"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Print the ordered review queue for a deck",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, st, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		deckID, _ := cmd.Flags().GetInt64("deck")
		mode := queue.ModeDue
		if m, _ := cmd.Flags().GetString("mode"); m == string(queue.ModeStruggle) {
			mode = queue.ModeStruggle
		}

		ids, err := eng.BuildReviewQueue(cmd.Context(), resolveLearner(cmd), deckID, mode)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("Nothing to review.")
			return nil
		}
		for i, id := range ids {
			fmt.Printf("%3d. %s\n", i+1, id)
		}
		return nil
	},
}

func init() {
	reviewCmd.Flags().Int64("deck", 0, "Deck id")
	reviewCmd.Flags().String("mode", string(queue.ModeDue), "Queue mode: due or struggle")
}
