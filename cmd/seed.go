package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/store"
)

// seedCard is the JSON shape of one card in a seed file.
type seedCard struct {
	CardID string `json:"card_id"`
	DeckID int64  `json:"deck_id"`
	Level  string `json:"bloom_level"`
	Topic  string `json:"topic"`
	Kind   string `json:"kind"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load deck cards from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var cards []seedCard
		if err := json.Unmarshal(data, &cards); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		refs := make([]store.CardRef, 0, len(cards))
		for _, c := range cards {
			level, err := bloom.ParseLevel(c.Level)
			if err != nil {
				return fmt.Errorf("card %s: %w", c.CardID, err)
			}
			refs = append(refs, store.CardRef{
				CardID: c.CardID,
				DeckID: c.DeckID,
				Level:  level,
				Topic:  c.Topic,
				Kind:   c.Kind,
			})
		}

		eng, st, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SeedCards(cmd.Context(), refs); err != nil {
			return err
		}
		fmt.Printf("Seeded %d cards\n", len(refs))

		// Re-total quest progress when a learner context is available.
		if learner := resolveLearner(cmd); learner != "" && len(refs) > 0 {
			if err := eng.ContentChanged(cmd.Context(), learner, refs[0].DeckID); err != nil {
				return err
			}
		}
		return nil
	},
}
