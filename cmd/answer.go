package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bloomdeck/bloomdeck/internal/srs"
)

var answerCmd = &cobra.Command{
	Use:   "answer <card-id>",
	Short: "Record one review answer for a card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, st, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		correctness, _ := cmd.Flags().GetFloat64("correctness")
		latency, _ := cmd.Flags().GetInt("latency")
		confidence, _ := cmd.Flags().GetInt("confidence")
		guessed, _ := cmd.Flags().GetBool("guessed")

		o := srs.Outcome{
			Correctness: correctness,
			LatencyMs:   latency,
			Confidence:  confidence,
			Guessed:     guessed,
		}
		cs, err := eng.RecordAnswer(cmd.Context(), resolveLearner(cmd), args[0], o)
		if err != nil {
			return err
		}

		fmt.Printf("Card %s (%s)\n", cs.CardID, cs.Level.DisplayName())
		fmt.Printf("  next review: %s (interval %dd, ease %.2f)\n",
			cs.Srs.Due.Format("2006-01-02"), cs.Srs.IntervalDays, cs.Srs.Ease)
		fmt.Printf("  retention %.2f  momentum %.2f  confidence %.2f  mastery %.2f\n",
			cs.Retention, cs.Momentum, cs.Confidence, cs.Mastery)
		return nil
	},
}

func init() {
	answerCmd.Flags().Float64("correctness", 1, "Answer correctness in [0,1] (fractional for partial credit)")
	answerCmd.Flags().Int("latency", 0, "Answer latency in milliseconds (0 = unknown)")
	answerCmd.Flags().Int("confidence", srs.ConfidenceUnknown, "Self-reported confidence 0-3 (-1 = not supplied)")
	answerCmd.Flags().Bool("guessed", false, "Whether the learner flagged the answer as a guess")
}
