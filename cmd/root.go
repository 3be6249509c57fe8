package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bloomdeck/bloomdeck/internal/engine"
	"github.com/bloomdeck/bloomdeck/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "bloomdeck",
	Short: "Mastery and spaced-repetition progression engine",
	Long:  "Bloomdeck — flashcard progression engine that schedules reviews, tracks per-card mastery, and advances learners through Bloom-level tiers.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine; env vars may come from the shell.
		_ = godotenv.Load()

		level := slog.LevelInfo
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides BLOOMDECK_DB env var)")
	rootCmd.PersistentFlags().String("learner", "", "Learner id (overrides BLOOMDECK_LEARNER env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(missionCmd)
	rootCmd.AddCommand(masteryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then BLOOMDECK_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if p := os.Getenv("BLOOMDECK_DB"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveLearner returns the learner id from the --learner flag or the
// BLOOMDECK_LEARNER env var. An empty id fails authentication downstream.
func resolveLearner(cmd *cobra.Command) string {
	if l, _ := cmd.Flags().GetString("learner"); l != "" {
		return l
	}
	return os.Getenv("BLOOMDECK_LEARNER")
}

// openEngine opens the store and wires the progression service over it.
// The caller must close the returned store.
func openEngine(cmd *cobra.Command) (*engine.Service, *store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return engine.New(st, engine.Options{Logger: slog.Default()}), st, nil
}
