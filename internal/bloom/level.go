package bloom

import "fmt"

// Level is one of the six ordered cognitive tiers.
type Level int

const (
	Remember Level = iota + 1
	Understand
	Apply
	Analyze
	Evaluate
	Create
)

// AllLevels returns the levels in progression order.
func AllLevels() []Level {
	return []Level{Remember, Understand, Apply, Analyze, Evaluate, Create}
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	return l >= Remember && l <= Create
}

// Next returns the level above l, or false if l is the last tier.
func (l Level) Next() (Level, bool) {
	if l >= Create || !l.Valid() {
		return 0, false
	}
	return l + 1, true
}

// Prev returns the level below l, or false if l is the first tier.
func (l Level) Prev() (Level, bool) {
	if l <= Remember || !l.Valid() {
		return 0, false
	}
	return l - 1, true
}

func (l Level) String() string {
	switch l {
	case Remember:
		return "remember"
	case Understand:
		return "understand"
	case Apply:
		return "apply"
	case Analyze:
		return "analyze"
	case Evaluate:
		return "evaluate"
	case Create:
		return "create"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// DisplayName returns a human-readable label for the level.
func (l Level) DisplayName() string {
	switch l {
	case Remember:
		return "Remember"
	case Understand:
		return "Understand"
	case Apply:
		return "Apply"
	case Analyze:
		return "Analyze"
	case Evaluate:
		return "Evaluate"
	case Create:
		return "Create"
	default:
		return l.String()
	}
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	for _, l := range AllLevels() {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown bloom level: %q", s)
}
