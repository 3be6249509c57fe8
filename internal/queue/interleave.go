package queue

import "github.com/bloomdeck/bloomdeck/internal/mastery"

// TopicClassifier assigns a card to an interleaving bucket. Injecting the
// classifier keeps the grouping policy out of the queue builder.
type TopicClassifier func(cs *mastery.CardState) string

// DefaultClassifier groups by topic, then card kind, then one shared
// bucket.
func DefaultClassifier(cs *mastery.CardState) string {
	if cs.Topic != "" {
		return cs.Topic
	}
	if cs.Kind != "" {
		return cs.Kind
	}
	return "default"
}

// Interleave rebuilds the queue by round-robin draw across topic buckets
// so near-duplicate cards don't cluster back to back. Bucket order follows
// first appearance and order within a bucket is preserved; with a single
// bucket the input order is returned unchanged.
func Interleave(cards []*mastery.CardState, classify TopicClassifier) []*mastery.CardState {
	if len(cards) <= 1 {
		return cards
	}
	if classify == nil {
		classify = DefaultClassifier
	}

	buckets := make(map[string][]*mastery.CardState)
	var keys []string
	for _, cs := range cards {
		k := classify(cs)
		if _, ok := buckets[k]; !ok {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], cs)
	}
	if len(keys) == 1 {
		return cards
	}

	out := make([]*mastery.CardState, 0, len(cards))
	for len(out) < len(cards) {
		for _, k := range keys {
			if len(buckets[k]) == 0 {
				continue
			}
			out = append(out, buckets[k][0])
			buckets[k] = buckets[k][1:]
		}
	}
	return out
}
