package engine

import (
	"log/slog"
	"time"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mission"
	"github.com/bloomdeck/bloomdeck/internal/queue"
	"github.com/bloomdeck/bloomdeck/internal/store"
)

// Service is the request-scoped facade over the progression engine. It
// holds no mutable state of its own: every operation is an independent
// unit of work and all writes go through the repository as atomic upserts.
type Service struct {
	repo store.Repository
	log  *slog.Logger
	now  func() time.Time

	classify   queue.TopicClassifier
	graduation bloom.GraduationPolicy
	rules      []mission.UnlockRule
}

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	Logger     *slog.Logger
	Now        func() time.Time
	Classifier queue.TopicClassifier
	Graduation *bloom.GraduationPolicy
	Rules      []mission.UnlockRule
}

// New creates a Service over the given repository.
func New(repo store.Repository, opts Options) *Service {
	s := &Service{
		repo:       repo,
		log:        opts.Logger,
		now:        opts.Now,
		classify:   opts.Classifier,
		graduation: bloom.DefaultGraduationPolicy(),
		rules:      opts.Rules,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.classify == nil {
		s.classify = queue.DefaultClassifier
	}
	if opts.Graduation != nil {
		s.graduation = *opts.Graduation
	}
	if s.rules == nil {
		s.rules = mission.DefaultUnlockRules()
	}
	return s
}
