// Package scheduler contains the recurring loop that discovers due posts
// and the orchestrator that publishes each of them.
package scheduler

import (
	"context"
	"sync"
	"time"

	"postpilot/internal/repo/persistent"
	"postpilot/pkg/logger"
)

// Scheduler periodically scans the post store for due posts and drives one
// orchestration attempt per post. It is an owned handle: Start launches the
// loop, Stop cancels it and joins.
type Scheduler struct {
	posts        persistent.PostRepository
	orchestrator *Orchestrator
	interval     time.Duration
	logger       *logger.Logger

	// now is replaceable in tests.
	now func() time.Time

	// tickMu guarantees no two ticks run over the queue concurrently.
	tickMu sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

func New(posts persistent.PostRepository, orchestrator *Orchestrator, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		posts:        posts,
		orchestrator: orchestrator,
		interval:     interval,
		logger:       log,
		now:          time.Now,
	}
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()

	s.logger.Info("scheduler started, checking for due posts every %s", s.interval)
}

// Stop cancels the loop and waits for any in-flight tick to finish at the
// per-post boundary.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Info("scheduler stopped")
}

// Tick runs one scan of the due-post queue. If a previous tick is still
// running, this one is skipped so the same post can never be processed
// twice concurrently. One post's failure never prevents processing of the
// remaining posts in the tick.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.tickMu.TryLock() {
		s.logger.Warn("previous tick still running, skipping this one")
		return
	}
	defer s.tickMu.Unlock()

	duePosts, err := s.posts.FindDue(s.now())
	if err != nil {
		s.logger.Error("failed to query due posts: %v", err)
		return
	}

	if len(duePosts) == 0 {
		return
	}
	s.logger.Info("found %d due post(s)", len(duePosts))

	for i, post := range duePosts {
		select {
		case <-ctx.Done():
			s.logger.Info("tick cancelled, %d post(s) left for the next run", len(duePosts)-i)
			return
		default:
		}

		if err := s.orchestrator.Process(ctx, post, s.now()); err != nil {
			s.logger.Error("failed to process post %s: %v", post.ID, err)
			continue
		}
	}
}
