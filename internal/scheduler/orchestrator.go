package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postpilot/internal/entity"
	"postpilot/internal/publisher"
	"postpilot/internal/repo/persistent"
	"postpilot/pkg/logger"
	"postpilot/pkg/queue"
)

// Orchestrator turns one due post into exactly one terminal status.
type Orchestrator struct {
	posts          persistent.PostRepository
	accounts       persistent.SocialAccountRepository
	registry       *publisher.Registry
	queueClient    *queue.Client
	logger         *logger.Logger
	publishTimeout time.Duration
}

func NewOrchestrator(
	posts persistent.PostRepository,
	accounts persistent.SocialAccountRepository,
	registry *publisher.Registry,
	queueClient *queue.Client,
	log *logger.Logger,
	publishTimeout time.Duration,
) *Orchestrator {
	return &Orchestrator{
		posts:          posts,
		accounts:       accounts,
		registry:       registry,
		queueClient:    queueClient,
		logger:         log,
		publishTimeout: publishTimeout,
	}
}

// Process attempts the post's platforms in declared order, stopping at the
// first failure, and writes the single terminal transition. A post that is
// already terminal is left untouched.
func (o *Orchestrator) Process(ctx context.Context, post *entity.Post, now time.Time) error {
	if post.Status.Terminal() {
		return nil
	}

	var firstFailure *publisher.Outcome
	for _, platform := range post.Platforms {
		outcome := o.attempt(ctx, post, platform)
		if !outcome.Success {
			// Fail fast: remaining platforms are not attempted.
			firstFailure = &outcome
			break
		}
	}

	if firstFailure != nil {
		if err := o.posts.MarkFailed(post.ID, firstFailure.Reason); err != nil {
			return fmt.Errorf("failed to mark post %s failed: %w", post.ID, err)
		}
		post.Status = entity.StatusFailed
		post.FailureReason = firstFailure.Reason
		o.logger.Info("post %s failed: %s", post.ID, firstFailure.Reason)
	} else {
		if err := o.posts.MarkPublished(post.ID, now); err != nil {
			return fmt.Errorf("failed to mark post %s published: %w", post.ID, err)
		}
		post.Status = entity.StatusPublished
		post.PublishedAt = &now
		post.FailureReason = ""
		o.logger.Info("post %s published to %d platform(s)", post.ID, len(post.Platforms))
	}

	o.emitOutcome(post, now)
	return nil
}

func (o *Orchestrator) attempt(ctx context.Context, post *entity.Post, platform entity.Platform) publisher.Outcome {
	account, err := o.accounts.GetByUserAndPlatform(post.OwnerID, platform)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			// Precondition failure: no external call is made.
			return publisher.Failed(platform, fmt.Sprintf("not connected to %s", platform))
		}
		return publisher.Failed(platform, fmt.Sprintf("credential lookup for %s failed: %v", platform, err))
	}

	pub, ok := o.registry.Lookup(platform)
	if !ok {
		return publisher.Failed(platform, fmt.Sprintf("unknown platform: %s", platform))
	}

	callCtx, cancel := context.WithTimeout(ctx, o.publishTimeout)
	defer cancel()

	return pub.Publish(callCtx, publisher.Content{
		Text:     post.ContentText,
		MediaURL: post.ContentMedia,
	}, account)
}

// emitOutcome notifies downstream consumers about the terminal transition.
// Best effort only; a queue error never affects the post.
func (o *Orchestrator) emitOutcome(post *entity.Post, now time.Time) {
	if o.queueClient == nil {
		return
	}

	event := queue.OutcomeEvent{
		PostID:        post.ID,
		OwnerID:       post.OwnerID,
		Status:        string(post.Status),
		FailureReason: post.FailureReason,
		OccurredAt:    now,
	}
	if err := o.queueClient.PublishOutcome(event); err != nil {
		o.logger.Error("failed to publish outcome event for post %s: %v", post.ID, err)
	}
}
