package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"postpilot/internal/entity"
	"postpilot/internal/publisher"
	"postpilot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePostRepo is an in-memory PostRepository honoring the due-query and
// guarded-transition contracts.
type fakePostRepo struct {
	mu         sync.Mutex
	posts      map[string]*entity.Post
	findDueErr error
	markErr    map[string]error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*entity.Post), markErr: make(map[string]error)}
}

func (r *fakePostRepo) add(post *entity.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *post
	r.posts[post.ID] = &copied
}

func (r *fakePostRepo) get(id string) *entity.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *r.posts[id]
	return &copied
}

func (r *fakePostRepo) Create(post *entity.Post) error { r.add(post); return nil }

func (r *fakePostRepo) GetByID(id, ownerID string) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	if post.OwnerID != ownerID {
		return nil, entity.ErrForbidden
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) GetByOwnerID(ownerID string) ([]*entity.Post, error) { return nil, nil }

// Update mirrors the store's guarded write: only editable columns, and only
// while the post is still scheduled.
func (r *fakePostRepo) Update(post *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[post.ID]
	if !ok || stored.Status != entity.StatusScheduled {
		return entity.ErrNotEditable
	}
	stored.ContentText = post.ContentText
	stored.ContentMedia = post.ContentMedia
	stored.Platforms = append([]entity.Platform(nil), post.Platforms...)
	stored.ScheduledAt = post.ScheduledAt
	return nil
}

func (r *fakePostRepo) Delete(id, ownerID string) error { return nil }

func (r *fakePostRepo) FindDue(now time.Time) ([]*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findDueErr != nil {
		return nil, r.findDueErr
	}
	var due []*entity.Post
	for _, post := range r.posts {
		if post.Due(now) {
			copied := *post
			due = append(due, &copied)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(due[j].ScheduledAt) })
	return due, nil
}

func (r *fakePostRepo) MarkPublished(id string, publishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.markErr[id]; err != nil {
		return err
	}
	post, ok := r.posts[id]
	if !ok || post.Status != entity.StatusScheduled {
		return nil
	}
	post.Status = entity.StatusPublished
	post.PublishedAt = &publishedAt
	return nil
}

func (r *fakePostRepo) MarkFailed(id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.markErr[id]; err != nil {
		return err
	}
	post, ok := r.posts[id]
	if !ok || post.Status != entity.StatusScheduled {
		return nil
	}
	post.Status = entity.StatusFailed
	post.FailureReason = reason
	return nil
}

type fakeAccountRepo struct {
	accounts map[string]*entity.SocialAccount // key: userID|platform
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*entity.SocialAccount)}
}

func (r *fakeAccountRepo) connect(userID string, platform entity.Platform) {
	r.accounts[userID+"|"+string(platform)] = &entity.SocialAccount{
		UserID:      userID,
		Platform:    platform,
		AccessToken: "token",
		TokenSecret: "secret",
	}
}

func (r *fakeAccountRepo) Upsert(account *entity.SocialAccount) error { return nil }

func (r *fakeAccountRepo) GetByUserAndPlatform(userID string, platform entity.Platform) (*entity.SocialAccount, error) {
	account, ok := r.accounts[userID+"|"+string(platform)]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return account, nil
}

func (r *fakeAccountRepo) ListByUser(userID string) ([]*entity.SocialAccount, error) { return nil, nil }
func (r *fakeAccountRepo) Delete(userID string, platform entity.Platform) error      { return nil }

// fakePublisher records attempts and returns scripted outcomes.
type fakePublisher struct {
	platform entity.Platform
	fail     bool
	reason   string
	block    chan struct{} // if set, Publish waits until closed

	mu       *sync.Mutex
	attempts *[]string // shared across publishers to capture global order
}

func (p *fakePublisher) Platform() entity.Platform { return p.platform }

func (p *fakePublisher) Publish(ctx context.Context, content publisher.Content, account *entity.SocialAccount) publisher.Outcome {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	*p.attempts = append(*p.attempts, string(p.platform)+":"+content.Text)
	p.mu.Unlock()
	if p.fail {
		return publisher.Failed(p.platform, p.reason)
	}
	return publisher.Succeeded(p.platform)
}

type fixture struct {
	posts    *fakePostRepo
	accounts *fakeAccountRepo
	attempts []string
	mu       sync.Mutex
	pubs     map[entity.Platform]*fakePublisher
}

func newFixture() *fixture {
	f := &fixture{
		posts:    newFakePostRepo(),
		accounts: newFakeAccountRepo(),
		pubs:     make(map[entity.Platform]*fakePublisher),
	}
	for _, platform := range entity.AllPlatforms {
		f.pubs[platform] = &fakePublisher{platform: platform, mu: &f.mu, attempts: &f.attempts}
	}
	return f
}

func (f *fixture) registry() *publisher.Registry {
	pubs := make([]publisher.Publisher, 0, len(f.pubs))
	for _, p := range f.pubs {
		pubs = append(pubs, p)
	}
	return publisher.NewRegistry(pubs...)
}

func (f *fixture) scheduler(now time.Time) *Scheduler {
	orch := NewOrchestrator(f.posts, f.accounts, f.registry(), nil, logger.New(), time.Second)
	s := New(f.posts, orch, time.Minute, logger.New())
	s.now = func() time.Time { return now }
	return s
}

func (f *fixture) attemptedPlatforms() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.attempts))
	copy(out, f.attempts)
	return out
}

func scheduledPost(id, owner string, scheduledAt time.Time, platforms ...entity.Platform) *entity.Post {
	return &entity.Post{
		ID:          id,
		OwnerID:     owner,
		ContentText: "content of " + id,
		Platforms:   platforms,
		ScheduledAt: scheduledAt,
		Status:      entity.StatusScheduled,
	}
}

func TestTick_ProcessesDuePostsEarliestFirst(t *testing.T) {
	now := time.Now()
	f := newFixture()
	f.accounts.connect("user-1", entity.PlatformMicroblog)

	// Inserted out of order: due at T-2, T-3, T-1.
	f.posts.add(scheduledPost("post-b", "user-1", now.Add(-2*time.Minute), entity.PlatformMicroblog))
	f.posts.add(scheduledPost("post-a", "user-1", now.Add(-3*time.Minute), entity.PlatformMicroblog))
	f.posts.add(scheduledPost("post-c", "user-1", now.Add(-1*time.Minute), entity.PlatformMicroblog))

	f.scheduler(now).Tick(context.Background())

	assert.Equal(t, []string{
		"microblog:content of post-a",
		"microblog:content of post-b",
		"microblog:content of post-c",
	}, f.attemptedPlatforms())

	for _, id := range []string{"post-a", "post-b", "post-c"} {
		post := f.posts.get(id)
		assert.Equal(t, entity.StatusPublished, post.Status)
		require.NotNil(t, post.PublishedAt)
		assert.Empty(t, post.FailureReason)
	}
}

func TestTick_FuturePostsNotSelected(t *testing.T) {
	now := time.Now()
	f := newFixture()
	f.accounts.connect("user-1", entity.PlatformMicroblog)
	f.posts.add(scheduledPost("post-future", "user-1", now.Add(time.Minute), entity.PlatformMicroblog))

	f.scheduler(now).Tick(context.Background())

	assert.Empty(t, f.attemptedPlatforms())
	assert.Equal(t, entity.StatusScheduled, f.posts.get("post-future").Status)
}

func TestTick_TerminalPostsNotSelected(t *testing.T) {
	now := time.Now()
	f := newFixture()
	f.accounts.connect("user-1", entity.PlatformMicroblog)

	failed := scheduledPost("post-failed", "user-1", now.Add(-time.Hour), entity.PlatformMicroblog)
	failed.Status = entity.StatusFailed
	failed.FailureReason = "rejected"
	f.posts.add(failed)

	published := scheduledPost("post-published", "user-1", now.Add(-time.Hour), entity.PlatformMicroblog)
	published.Status = entity.StatusPublished
	f.posts.add(published)

	f.scheduler(now).Tick(context.Background())

	assert.Empty(t, f.attemptedPlatforms())
	assert.Equal(t, entity.StatusFailed, f.posts.get("post-failed").Status)
	assert.Equal(t, "rejected", f.posts.get("post-failed").FailureReason)
}

func TestOrchestrator_ShortCircuitOnFirstFailure(t *testing.T) {
	now := time.Now()
	f := newFixture()
	f.accounts.connect("user-1", entity.PlatformMicroblog)
	f.accounts.connect("user-1", entity.PlatformProfessionalNetwork)
	f.accounts.connect("user-1", entity.PlatformPhotoNetwork)

	f.pubs[entity.PlatformProfessionalNetwork].fail = true
	f.pubs[entity.PlatformProfessionalNetwork].reason = "rejected by professional-network (status 500)"

	f.posts.add(scheduledPost("post-1", "user-1", now.Add(-time.Minute),
		entity.PlatformMicroblog, entity.PlatformProfessionalNetwork, entity.PlatformPhotoNetwork))

	f.scheduler(now).Tick(context.Background())

	// Photo network is never attempted once the professional network failed.
	assert.Equal(t, []string{
		"microblog:content of post-1",
		"professional-network:content of post-1",
	}, f.attemptedPlatforms())

	post := f.posts.get("post-1")
	assert.Equal(t, entity.StatusFailed, post.Status)
	assert.Equal(t, "rejected by professional-network (status 500)", post.FailureReason)
	assert.Nil(t, post.PublishedAt)
}

func TestOrchestrator_AllPlatformsSucceed(t *testing.T) {
	now := time.Now()
	f := newFixture()
	f.accounts.connect("user-1", entity.PlatformMicroblog)
	f.accounts.connect("user-1", entity.PlatformProfessionalNetwork)

	f.posts.add(scheduledPost("post-1", "user-1", now.Add(-time.Minute),
		entity.PlatformMicroblog, entity.PlatformProfessionalNetwork))

	f.scheduler(now).Tick(context.Background())

	post := f.posts.get("post-1")
	assert.Equal(t, entity.StatusPublished, post.Status)
	require.NotNil(t, post.PublishedAt)
	assert.Empty(t, post.FailureReason)
	assert.Len(t, f.attemptedPlatforms(), 2)
}

func TestOrchestrator_NotConnected(t *testing.T) {
	now := time.Now()
	f := newFixture()
	// No microblog account connected for user-1.

	f.posts.add(scheduledPost("post-1", "user-1", now.Add(-time.Minute), entity.PlatformMicroblog))

	f.scheduler(now).Tick(context.Background())

	// No external call is attempted without a credential.
	assert.Empty(t, f.attemptedPlatforms())

	post := f.posts.get("post-1")
	assert.Equal(t, entity.StatusFailed, post.Status)
	assert.Contains(t, post.FailureReason, "not connected to microblog")
	assert.Nil(t, post.PublishedAt)
}

func TestOrchestrator_TerminalPostIsNoOp(t *testing.T) {
	now := time.Now()
	f := newFixture()
	f.accounts.connect("user-1", entity.PlatformMicroblog)

	post := scheduledPost("post-1", "user-1", now.Add(-time.Minute), entity.PlatformMicroblog)
	f.posts.add(post)

	orch := NewOrchestrator(f.posts, f.accounts, f.registry(), nil, logger.New(), time.Second)
	require.NoError(t, orch.Process(context.Background(), post, now))
	assert.Equal(t, entity.StatusPublished, post.Status)
	firstPublishedAt := f.posts.get("post-1").PublishedAt

	// A retried orchestration of the now-terminal post does nothing.
	require.NoError(t, orch.Process(context.Background(), post, now.Add(time.Minute)))
	assert.Len(t, f.attemptedPlatforms(), 1)
	assert.Equal(t, firstPublishedAt, f.posts.get("post-1").PublishedAt)
}

func TestTick_StaleEditCannotResurrectPublishedPost(t *testing.T) {
	now := time.Now()
	f := newFixture()
	f.accounts.connect("user-1", entity.PlatformMicroblog)
	f.posts.add(scheduledPost("post-1", "user-1", now.Add(-time.Minute), entity.PlatformMicroblog))

	// An editor reads the post while it is still scheduled.
	stale, err := f.posts.GetByID("post-1", "user-1")
	require.NoError(t, err)

	// The tick publishes it before the edit lands.
	f.scheduler(now).Tick(context.Background())
	require.Equal(t, entity.StatusPublished, f.posts.get("post-1").Status)
	require.Len(t, f.attemptedPlatforms(), 1)

	// The stale write must be rejected, not committed over the terminal state.
	stale.ContentText = "edited after the fact"
	assert.ErrorIs(t, f.posts.Update(stale), entity.ErrNotEditable)

	post := f.posts.get("post-1")
	assert.Equal(t, entity.StatusPublished, post.Status)
	assert.Equal(t, "content of post-1", post.ContentText)

	// And the next tick must not pick the post up again.
	f.scheduler(now.Add(time.Minute)).Tick(context.Background())
	assert.Len(t, f.attemptedPlatforms(), 1)
}

func TestTick_DueQueryFailureAbortsCleanly(t *testing.T) {
	now := time.Now()
	f := newFixture()
	f.posts.findDueErr = errors.New("store unreachable")
	f.posts.add(scheduledPost("post-1", "user-1", now.Add(-time.Minute), entity.PlatformMicroblog))

	f.scheduler(now).Tick(context.Background())

	assert.Empty(t, f.attemptedPlatforms())
	assert.Equal(t, entity.StatusScheduled, f.posts.get("post-1").Status)

	// Next tick works again once the store recovers.
	f.posts.findDueErr = nil
	f.accounts.connect("user-1", entity.PlatformMicroblog)
	f.scheduler(now).Tick(context.Background())
	assert.Equal(t, entity.StatusPublished, f.posts.get("post-1").Status)
}

func TestTick_PerPostErrorIsolation(t *testing.T) {
	now := time.Now()
	f := newFixture()
	f.accounts.connect("user-1", entity.PlatformMicroblog)

	f.posts.add(scheduledPost("post-1", "user-1", now.Add(-2*time.Minute), entity.PlatformMicroblog))
	f.posts.add(scheduledPost("post-2", "user-1", now.Add(-1*time.Minute), entity.PlatformMicroblog))
	f.posts.markErr["post-1"] = errors.New("write conflict")

	f.scheduler(now).Tick(context.Background())

	// The failing write on post-1 does not stop post-2.
	assert.Equal(t, entity.StatusPublished, f.posts.get("post-2").Status)
}

func TestTick_SkippedWhilePreviousTickRunning(t *testing.T) {
	now := time.Now()
	f := newFixture()
	f.accounts.connect("user-1", entity.PlatformMicroblog)
	f.posts.add(scheduledPost("post-1", "user-1", now.Add(-time.Minute), entity.PlatformMicroblog))

	release := make(chan struct{})
	f.pubs[entity.PlatformMicroblog].block = release

	s := f.scheduler(now)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Tick(context.Background())
	}()

	// Wait for the first tick to be inside a publish call.
	require.Eventually(t, func() bool {
		if s.tickMu.TryLock() {
			s.tickMu.Unlock()
			return false
		}
		return true
	}, time.Second, time.Millisecond)

	// The overlapping tick returns immediately without touching the queue.
	s.Tick(context.Background())

	close(release)
	wg.Wait()

	assert.Len(t, f.attemptedPlatforms(), 1)
	assert.Equal(t, entity.StatusPublished, f.posts.get("post-1").Status)
}

func TestTick_CancelledAtPostBoundary(t *testing.T) {
	now := time.Now()
	f := newFixture()
	f.accounts.connect("user-1", entity.PlatformMicroblog)
	f.posts.add(scheduledPost("post-1", "user-1", now.Add(-2*time.Minute), entity.PlatformMicroblog))
	f.posts.add(scheduledPost("post-2", "user-1", now.Add(-1*time.Minute), entity.PlatformMicroblog))

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // already cancelled: nothing gets processed

	f.scheduler(now).Tick(ctx)

	assert.Empty(t, f.attemptedPlatforms())
	assert.Equal(t, entity.StatusScheduled, f.posts.get("post-1").Status)
	assert.Equal(t, entity.StatusScheduled, f.posts.get("post-2").Status)
}

func TestSchedulerStartStop(t *testing.T) {
	now := time.Now()
	f := newFixture()
	f.accounts.connect("user-1", entity.PlatformMicroblog)
	f.posts.add(scheduledPost("post-1", "user-1", now.Add(-time.Minute), entity.PlatformMicroblog))

	orch := NewOrchestrator(f.posts, f.accounts, f.registry(), nil, logger.New(), time.Second)
	s := New(f.posts, orch, 10*time.Millisecond, logger.New())
	s.now = func() time.Time { return now }

	s.Start()
	require.Eventually(t, func() bool {
		return f.posts.get("post-1").Status == entity.StatusPublished
	}, time.Second, 5*time.Millisecond)
	s.Stop()
}
