package entity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validPost(now time.Time) *Post {
	return &Post{
		OwnerID:     "user-1",
		ContentText: "Launch day!",
		Platforms:   []Platform{PlatformMicroblog},
		ScheduledAt: now.Add(time.Hour),
		Status:      StatusScheduled,
	}
}

func TestPost_Validate(t *testing.T) {
	now := time.Now()
	assert.NoError(t, validPost(now).Validate(now))
}

func TestPost_Validate_EmptyContent(t *testing.T) {
	now := time.Now()
	post := validPost(now)
	post.ContentText = "   "
	assert.Error(t, post.Validate(now))
}

func TestPost_Validate_ContentTooLong(t *testing.T) {
	now := time.Now()
	post := validPost(now)
	post.ContentText = strings.Repeat("a", MaxContentLength+1)
	assert.Error(t, post.Validate(now))
}

func TestPost_Validate_MediaURL(t *testing.T) {
	now := time.Now()

	post := validPost(now)
	post.ContentMedia = "https://cdn.example.com/pic.png"
	assert.NoError(t, post.Validate(now))

	post.ContentMedia = "ftp://example.com/pic.png"
	assert.Error(t, post.Validate(now))

	post.ContentMedia = "/relative/pic.png"
	assert.Error(t, post.Validate(now))
}

func TestPost_Validate_Platforms(t *testing.T) {
	now := time.Now()

	post := validPost(now)
	post.Platforms = nil
	assert.Error(t, post.Validate(now))

	post.Platforms = []Platform{"myspace"}
	assert.Error(t, post.Validate(now))

	post.Platforms = []Platform{PlatformMicroblog, PlatformProfessionalNetwork, PlatformPhotoNetwork}
	assert.NoError(t, post.Validate(now))
}

func TestPost_Validate_ScheduledInPast(t *testing.T) {
	now := time.Now()

	post := validPost(now)
	post.ScheduledAt = now.Add(-time.Minute)
	assert.Error(t, post.Validate(now))

	// Exactly now is not strictly in the future
	post.ScheduledAt = now
	assert.Error(t, post.Validate(now))
}

func TestPost_Due(t *testing.T) {
	now := time.Now()

	post := validPost(now)
	post.ScheduledAt = now.Add(-time.Minute)
	assert.True(t, post.Due(now))

	post.ScheduledAt = now
	assert.True(t, post.Due(now))

	post.ScheduledAt = now.Add(time.Minute)
	assert.False(t, post.Due(now))

	post.ScheduledAt = now.Add(-time.Minute)
	post.Status = StatusPublished
	assert.False(t, post.Due(now))

	post.Status = StatusFailed
	assert.False(t, post.Due(now))
}

func TestPostStatus_Terminal(t *testing.T) {
	assert.False(t, StatusScheduled.Terminal())
	assert.True(t, StatusPublished.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestSocialAccount_Validate(t *testing.T) {
	account := &SocialAccount{
		UserID:      "user-1",
		Platform:    PlatformProfessionalNetwork,
		AccessToken: "token",
	}
	assert.NoError(t, account.Validate())

	account.Platform = "myspace"
	assert.Error(t, account.Validate())

	account.Platform = PlatformMicroblog
	assert.Error(t, account.Validate(), "microblog requires a token secret")

	account.TokenSecret = "secret"
	assert.NoError(t, account.Validate())

	account.AccessToken = ""
	assert.Error(t, account.Validate())
}
