package entity

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Platform is one external destination for content. The set is closed:
// adding a platform means adding a publisher and an entry here.
type Platform string

const (
	PlatformMicroblog           Platform = "microblog"
	PlatformProfessionalNetwork Platform = "professional-network"
	PlatformPhotoNetwork        Platform = "photo-network"
)

var AllPlatforms = []Platform{
	PlatformMicroblog,
	PlatformProfessionalNetwork,
	PlatformPhotoNetwork,
}

func (p Platform) Valid() bool {
	switch p {
	case PlatformMicroblog, PlatformProfessionalNetwork, PlatformPhotoNetwork:
		return true
	}
	return false
}

type PostStatus string

const (
	StatusScheduled PostStatus = "scheduled"
	StatusPublished PostStatus = "published"
	StatusFailed    PostStatus = "failed"
)

// Terminal reports whether no further status transitions may occur.
func (s PostStatus) Terminal() bool {
	return s == StatusPublished || s == StatusFailed
}

const MaxContentLength = 5000

type Post struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	ContentText   string     `json:"content_text"`
	ContentMedia  string     `json:"content_media,omitempty"`
	Platforms     []Platform `json:"platforms"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	Status        PostStatus `json:"status"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	AIPrompt      string     `json:"ai_prompt,omitempty"`
	AIResponse    string     `json:"ai_response,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Validate checks the invariants a post must hold at creation or edit time.
// scheduled_at must be strictly after now.
func (p *Post) Validate(now time.Time) error {
	text := strings.TrimSpace(p.ContentText)
	if text == "" {
		return fmt.Errorf("content text is required")
	}
	if len([]rune(text)) > MaxContentLength {
		return fmt.Errorf("content text exceeds %d characters", MaxContentLength)
	}

	if p.ContentMedia != "" {
		u, err := url.Parse(p.ContentMedia)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("media must be an absolute http(s) URL")
		}
	}

	if len(p.Platforms) == 0 {
		return fmt.Errorf("at least one platform is required")
	}
	for _, platform := range p.Platforms {
		if !platform.Valid() {
			return fmt.Errorf("unknown platform: %s", platform)
		}
	}

	if !p.ScheduledAt.After(now) {
		return fmt.Errorf("scheduled time must be in the future")
	}

	return nil
}

// Due reports whether the scheduling loop should pick this post up.
func (p *Post) Due(now time.Time) bool {
	return p.Status == StatusScheduled && !p.ScheduledAt.After(now)
}
