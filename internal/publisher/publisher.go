// Package publisher delivers post content to external platforms. Every
// failure mode is returned as an Outcome value, never as an error, so the
// orchestrator's loop over platforms stays total.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"postpilot/internal/entity"
)

// Content is the deliverable part of a post.
type Content struct {
	Text     string
	MediaURL string
}

// Outcome is the result of one delivery attempt to one platform.
type Outcome struct {
	Platform entity.Platform
	Success  bool
	Reason   string
}

func Succeeded(platform entity.Platform) Outcome {
	return Outcome{Platform: platform, Success: true}
}

func Failed(platform entity.Platform, reason string) Outcome {
	return Outcome{Platform: platform, Success: false, Reason: reason}
}

type Publisher interface {
	Platform() entity.Platform
	Publish(ctx context.Context, content Content, account *entity.SocialAccount) Outcome
}

// Registry resolves the publisher for a platform. Platforms are a closed
// set, so an unknown platform at publish time is a failure outcome, not a
// panic.
type Registry struct {
	publishers map[entity.Platform]Publisher
}

func NewRegistry(publishers ...Publisher) *Registry {
	r := &Registry{publishers: make(map[entity.Platform]Publisher, len(publishers))}
	for _, p := range publishers {
		r.publishers[p.Platform()] = p
	}
	return r
}

func (r *Registry) Lookup(platform entity.Platform) (Publisher, bool) {
	p, ok := r.publishers[platform]
	return p, ok
}

// postJSON performs the provider call and maps the result onto the failure
// taxonomy: timeout, transport error, credential rejection, provider
// rejection.
func postJSON(ctx context.Context, client *http.Client, platform entity.Platform, url, bearerToken string, payload interface{}) Outcome {
	body, err := json.Marshal(payload)
	if err != nil {
		return Failed(platform, fmt.Sprintf("failed to encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Failed(platform, fmt.Sprintf("failed to build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Failed(platform, fmt.Sprintf("request to %s timed out", platform))
		}
		return Failed(platform, fmt.Sprintf("%s unreachable: %v", platform, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Succeeded(platform)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Failed(platform, fmt.Sprintf("%s credential rejected or expired", platform))
	default:
		return Failed(platform, fmt.Sprintf("rejected by %s (status %d)", platform, resp.StatusCode))
	}
}
