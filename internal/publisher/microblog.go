package publisher

import (
	"context"
	"net/http"

	"postpilot/internal/entity"
	"postpilot/pkg/logger"
)

const DefaultMicroblogBaseURL = "https://api.microblog.example"

// MicroblogPublisher posts short status updates.
type MicroblogPublisher struct {
	client  *http.Client
	baseURL string
	logger  *logger.Logger
}

func NewMicroblogPublisher(client *http.Client, baseURL string, log *logger.Logger) *MicroblogPublisher {
	if baseURL == "" {
		baseURL = DefaultMicroblogBaseURL
	}
	return &MicroblogPublisher{client: client, baseURL: baseURL, logger: log}
}

func (p *MicroblogPublisher) Platform() entity.Platform {
	return entity.PlatformMicroblog
}

func (p *MicroblogPublisher) Publish(ctx context.Context, content Content, account *entity.SocialAccount) Outcome {
	payload := map[string]interface{}{
		"text": content.Text,
	}
	if content.MediaURL != "" {
		payload["media_url"] = content.MediaURL
	}

	outcome := postJSON(ctx, p.client, p.Platform(), p.baseURL+"/2/statuses", account.AccessToken, payload)
	if !outcome.Success {
		p.logger.Warn("microblog publish failed for user %s: %s", account.UserID, outcome.Reason)
	}
	return outcome
}
