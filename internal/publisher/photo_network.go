package publisher

import (
	"context"
	"net/http"

	"postpilot/internal/entity"
	"postpilot/pkg/logger"
)

const DefaultPhotoNetworkBaseURL = "https://api.photonet.example"

// PhotoNetworkPublisher publishes media posts. The photo network rejects
// text-only posts, so a missing media URL fails before any network call.
type PhotoNetworkPublisher struct {
	client  *http.Client
	baseURL string
	logger  *logger.Logger
}

func NewPhotoNetworkPublisher(client *http.Client, baseURL string, log *logger.Logger) *PhotoNetworkPublisher {
	if baseURL == "" {
		baseURL = DefaultPhotoNetworkBaseURL
	}
	return &PhotoNetworkPublisher{client: client, baseURL: baseURL, logger: log}
}

func (p *PhotoNetworkPublisher) Platform() entity.Platform {
	return entity.PlatformPhotoNetwork
}

func (p *PhotoNetworkPublisher) Publish(ctx context.Context, content Content, account *entity.SocialAccount) Outcome {
	if content.MediaURL == "" {
		return Failed(p.Platform(), "photo-network requires a media attachment")
	}

	payload := map[string]interface{}{
		"caption":   content.Text,
		"media_url": content.MediaURL,
	}

	outcome := postJSON(ctx, p.client, p.Platform(), p.baseURL+"/v1/media_publish", account.AccessToken, payload)
	if !outcome.Success {
		p.logger.Warn("photo-network publish failed for user %s: %s", account.UserID, outcome.Reason)
	}
	return outcome
}
