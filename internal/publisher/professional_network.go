package publisher

import (
	"context"
	"net/http"

	"postpilot/internal/entity"
	"postpilot/pkg/logger"
)

const DefaultProfessionalNetworkBaseURL = "https://api.pronet.example"

// ProfessionalNetworkPublisher shares posts on the professional network.
type ProfessionalNetworkPublisher struct {
	client  *http.Client
	baseURL string
	logger  *logger.Logger
}

func NewProfessionalNetworkPublisher(client *http.Client, baseURL string, log *logger.Logger) *ProfessionalNetworkPublisher {
	if baseURL == "" {
		baseURL = DefaultProfessionalNetworkBaseURL
	}
	return &ProfessionalNetworkPublisher{client: client, baseURL: baseURL, logger: log}
}

func (p *ProfessionalNetworkPublisher) Platform() entity.Platform {
	return entity.PlatformProfessionalNetwork
}

func (p *ProfessionalNetworkPublisher) Publish(ctx context.Context, content Content, account *entity.SocialAccount) Outcome {
	payload := map[string]interface{}{
		"author": "urn:member:" + account.RemoteUserID,
		"commentary": map[string]string{
			"text": content.Text,
		},
		"visibility": "PUBLIC",
	}
	if content.MediaURL != "" {
		payload["media"] = map[string]string{"url": content.MediaURL}
	}

	outcome := postJSON(ctx, p.client, p.Platform(), p.baseURL+"/v2/shares", account.AccessToken, payload)
	if !outcome.Success {
		p.logger.Warn("professional-network publish failed for user %s: %s", account.UserID, outcome.Reason)
	}
	return outcome
}
