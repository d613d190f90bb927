package entity

import (
	"fmt"
	"strings"
	"time"
)

// SocialAccount is a user's stored credential for one platform. One row per
// (user, platform) pair; its absence for a selected platform is a publication
// precondition failure, not a fault.
type SocialAccount struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Platform     Platform  `json:"platform"`
	AccessToken  string    `json:"-"`
	TokenSecret  string    `json:"-"`
	RefreshToken string    `json:"-"`
	RemoteUserID string    `json:"remote_user_id,omitempty"`
	ConnectedAt  time.Time `json:"connected_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate is applied at write time so the scheduler never sees a malformed
// credential.
func (a *SocialAccount) Validate() error {
	if !a.Platform.Valid() {
		return fmt.Errorf("unknown platform: %s", a.Platform)
	}
	if strings.TrimSpace(a.AccessToken) == "" {
		return fmt.Errorf("access token is required")
	}
	// The microblog API signs requests with a token pair.
	if a.Platform == PlatformMicroblog && strings.TrimSpace(a.TokenSecret) == "" {
		return fmt.Errorf("token secret is required for %s", PlatformMicroblog)
	}
	return nil
}
