package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SocialAccountModel struct {
	ID           string         `gorm:"type:uuid;primary_key" json:"id"`
	UserID       string         `gorm:"type:uuid;not null;uniqueIndex:idx_social_accounts_user_platform" json:"user_id"`
	Platform     string         `gorm:"type:varchar(30);not null;uniqueIndex:idx_social_accounts_user_platform" json:"platform"`
	AccessToken  string         `gorm:"type:text;not null" json:"-"`
	TokenSecret  string         `gorm:"type:text" json:"-"`
	RefreshToken string         `gorm:"type:text" json:"-"`
	RemoteUserID string         `gorm:"type:varchar(255)" json:"remote_user_id"`
	ConnectedAt  time.Time      `json:"connected_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (SocialAccountModel) TableName() string {
	return "social_accounts"
}

func (a *SocialAccountModel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
