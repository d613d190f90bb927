package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type PostModel struct {
	ID            string         `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID       string         `gorm:"type:uuid;not null;index" json:"owner_id"`
	ContentText   string         `gorm:"type:text;not null" json:"content_text"`
	ContentMedia  string         `gorm:"type:varchar(500)" json:"content_media"`
	Platforms     pq.StringArray `gorm:"type:text[];not null" json:"platforms"`
	ScheduledAt   time.Time      `gorm:"not null;index:idx_posts_due,priority:2" json:"scheduled_at"`
	Status        string         `gorm:"type:varchar(20);not null;default:'scheduled';index:idx_posts_due,priority:1" json:"status"`
	PublishedAt   *time.Time     `json:"published_at"`
	FailureReason string         `gorm:"type:text" json:"failure_reason"`
	AIPrompt      string         `gorm:"type:text" json:"ai_prompt"`
	AIResponse    string         `gorm:"type:text" json:"ai_response"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PostModel) TableName() string {
	return "posts"
}

func (p *PostModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
