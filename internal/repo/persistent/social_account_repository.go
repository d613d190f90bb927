package persistent

import (
	"errors"
	"time"

	"postpilot/internal/entity"
	"postpilot/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SocialAccountRepository interface {
	Upsert(account *entity.SocialAccount) error
	GetByUserAndPlatform(userID string, platform entity.Platform) (*entity.SocialAccount, error)
	ListByUser(userID string) ([]*entity.SocialAccount, error)
	Delete(userID string, platform entity.Platform) error
}

type socialAccountRepository struct {
	db *gorm.DB
}

func NewSocialAccountRepository(db *gorm.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

func (r *socialAccountRepository) Upsert(account *entity.SocialAccount) error {
	accountModel := ToSocialAccountModel(account)
	if accountModel.ID == "" {
		accountModel.ID = uuid.New().String()
	}
	if accountModel.ConnectedAt.IsZero() {
		accountModel.ConnectedAt = time.Now()
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "token_secret", "refresh_token", "remote_user_id", "connected_at", "updated_at",
		}),
	}).Create(accountModel).Error
	if err != nil {
		return err
	}

	*account = *ToSocialAccountEntity(accountModel)
	return nil
}

func (r *socialAccountRepository) GetByUserAndPlatform(userID string, platform entity.Platform) (*entity.SocialAccount, error) {
	var accountModel model.SocialAccountModel
	err := r.db.Where("user_id = ? AND platform = ?", userID, string(platform)).
		First(&accountModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return ToSocialAccountEntity(&accountModel), nil
}

func (r *socialAccountRepository) ListByUser(userID string) ([]*entity.SocialAccount, error) {
	var accountModels []model.SocialAccountModel
	err := r.db.Where("user_id = ?", userID).
		Order("platform ASC").
		Find(&accountModels).Error
	if err != nil {
		return nil, err
	}

	accounts := make([]*entity.SocialAccount, len(accountModels))
	for i := range accountModels {
		accounts[i] = ToSocialAccountEntity(&accountModels[i])
	}
	return accounts, nil
}

func (r *socialAccountRepository) Delete(userID string, platform entity.Platform) error {
	result := r.db.Where("user_id = ? AND platform = ?", userID, string(platform)).
		Delete(&model.SocialAccountModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}
