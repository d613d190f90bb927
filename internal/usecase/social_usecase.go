package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"postpilot/internal/entity"
	"postpilot/internal/repo/persistent"
	"postpilot/pkg/logger"

	"github.com/redis/go-redis/v9"
)

type ConnectAccountInput struct {
	AccessToken  string
	TokenSecret  string
	RefreshToken string
	RemoteUserID string
}

type SocialUseCase interface {
	ConnectedAccounts(userID string) (map[entity.Platform]bool, error)
	Connect(userID string, platform entity.Platform, input ConnectAccountInput) (*entity.SocialAccount, error)
	Disconnect(userID string, platform entity.Platform) error
}

type socialUseCase struct {
	accountRepo persistent.SocialAccountRepository
	redisClient *redis.Client
	logger      *logger.Logger
}

func NewSocialUseCase(accountRepo persistent.SocialAccountRepository, redisClient *redis.Client, log *logger.Logger) SocialUseCase {
	return &socialUseCase{
		accountRepo: accountRepo,
		redisClient: redisClient,
		logger:      log,
	}
}

func (uc *socialUseCase) ConnectedAccounts(userID string) (map[entity.Platform]bool, error) {
	if cached := uc.cachedConnected(userID); cached != nil {
		return cached, nil
	}

	accounts, err := uc.accountRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list social accounts: %w", err)
	}

	connected := make(map[entity.Platform]bool, len(entity.AllPlatforms))
	for _, platform := range entity.AllPlatforms {
		connected[platform] = false
	}
	for _, account := range accounts {
		connected[account.Platform] = true
	}

	uc.cacheConnected(userID, connected)
	return connected, nil
}

func (uc *socialUseCase) Connect(userID string, platform entity.Platform, input ConnectAccountInput) (*entity.SocialAccount, error) {
	account := &entity.SocialAccount{
		UserID:       userID,
		Platform:     platform,
		AccessToken:  input.AccessToken,
		TokenSecret:  input.TokenSecret,
		RefreshToken: input.RefreshToken,
		RemoteUserID: input.RemoteUserID,
		ConnectedAt:  time.Now(),
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Upsert(account); err != nil {
		uc.logger.Error("Failed to store %s account for user %s: %v", platform, userID, err)
		return nil, fmt.Errorf("failed to connect account: %w", err)
	}

	uc.invalidateConnected(userID)
	return account, nil
}

func (uc *socialUseCase) Disconnect(userID string, platform entity.Platform) error {
	if !platform.Valid() {
		return fmt.Errorf("unknown platform: %s", platform)
	}

	if err := uc.accountRepo.Delete(userID, platform); err != nil {
		return err
	}

	uc.invalidateConnected(userID)
	return nil
}

func connectedCacheKey(userID string) string {
	return fmt.Sprintf("social:connected:%s", userID)
}

func (uc *socialUseCase) cachedConnected(userID string) map[entity.Platform]bool {
	if uc.redisClient == nil {
		return nil
	}

	data, err := uc.redisClient.Get(context.Background(), connectedCacheKey(userID)).Bytes()
	if err != nil {
		return nil
	}

	var connected map[entity.Platform]bool
	if err := json.Unmarshal(data, &connected); err != nil {
		return nil
	}
	return connected
}

func (uc *socialUseCase) cacheConnected(userID string, connected map[entity.Platform]bool) {
	if uc.redisClient == nil {
		return
	}

	data, err := json.Marshal(connected)
	if err != nil {
		return
	}
	uc.redisClient.Set(context.Background(), connectedCacheKey(userID), data, time.Hour)
}

func (uc *socialUseCase) invalidateConnected(userID string) {
	if uc.redisClient == nil {
		return
	}
	uc.redisClient.Del(context.Background(), connectedCacheKey(userID))
}
