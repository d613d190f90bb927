package persistent

import (
	"postpilot/internal/entity"
	"postpilot/internal/model"
)

func ToPostEntity(m *model.PostModel) *entity.Post {
	if m == nil {
		return nil
	}

	platforms := make([]entity.Platform, len(m.Platforms))
	for i, p := range m.Platforms {
		platforms[i] = entity.Platform(p)
	}

	return &entity.Post{
		ID:            m.ID,
		OwnerID:       m.OwnerID,
		ContentText:   m.ContentText,
		ContentMedia:  m.ContentMedia,
		Platforms:     platforms,
		ScheduledAt:   m.ScheduledAt,
		Status:        entity.PostStatus(m.Status),
		PublishedAt:   m.PublishedAt,
		FailureReason: m.FailureReason,
		AIPrompt:      m.AIPrompt,
		AIResponse:    m.AIResponse,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ToPostModel(e *entity.Post) *model.PostModel {
	if e == nil {
		return nil
	}

	platforms := make([]string, len(e.Platforms))
	for i, p := range e.Platforms {
		platforms[i] = string(p)
	}

	return &model.PostModel{
		ID:            e.ID,
		OwnerID:       e.OwnerID,
		ContentText:   e.ContentText,
		ContentMedia:  e.ContentMedia,
		Platforms:     platforms,
		ScheduledAt:   e.ScheduledAt,
		Status:        string(e.Status),
		PublishedAt:   e.PublishedAt,
		FailureReason: e.FailureReason,
		AIPrompt:      e.AIPrompt,
		AIResponse:    e.AIResponse,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func ToUserEntity(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:          m.ID,
		Email:       m.Email,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		Password:    m.Password,
		Role:        entity.UserRole(m.Role),
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *model.UserModel {
	if e == nil {
		return nil
	}

	return &model.UserModel{
		ID:          e.ID,
		Email:       e.Email,
		Username:    e.Username,
		DisplayName: e.DisplayName,
		Password:    e.Password,
		Role:        string(e.Role),
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToSocialAccountEntity(m *model.SocialAccountModel) *entity.SocialAccount {
	if m == nil {
		return nil
	}

	return &entity.SocialAccount{
		ID:           m.ID,
		UserID:       m.UserID,
		Platform:     entity.Platform(m.Platform),
		AccessToken:  m.AccessToken,
		TokenSecret:  m.TokenSecret,
		RefreshToken: m.RefreshToken,
		RemoteUserID: m.RemoteUserID,
		ConnectedAt:  m.ConnectedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func ToSocialAccountModel(e *entity.SocialAccount) *model.SocialAccountModel {
	if e == nil {
		return nil
	}

	return &model.SocialAccountModel{
		ID:           e.ID,
		UserID:       e.UserID,
		Platform:     string(e.Platform),
		AccessToken:  e.AccessToken,
		TokenSecret:  e.TokenSecret,
		RefreshToken: e.RefreshToken,
		RemoteUserID: e.RemoteUserID,
		ConnectedAt:  e.ConnectedAt,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
