package usecase

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"postpilot/internal/entity"
	"postpilot/internal/repo/persistent"
	"postpilot/pkg/logger"
	"postpilot/pkg/s3"

	"github.com/google/uuid"
)

type CreatePostInput struct {
	ContentText  string
	ContentMedia string
	Platforms    []string
	ScheduledAt  time.Time
	AIPrompt     string
	AIResponse   string
}

type UpdatePostInput struct {
	ContentText  *string
	ContentMedia *string
	Platforms    []string
	ScheduledAt  *time.Time
}

type PostUseCase interface {
	CreatePost(ownerID string, input CreatePostInput) (*entity.Post, error)
	GetPost(postID, ownerID string) (*entity.Post, error)
	ListPosts(ownerID string) ([]*entity.Post, error)
	UpdatePost(postID, ownerID string, input UpdatePostInput) (*entity.Post, error)
	DeletePost(postID, ownerID string) error
	UploadMedia(ownerID, filename string, file io.Reader, contentType string) (string, error)
}

type postUseCase struct {
	postRepo persistent.PostRepository
	s3Client *s3.Client
	logger   *logger.Logger
}

func NewPostUseCase(postRepo persistent.PostRepository, s3Client *s3.Client, log *logger.Logger) PostUseCase {
	return &postUseCase{
		postRepo: postRepo,
		s3Client: s3Client,
		logger:   log,
	}
}

func (uc *postUseCase) CreatePost(ownerID string, input CreatePostInput) (*entity.Post, error) {
	post := &entity.Post{
		OwnerID:      ownerID,
		ContentText:  strings.TrimSpace(input.ContentText),
		ContentMedia: input.ContentMedia,
		Platforms:    toPlatforms(input.Platforms),
		ScheduledAt:  input.ScheduledAt,
		Status:       entity.StatusScheduled,
		AIPrompt:     input.AIPrompt,
		AIResponse:   input.AIResponse,
	}

	if err := post.Validate(time.Now()); err != nil {
		return nil, err
	}

	if err := uc.postRepo.Create(post); err != nil {
		uc.logger.Error("Failed to create post: %v", err)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

func (uc *postUseCase) GetPost(postID, ownerID string) (*entity.Post, error) {
	return uc.postRepo.GetByID(postID, ownerID)
}

func (uc *postUseCase) ListPosts(ownerID string) ([]*entity.Post, error) {
	return uc.postRepo.GetByOwnerID(ownerID)
}

func (uc *postUseCase) UpdatePost(postID, ownerID string, input UpdatePostInput) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(postID, ownerID)
	if err != nil {
		return nil, err
	}

	// Terminal posts are immutable; only still-scheduled posts can change.
	if post.Status.Terminal() {
		return nil, entity.ErrNotEditable
	}

	if input.ContentText != nil {
		post.ContentText = strings.TrimSpace(*input.ContentText)
	}
	if input.ContentMedia != nil {
		post.ContentMedia = *input.ContentMedia
	}
	if input.Platforms != nil {
		post.Platforms = toPlatforms(input.Platforms)
	}
	if input.ScheduledAt != nil {
		post.ScheduledAt = *input.ScheduledAt
	}

	if err := post.Validate(time.Now()); err != nil {
		return nil, err
	}

	if err := uc.postRepo.Update(post); err != nil {
		// The post may have gone terminal between the read above and the
		// guarded write; the store reports that as ErrNotEditable.
		if errors.Is(err, entity.ErrNotEditable) {
			return nil, entity.ErrNotEditable
		}
		uc.logger.Error("Failed to update post %s: %v", postID, err)
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

func (uc *postUseCase) DeletePost(postID, ownerID string) error {
	return uc.postRepo.Delete(postID, ownerID)
}

func (uc *postUseCase) UploadMedia(ownerID, filename string, file io.Reader, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	fileKey := fmt.Sprintf("media/%s/%s%s", ownerID, uuid.New().String(), filepath.Ext(filename))
	mediaURL, err := uc.s3Client.UploadFile(fileKey, file, contentType)
	if err != nil {
		uc.logger.Error("Failed to upload media: %v", err)
		return "", fmt.Errorf("failed to upload media: %w", err)
	}

	return mediaURL, nil
}

func toPlatforms(values []string) []entity.Platform {
	platforms := make([]entity.Platform, len(values))
	for i, v := range values {
		platforms[i] = entity.Platform(v)
	}
	return platforms
}
