package persistent

import (
	"errors"
	"time"

	"postpilot/internal/entity"
	"postpilot/internal/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type PostRepository interface {
	Create(post *entity.Post) error
	GetByID(id, ownerID string) (*entity.Post, error)
	GetByOwnerID(ownerID string) ([]*entity.Post, error)

	// Update rewrites the editable columns of a still-scheduled post. The
	// write is guarded on status = scheduled, so an edit racing a terminal
	// transition can never pull a post back out of published or failed.
	// Returns ErrNotEditable when the post is no longer scheduled.
	Update(post *entity.Post) error

	Delete(id, ownerID string) error

	// FindDue returns every post with status scheduled and scheduled_at <= now,
	// earliest first.
	FindDue(now time.Time) ([]*entity.Post, error)

	// MarkPublished and MarkFailed move a post to its terminal status. The
	// update is guarded on status = scheduled, so a post already terminal is
	// left untouched and the call is a no-op.
	MarkPublished(id string, publishedAt time.Time) error
	MarkFailed(id, reason string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *entity.Post) error {
	postModel := ToPostModel(post)
	if postModel.ID == "" {
		postModel.ID = uuid.New().String()
	}

	if err := r.db.Create(postModel).Error; err != nil {
		return err
	}

	*post = *ToPostEntity(postModel)
	return nil
}

func (r *postRepository) GetByID(id, ownerID string) (*entity.Post, error) {
	var postModel model.PostModel
	if err := r.db.Where("id = ?", id).First(&postModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}

	// Another owner's post is an authorization failure, not a missing record.
	if postModel.OwnerID != ownerID {
		return nil, entity.ErrForbidden
	}

	return ToPostEntity(&postModel), nil
}

func (r *postRepository) GetByOwnerID(ownerID string) ([]*entity.Post, error) {
	var postModels []model.PostModel
	err := r.db.Where("owner_id = ?", ownerID).
		Order("scheduled_at ASC").
		Find(&postModels).Error
	if err != nil {
		return nil, err
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, nil
}

func (r *postRepository) Update(post *entity.Post) error {
	platforms := make(pq.StringArray, len(post.Platforms))
	for i, p := range post.Platforms {
		platforms[i] = string(p)
	}

	result := r.db.Model(&model.PostModel{}).
		Where("id = ? AND status = ?", post.ID, string(entity.StatusScheduled)).
		Updates(map[string]interface{}{
			"content_text":  post.ContentText,
			"content_media": post.ContentMedia,
			"platforms":     platforms,
			"scheduled_at":  post.ScheduledAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrNotEditable
	}
	return nil
}

func (r *postRepository) Delete(id, ownerID string) error {
	if _, err := r.GetByID(id, ownerID); err != nil {
		return err
	}
	return r.db.Delete(&model.PostModel{}, "id = ?", id).Error
}

func (r *postRepository) FindDue(now time.Time) ([]*entity.Post, error) {
	var postModels []model.PostModel
	err := r.db.Where("status = ? AND scheduled_at <= ?", string(entity.StatusScheduled), now).
		Order("scheduled_at ASC").
		Find(&postModels).Error
	if err != nil {
		return nil, err
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, nil
}

func (r *postRepository) MarkPublished(id string, publishedAt time.Time) error {
	return r.db.Model(&model.PostModel{}).
		Where("id = ? AND status = ?", id, string(entity.StatusScheduled)).
		Updates(map[string]interface{}{
			"status":       string(entity.StatusPublished),
			"published_at": publishedAt,
		}).Error
}

func (r *postRepository) MarkFailed(id, reason string) error {
	return r.db.Model(&model.PostModel{}).
		Where("id = ? AND status = ?", id, string(entity.StatusScheduled)).
		Updates(map[string]interface{}{
			"status":         string(entity.StatusFailed),
			"failure_reason": reason,
		}).Error
}
