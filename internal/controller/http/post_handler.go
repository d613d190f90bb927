package http

import (
	"errors"
	"net/http"
	"time"

	"postpilot/internal/entity"
	"postpilot/internal/usecase"
	"postpilot/pkg/logger"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrNotEditable):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

type CreatePostRequest struct {
	ContentText  string    `json:"content_text" binding:"required"`
	ContentMedia string    `json:"content_media"`
	Platforms    []string  `json:"platforms" binding:"required,min=1"`
	ScheduledAt  time.Time `json:"scheduled_at" binding:"required"`
	AIPrompt     string    `json:"ai_prompt"`
	AIResponse   string    `json:"ai_response"`
}

type UpdatePostRequest struct {
	ContentText  *string    `json:"content_text"`
	ContentMedia *string    `json:"content_media"`
	Platforms    []string   `json:"platforms"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
}

// CreatePost godoc
// @Summary      Schedule a new post
// @Description  Create a post scheduled for future publication to one or more platforms
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        post body CreatePostRequest true "Post to schedule"
// @Success      201  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.CreatePost(userID, usecase.CreatePostInput{
		ContentText:  req.ContentText,
		ContentMedia: req.ContentMedia,
		Platforms:    req.Platforms,
		ScheduledAt:  req.ScheduledAt,
		AIPrompt:     req.AIPrompt,
		AIResponse:   req.AIResponse,
	})
	if err != nil {
		h.logger.Error("Failed to create post: %v", err)
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPost godoc
// @Summary      Get post by ID
// @Description  Get one of the caller's posts, including its publication status
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	post, err := h.postUseCase.GetPost(postID, userID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, post)
}

// ListPosts godoc
// @Summary      List the caller's posts
// @Description  All posts owned by the caller, earliest scheduled first
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entity.Post
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	userID := c.GetString("user_id")

	posts, err := h.postUseCase.ListPosts(userID)
	if err != nil {
		h.logger.Error("Failed to list posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

// UpdatePost godoc
// @Summary      Update a scheduled post
// @Description  Edit content, platforms or schedule of a post that has not been published yet
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        post body UpdatePostRequest true "Fields to update"
// @Success      200  {object}  entity.Post
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.UpdatePost(postID, userID, usecase.UpdatePostInput{
		ContentText:  req.ContentText,
		ContentMedia: req.ContentMedia,
		Platforms:    req.Platforms,
		ScheduledAt:  req.ScheduledAt,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary      Delete a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	if err := h.postUseCase.DeletePost(postID, userID); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// UploadMedia godoc
// @Summary      Upload a media attachment
// @Description  Upload an image or video, returning the URL to use as a post's media
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        media formData file true "Media file"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /media [post]
func (h *PostHandler) UploadMedia(c *gin.Context) {
	userID := c.GetString("user_id")

	file, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Media file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open file"})
		return
	}
	defer src.Close()

	mediaURL, err := h.postUseCase.UploadMedia(userID, file.Filename, src, file.Header.Get("Content-Type"))
	if err != nil {
		h.logger.Error("Failed to upload media: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload media"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"media_url": mediaURL})
}
