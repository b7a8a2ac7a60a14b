package services

import (
	"context"
	"io"
	"strings"

	"blogapi/internal/apperr"
	"blogapi/internal/models"
	"blogapi/internal/store"
	"blogapi/internal/utils"

	"go.uber.org/zap"
)

const (
	MsgPostCreated   = "Post Created Successfully!"
	MsgPostNotFound  = "Post Not Found"
	MsgPostDeleted   = "post has been deleted successfully"
	MsgAccessDenied  = "Access Denied"
	msgPostMissing   = "post not found"
	msgPostForbidden = "access denied, forbidden"
)

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	ID      uint
	IsAdmin bool
}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	List(ctx context.Context, q store.PostQuery) ([]models.Post, error)
	FindByID(ctx context.Context, id uint) (*models.Post, error)
	FindDetail(ctx context.Context, id uint) (*models.Post, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id uint, fields map[string]any) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, postID, userID uint) (*models.Post, error)
}

type CreatePostInput struct {
	Title       string `form:"title" json:"title" binding:"required,min=2,max=200"`
	Description string `form:"description" json:"description" binding:"required,min=10"`
	Category    string `form:"category" json:"category" binding:"required"`
}

type UpdatePostInput struct {
	Title       *string `json:"title" binding:"omitempty,min=2,max=200"`
	Description *string `json:"description" binding:"omitempty,min=10"`
	Category    *string `json:"category" binding:"omitempty,min=1"`
}

// Upload is an image received from a client.
type Upload struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Filename    string
}

type PostService struct {
	posts   PostStore
	storage ImageStorage
	log     *zap.Logger
}

func NewPostService(posts PostStore, storage ImageStorage, log *zap.Logger) *PostService {
	return &PostService{posts: posts, storage: storage, log: log}
}

func (s *PostService) Create(ctx context.Context, author uint, in CreatePostInput, img Upload) (*models.Post, error) {
	utils.TrimStrings(&in)
	if err := validate(&in); err != nil {
		return nil, err
	}

	stored, err := s.storage.Upload(ctx, img.Body, img.Size, img.ContentType, img.Filename)
	if err != nil {
		return nil, apperr.Dependency("upload post image", err)
	}

	post := &models.Post{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		UserID:      author,
		Image:       stored,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.discard(ctx, stored.PublicID)
		return nil, apperr.Dependency("create post", err)
	}
	return post, nil
}

func (s *PostService) List(ctx context.Context, q store.PostQuery) ([]models.Post, error) {
	posts, err := s.posts.List(ctx, q)
	if err != nil {
		return nil, apperr.Dependency("list posts", err)
	}
	return posts, nil
}

// Get returns the post with comments and likes, and its description
// rendered from markdown.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.FindDetail(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("find post", err)
	}
	if post == nil {
		return nil, apperr.NotFound(MsgPostNotFound)
	}
	post.DescriptionHTML = utils.RenderMarkdown(post.Description)
	return post, nil
}

func (s *PostService) Count(ctx context.Context) (int64, error) {
	n, err := s.posts.Count(ctx)
	if err != nil {
		return 0, apperr.Dependency("count posts", err)
	}
	return n, nil
}

// Delete removes the post, its comments and its image. Admins may delete
// any post.
func (s *PostService) Delete(ctx context.Context, actor Actor, id uint) error {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return apperr.Dependency("find post", err)
	}
	if post == nil {
		return apperr.NotFound(msgPostMissing)
	}
	if !actor.IsAdmin && actor.ID != post.UserID {
		return apperr.Forbidden(msgPostForbidden)
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return apperr.Dependency("delete post", err)
	}
	s.discard(ctx, post.Image.PublicID)
	return nil
}

func (s *PostService) Update(ctx context.Context, actor Actor, id uint, in UpdatePostInput) (*models.Post, error) {
	for _, f := range []*string{in.Title, in.Description, in.Category} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}

	post, err := s.posts.Update(ctx, id, fields)
	if err != nil {
		return nil, apperr.Dependency("update post", err)
	}
	return post, nil
}

// UpdateImage replaces the post image. The old object is removed first.
func (s *PostService) UpdateImage(ctx context.Context, actor Actor, id uint, img Upload) (*models.Post, error) {
	post, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if post.Image.PublicID != "" {
		if err := s.storage.Remove(ctx, post.Image.PublicID); err != nil {
			return nil, apperr.Dependency("remove post image", err)
		}
	}

	stored, err := s.storage.Upload(ctx, img.Body, img.Size, img.ContentType, img.Filename)
	if err != nil {
		return nil, apperr.Dependency("upload post image", err)
	}

	updated, err := s.posts.Update(ctx, id, map[string]any{
		"image_url":       stored.URL,
		"image_public_id": stored.PublicID,
	})
	if err != nil {
		return nil, apperr.Dependency("save post image", err)
	}
	return updated, nil
}

func (s *PostService) ToggleLike(ctx context.Context, actor Actor, id uint) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("find post", err)
	}
	if post == nil {
		return nil, apperr.NotFound(MsgPostNotFound)
	}

	updated, err := s.posts.ToggleLike(ctx, id, actor.ID)
	if err != nil {
		return nil, apperr.Dependency("toggle like", err)
	}
	return updated, nil
}

// owned loads the post and checks that actor wrote it.
func (s *PostService) owned(ctx context.Context, actor Actor, id uint) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("find post", err)
	}
	if post == nil {
		return nil, apperr.NotFound(MsgPostNotFound)
	}
	if post.UserID != actor.ID {
		return nil, apperr.Forbidden(MsgAccessDenied)
	}
	return post, nil
}

func (s *PostService) discard(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.storage.Remove(ctx, publicID); err != nil {
		s.log.Warn("failed to remove post image", zap.String("public_id", publicID), zap.Error(err))
	}
}
