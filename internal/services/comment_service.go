package services

import (
	"context"
	"strings"

	"blogapi/internal/apperr"
	"blogapi/internal/models"
)

const (
	MsgCommentNotFound = "Comment Not Found"
	MsgCommentDeleted  = "Comment Has Been Deleted!"
)

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	List(ctx context.Context) ([]models.Comment, error)
	FindByID(ctx context.Context, id uint) (*models.Comment, error)
	UpdateText(ctx context.Context, id uint, text string) (*models.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type CreateCommentInput struct {
	PostID uint   `json:"postId" binding:"required,gt=0"`
	Text   string `json:"text" binding:"required,min=1"`
}

type UpdateCommentInput struct {
	Text string `json:"text" binding:"required,min=1"`
}

type CommentService struct {
	comments CommentStore
	users    interface {
		FindByID(ctx context.Context, id uint) (*models.User, error)
	}
	posts interface {
		FindByID(ctx context.Context, id uint) (*models.Post, error)
	}
}

func NewCommentService(comments CommentStore, users UserStore, posts PostStore) *CommentService {
	return &CommentService{comments: comments, users: users, posts: posts}
}

// Create stores a comment under the author's current username.
func (s *CommentService) Create(ctx context.Context, author uint, in CreateCommentInput) (*models.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validate(&in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, author)
	if err != nil {
		return nil, apperr.Dependency("find user by id", err)
	}
	if user == nil {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	post, err := s.posts.FindByID(ctx, in.PostID)
	if err != nil {
		return nil, apperr.Dependency("find post", err)
	}
	if post == nil {
		return nil, apperr.NotFound(MsgPostNotFound)
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		UserID:   author,
		Text:     in.Text,
		Username: user.Username,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperr.Dependency("create comment", err)
	}
	return comment, nil
}

func (s *CommentService) List(ctx context.Context) ([]models.Comment, error) {
	comments, err := s.comments.List(ctx)
	if err != nil {
		return nil, apperr.Dependency("list comments", err)
	}
	return comments, nil
}

// Delete is allowed to admins and to the comment's author.
func (s *CommentService) Delete(ctx context.Context, actor Actor, id uint) error {
	comment, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin && actor.ID != comment.UserID {
		return apperr.Forbidden(MsgAccessDenied)
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return apperr.Dependency("delete comment", err)
	}
	return nil
}

func (s *CommentService) Update(ctx context.Context, actor Actor, id uint, in UpdateCommentInput) (*models.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validate(&in); err != nil {
		return nil, err
	}

	comment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != comment.UserID {
		return nil, apperr.Forbidden(MsgAccessDenied)
	}

	updated, err := s.comments.UpdateText(ctx, id, in.Text)
	if err != nil {
		return nil, apperr.Dependency("update comment", err)
	}
	return updated, nil
}

func (s *CommentService) find(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("find comment", err)
	}
	if comment == nil {
		return nil, apperr.NotFound(MsgCommentNotFound)
	}
	return comment, nil
}
