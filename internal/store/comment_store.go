package store

import (
	"context"
	"errors"

	"blogapi/internal/models"

	"gorm.io/gorm"
)

type CommentStore struct {
	db *gorm.DB
}

func NewCommentStore(db *gorm.DB) *CommentStore {
	return &CommentStore{db: db}
}

func (s *CommentStore) Create(ctx context.Context, comment *models.Comment) error {
	return s.db.WithContext(ctx).Create(comment).Error
}

func (s *CommentStore) List(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("User").Order("created_at DESC, id DESC").Find(&comments).Error
	return comments, err
}

func (s *CommentStore) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

func (s *CommentStore) UpdateText(ctx context.Context, id uint, text string) (*models.Comment, error) {
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("text", text).Error; err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

func (s *CommentStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}
