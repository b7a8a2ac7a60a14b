package store

import (
	"context"
	"errors"

	"blogapi/internal/models"

	"gorm.io/gorm"
)

// TokenStore persists verification/reset tokens. It does not enforce one
// token per user; callers look up before creating.
type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

// FindByUserID returns the oldest token of the user.
func (s *TokenStore) FindByUserID(ctx context.Context, userID uint) (*models.VerificationToken, error) {
	var token models.VerificationToken
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (s *TokenStore) FindByUserIDAndToken(ctx context.Context, userID uint, token string) (*models.VerificationToken, error) {
	var vt models.VerificationToken
	if err := s.db.WithContext(ctx).Where("user_id = ? AND token = ?", userID, token).First(&vt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vt, nil
}

func (s *TokenStore) Create(ctx context.Context, token *models.VerificationToken) error {
	return s.db.WithContext(ctx).Create(token).Error
}

func (s *TokenStore) DeleteByID(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.VerificationToken{}, id).Error
}
