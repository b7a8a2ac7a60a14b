package store

import (
	"context"
	"errors"

	"blogapi/internal/models"

	"gorm.io/gorm"
)

// PostsPerPage is the page size of the paginated post listing.
const PostsPerPage = 3

type PostQuery struct {
	Page     int    // 1-based; 0 disables pagination
	Category string // exact match; ignored when Page is set
}

type PostStore struct {
	db *gorm.DB
}

func NewPostStore(db *gorm.DB) *PostStore {
	return &PostStore{db: db}
}

func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

// List returns posts newest first with their authors.
func (s *PostStore) List(ctx context.Context, q PostQuery) ([]models.Post, error) {
	tx := s.db.WithContext(ctx).Preload("User").Preload("Likes").Order("created_at DESC, id DESC")
	switch {
	case q.Page > 0:
		tx = tx.Offset((q.Page - 1) * PostsPerPage).Limit(PostsPerPage)
	case q.Category != "":
		tx = tx.Where("category = ?", q.Category)
	}

	var posts []models.Post
	err := tx.Find(&posts).Error
	return posts, err
}

func (s *PostStore) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// FindDetail loads a post with author, likes and comments.
func (s *PostStore) FindDetail(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Likes").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at DESC") }).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}

// ImagesByUser returns the stored images of every post the user owns.
func (s *PostStore) ImagesByUser(ctx context.Context, userID uint) ([]models.Image, error) {
	var posts []models.Post
	if err := s.db.WithContext(ctx).Select("id", "image_url", "image_public_id").Where("user_id = ?", userID).Find(&posts).Error; err != nil {
		return nil, err
	}
	images := make([]models.Image, 0, len(posts))
	for _, p := range posts {
		images = append(images, p.Image)
	}
	return images, nil
}

func (s *PostStore) Update(ctx context.Context, id uint, fields map[string]any) (*models.Post, error) {
	if len(fields) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	return s.FindDetail(ctx, id)
}

// Delete removes the post with its comments and likes.
func (s *PostStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_likes WHERE post_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// ToggleLike adds the user to the post's likes, or removes them when they
// already liked it. The updated post is returned.
func (s *PostStore) ToggleLike(ctx context.Context, postID, userID uint) (*models.Post, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var liked int64
		if err := tx.Table("post_likes").Where("post_id = ? AND user_id = ?", postID, userID).Count(&liked).Error; err != nil {
			return err
		}
		if liked > 0 {
			return tx.Exec("DELETE FROM post_likes WHERE post_id = ? AND user_id = ?", postID, userID).Error
		}
		return tx.Exec("INSERT INTO post_likes (post_id, user_id) VALUES (?, ?)", postID, userID).Error
	})
	if err != nil {
		return nil, err
	}
	return s.FindDetail(ctx, postID)
}
