package services

import (
	"context"
	"io"
	"strings"

	"blogapi/internal/apperr"
	"blogapi/internal/models"

	"go.uber.org/zap"
)

const (
	MsgUserNotFound  = "User Not Found!"
	MsgUserDeleted   = "User Deleted Successfully!"
	MsgPhotoUploaded = "your profile photo uploaded successfully"
)

type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindProfile(ctx context.Context, id uint) (*models.User, error)
	Update(ctx context.Context, id uint, fields map[string]any) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint) error
}

// PostImages lists the storage images owned through a user's posts.
type PostImages interface {
	ImagesByUser(ctx context.Context, userID uint) ([]models.Image, error)
}

// UpdateUserInput carries the optional profile fields. Nil means unchanged.
type UpdateUserInput struct {
	Username *string `json:"username" binding:"omitempty,min=2,max=100"`
	Password *string `json:"password" binding:"omitempty,password"`
	Bio      *string `json:"bio"`
}

type UserService struct {
	users   UserStore
	posts   PostImages
	hasher  PasswordHasher
	storage ImageStorage
	log     *zap.Logger
}

func NewUserService(users UserStore, posts PostImages, hasher PasswordHasher, storage ImageStorage, log *zap.Logger) *UserService {
	return &UserService{users: users, posts: posts, hasher: hasher, storage: storage, log: log}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Dependency("list users", err)
	}
	return users, nil
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return 0, apperr.Dependency("count users", err)
	}
	return n, nil
}

// Profile returns the user with their posts.
func (s *UserService) Profile(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindProfile(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("find user profile", err)
	}
	if user == nil {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		in.Username = &trimmed
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Username != nil {
		fields["username"] = *in.Username
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, apperr.Dependency("hash password", err)
		}
		fields["password"] = hash
	}

	if len(fields) == 0 {
		return s.Profile(ctx, id)
	}

	user, err := s.users.Update(ctx, id, fields)
	if err != nil {
		return nil, apperr.Dependency("update user", err)
	}
	if user == nil {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	return s.Profile(ctx, user.ID)
}

// UploadPhoto stores a new profile photo and removes the previous upload.
func (s *UserService) UploadPhoto(ctx context.Context, id uint, body io.Reader, size int64, contentType, filename string) (models.Image, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.Image{}, apperr.Dependency("find user by id", err)
	}
	if user == nil {
		return models.Image{}, apperr.NotFound(MsgUserNotFound)
	}

	img, err := s.storage.Upload(ctx, body, size, contentType, filename)
	if err != nil {
		return models.Image{}, apperr.Dependency("upload profile photo", err)
	}

	if _, err := s.users.Update(ctx, id, map[string]any{
		"profile_photo_url":       img.URL,
		"profile_photo_public_id": img.PublicID,
	}); err != nil {
		return models.Image{}, apperr.Dependency("save profile photo", err)
	}

	if old := user.ProfilePhoto.PublicID; old != "" {
		if err := s.storage.Remove(ctx, old); err != nil {
			// 旧图删除失败不影响新头像
			s.log.Warn("failed to remove old profile photo", zap.Uint("user_id", id), zap.Error(err))
		}
	}
	return img, nil
}

// Delete removes the account with its posts, comments, likes and tokens,
// and the images it owns in storage.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return apperr.Dependency("find user by id", err)
	}
	if user == nil {
		return apperr.NotFound("User Not Found")
	}

	images, err := s.posts.ImagesByUser(ctx, id)
	if err != nil {
		return apperr.Dependency("list post images", err)
	}
	ids := make([]string, 0, len(images)+1)
	for _, img := range images {
		ids = append(ids, img.PublicID)
	}
	ids = append(ids, user.ProfilePhoto.PublicID)
	if err := s.storage.RemoveMany(ctx, ids); err != nil {
		return apperr.Dependency("remove user images", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return apperr.Dependency("delete user", err)
	}
	return nil
}
