package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blogapi/internal/apperr"
	"blogapi/internal/models"
	"blogapi/internal/store"
	"blogapi/internal/utils"
)

// Confirmation messages returned by the auth flows.
const (
	MsgCheckEmail        = "Please check your email messages to verify your account"
	MsgEmailVerified     = "Email Verified. Please login"
	MsgResetLinkSent     = "Reset Password Link Sent To Your Email"
	MsgValidLink         = "Valid Link"
	MsgPasswordResetDone = "Password Reset Successfully Please Login"
)

// CredentialStore is the part of the user store the auth flows need.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, id uint, fields map[string]any) (*models.User, error)
}

type TokenStore interface {
	FindByUserID(ctx context.Context, userID uint) (*models.VerificationToken, error)
	FindByUserIDAndToken(ctx context.Context, userID uint, token string) (*models.VerificationToken, error)
	Create(ctx context.Context, t *models.VerificationToken) error
	DeleteByID(ctx context.Context, id uint) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type SessionIssuer interface {
	Sign(userID uint, isAdmin bool) (string, error)
}

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,min=5,max=100,email"`
	Password string `json:"password" binding:"required,password"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,min=5,max=100,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type EmailInput struct {
	Email string `json:"email" binding:"required,min=5,max=100,email"`
}

type NewPasswordInput struct {
	Password string `json:"password" binding:"required,password"`
}

// Session is what a successful login returns to the client.
type Session struct {
	ID           uint         `json:"id"`
	IsAdmin      bool         `json:"isAdmin"`
	ProfilePhoto models.Image `json:"profilePhoto"`
	Token        string       `json:"token"`
	Username     string       `json:"username"`
}

// AuthService runs registration, login gating, email verification and
// password reset. It is the only component that creates or deletes
// verification tokens.
type AuthService struct {
	users    CredentialStore
	tokens   TokenStore
	hasher   PasswordHasher
	sessions SessionIssuer
	mailer   Mailer
	baseURL  string

	newToken func() (string, error)
}

func NewAuthService(users CredentialStore, tokens TokenStore, hasher PasswordHasher,
	sessions SessionIssuer, mailer Mailer, baseURL string) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		sessions: sessions,
		mailer:   mailer,
		baseURL:  baseURL,
		newToken: GenerateToken,
	}
}

func validate(in any) error {
	if err := utils.Validate(in); err != nil {
		return apperr.Validation("%s", err.Error())
	}
	return nil
}

// Register creates an unverified account and mails a verification link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate(&in); err != nil {
		return "", err
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return "", apperr.Dependency("find user by email", err)
	}
	if existing != nil {
		return "", apperr.Conflict(apperr.MsgUserExists)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", apperr.Dependency("hash password", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		Password:     hash,
		ProfilePhoto: models.Image{URL: models.DefaultProfilePhotoURL},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return "", apperr.Conflict(apperr.MsgUserExists)
		}
		return "", apperr.Dependency("create user", err)
	}

	token, err := s.createToken(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if err := s.sendVerification(ctx, user, token); err != nil {
		return "", err
	}
	return MsgCheckEmail, nil
}

// Login returns a session for a verified account. An unverified account
// gets the verification email again and the login fails.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate(&in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperr.Dependency("find user by email", err)
	}
	if user == nil || !s.hasher.Verify(in.Password, user.Password) {
		return nil, apperr.InvalidCredentials()
	}

	if !user.IsAccountVerified {
		token, err := s.reuseOrCreateToken(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if err := s.sendVerification(ctx, user, token); err != nil {
			return nil, err
		}
		return nil, apperr.VerificationRequired(user.ID)
	}

	signed, err := s.sessions.Sign(user.ID, user.IsAdmin)
	if err != nil {
		return nil, apperr.Dependency("sign session", err)
	}
	return &Session{
		ID:           user.ID,
		IsAdmin:      user.IsAdmin,
		ProfilePhoto: user.ProfilePhoto,
		Token:        signed,
		Username:     user.Username,
	}, nil
}

// VerifyEmail marks the account verified and consumes the token.
func (s *AuthService) VerifyEmail(ctx context.Context, userID uint, token string) (string, error) {
	user, vt, err := s.resolveLink(ctx, userID, token)
	if err != nil {
		return "", err
	}

	if _, err := s.users.Update(ctx, user.ID, map[string]any{"is_account_verified": true}); err != nil {
		return "", apperr.Dependency("mark account verified", err)
	}
	if err := s.tokens.DeleteByID(ctx, vt.ID); err != nil {
		return "", apperr.Dependency("delete verification token", err)
	}
	return MsgEmailVerified, nil
}

// RequestPasswordReset mails a reset link. Unlike Login it reports an
// unknown email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, in EmailInput) (string, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate(&in); err != nil {
		return "", err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return "", apperr.Dependency("find user by email", err)
	}
	if user == nil {
		return "", apperr.EmailNotFound()
	}

	token, err := s.reuseOrCreateToken(ctx, user.ID)
	if err != nil {
		return "", err
	}

	html, err := renderEmail("reset.html", s.resetLink(user.ID, token))
	if err != nil {
		return "", apperr.Dependency("render reset email", err)
	}
	if err := s.mailer.Send(ctx, user.Email, SubjectResetPassword, html); err != nil {
		return "", apperr.Dependency("send reset email", err)
	}
	return MsgResetLinkSent, nil
}

// ValidateResetLink checks a reset link without consuming it.
func (s *AuthService) ValidateResetLink(ctx context.Context, userID uint, token string) (string, error) {
	if _, _, err := s.resolveLink(ctx, userID, token); err != nil {
		return "", err
	}
	return MsgValidLink, nil
}

// ResetPassword sets a new password and consumes the token. Completing a
// reset also verifies the account.
func (s *AuthService) ResetPassword(ctx context.Context, userID uint, token string, in NewPasswordInput) (string, error) {
	if err := validate(&in); err != nil {
		return "", err
	}

	user, vt, err := s.resolveLink(ctx, userID, token)
	if err != nil {
		return "", err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", apperr.Dependency("hash password", err)
	}

	fields := map[string]any{"password": hash}
	if !user.IsAccountVerified {
		fields["is_account_verified"] = true
	}
	if _, err := s.users.Update(ctx, user.ID, fields); err != nil {
		return "", apperr.Dependency("update password", err)
	}
	if err := s.tokens.DeleteByID(ctx, vt.ID); err != nil {
		return "", apperr.Dependency("delete verification token", err)
	}
	return MsgPasswordResetDone, nil
}

// resolveLink finds the user and the exact (user, token) record. Every
// miss yields the same InvalidLink error.
func (s *AuthService) resolveLink(ctx context.Context, userID uint, token string) (*models.User, *models.VerificationToken, error) {
	if userID == 0 || token == "" {
		return nil, nil, apperr.InvalidLink()
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, apperr.Dependency("find user by id", err)
	}
	if user == nil {
		return nil, nil, apperr.InvalidLink()
	}

	vt, err := s.tokens.FindByUserIDAndToken(ctx, user.ID, token)
	if err != nil {
		return nil, nil, apperr.Dependency("find verification token", err)
	}
	if vt == nil {
		return nil, nil, apperr.InvalidLink()
	}
	return user, vt, nil
}

// reuseOrCreateToken returns the user's existing token, minting one only
// when none exists. Two concurrent callers may both mint.
func (s *AuthService) reuseOrCreateToken(ctx context.Context, userID uint) (string, error) {
	existing, err := s.tokens.FindByUserID(ctx, userID)
	if err != nil {
		return "", apperr.Dependency("find verification token", err)
	}
	if existing != nil {
		return existing.Token, nil
	}
	return s.createToken(ctx, userID)
}

func (s *AuthService) createToken(ctx context.Context, userID uint) (string, error) {
	token, err := s.newToken()
	if err != nil {
		return "", apperr.Dependency("generate token", err)
	}
	if err := s.tokens.Create(ctx, &models.VerificationToken{UserID: userID, Token: token}); err != nil {
		return "", apperr.Dependency("create verification token", err)
	}
	return token, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User, token string) error {
	html, err := renderEmail("verify.html", s.verifyLink(user.ID, token))
	if err != nil {
		return apperr.Dependency("render verification email", err)
	}
	if err := s.mailer.Send(ctx, user.Email, SubjectVerifyEmail, html); err != nil {
		return apperr.Dependency("send verification email", err)
	}
	return nil
}

func (s *AuthService) verifyLink(userID uint, token string) string {
	return fmt.Sprintf("%s/users/%d/verify/%s", s.baseURL, userID, token)
}

func (s *AuthService) resetLink(userID uint, token string) string {
	return fmt.Sprintf("%s/reset-password/%d/%s", s.baseURL, userID, token)
}
