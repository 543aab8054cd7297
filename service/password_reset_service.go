package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-auth-api/config"
	"go-auth-api/logger"
	"go-auth-api/repository"
)

// Notifier is the outbound notification contract. Delivery is best-effort;
// a failed send never rolls back state written before it.
type Notifier interface {
	Send(to, subject, body string) error
}

// PasswordResetService orchestrates the forgot/reset-password flow using
// single-use reset tokens in the token store and the notifier collaborator.
type PasswordResetService struct {
	userRepo repository.IUserRepository
	store    *TokenStore
	notifier Notifier
}

func NewPasswordResetService(userRepo repository.IUserRepository, store *TokenStore, notifier Notifier) *PasswordResetService {
	return &PasswordResetService{
		userRepo: userRepo,
		store:    store,
		notifier: notifier,
	}
}

// ForgotPassword creates a reset token for the account and emails a reset
// link. The email send runs asynchronously: a failure is logged but does not
// fail the request or undo the stored token.
func (s *PasswordResetService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	token, err := s.store.CreateResetToken(ctx, user.ID, config.ResetTokenTTL())
	if err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s?token=%s", config.AppConfig.JWT.ResetLinkBaseURL, token)
	go func() {
		err := s.notifier.Send(user.Email, "Password Reset",
			"Click here to reset your password: "+resetLink)
		if err != nil {
			logger.Log.WithError(err).WithField("email", user.Email).Error("Failed to send password reset email")
		}
	}()

	logger.Log.WithField("user_id", user.ID).Info("Password reset token created")
	return nil
}

// ResetPassword consumes a reset token and replaces the account's password
// hash. The atomic consume guarantees a token is accepted at most once.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.store.ConsumeResetToken(ctx, token)
	if err != nil {
		return err
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdateUserPassword(userID, hashedPassword); err != nil {
		return err
	}

	logger.Log.WithField("user_id", userID).Info("Password reset completed")
	return nil
}
