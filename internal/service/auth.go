package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/yummy_recipes/internal/events"
	"github.com/Skotchmaster/yummy_recipes/internal/hash"
	"github.com/Skotchmaster/yummy_recipes/internal/logging"
	"github.com/Skotchmaster/yummy_recipes/internal/models"
	"github.com/Skotchmaster/yummy_recipes/internal/repo"
	"github.com/Skotchmaster/yummy_recipes/internal/tokens"
	"github.com/Skotchmaster/yummy_recipes/internal/validation"
)

type AuthService struct {
	Users  CredentialStore
	Ledger RevocationLedger
	Hasher *hash.Hasher
	Tokens *tokens.Codec
	Events events.Publisher
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

type ChangePasswordInput struct {
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *models.User
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if errs := validation.Registration(username, email, in.Password, in.ConfirmPassword); errs != nil {
		l.Info("register_rejected", "reason", "validation", "fields", len(errs))
		return nil, invalid(errs)
	}

	pwHash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, infra("hash password", err)
	}

	user := &models.User{Username: username, Email: email, PasswordHash: pwHash}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		var dup *repo.DuplicateError
		if errors.As(err, &dup) {
			l.Info("register_rejected", "reason", "duplicate", "field", dup.Field)
			if dup.Field == "username" {
				return nil, duplicate("username", "This username is already taken.")
			}
			return nil, duplicate("email", "This email address is already registered.")
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, infra("create user", err)
	}

	l.Info("register_successful", "user_id", user.ID)
	publish(ctx, s.Events, userKey(user.ID), events.New(events.UserRegistered, user.ID, map[string]any{"username": user.Username}))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if errs := validation.Login(username, password); errs != nil {
		return nil, invalid(errs)
	}

	user, err := s.Users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, infra("find user", err)
	}
	if user == nil || !s.Hasher.Verify(password, user.PasswordHash) {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Tokens.Issue(user.ID)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, infra("issue token", err)
	}

	l.Info("login_successful", "user_id", user.ID)
	publish(ctx, s.Events, userKey(user.ID), events.New(events.UserLoggedIn, user.ID, nil))
	return &LoginResult{AccessToken: token, ExpiresAt: exp, User: user}, nil
}

// ChangePassword requires the caller to prove the current password before replacing it.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, in ChangePasswordInput) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", user.ID)

	if errs := validation.ChangePassword(in.CurrentPassword, in.NewPassword, in.ConfirmNewPassword); errs != nil {
		return invalid(errs)
	}
	if !s.Hasher.Verify(in.CurrentPassword, user.PasswordHash) {
		l.Warn("change_password_failed", "status", 401, "reason", "wrong current password")
		return ErrWrongPassword
	}

	pwHash, err := s.Hasher.Hash(in.NewPassword)
	if err != nil {
		return infra("hash password", err)
	}
	user.PasswordHash = pwHash
	if err := s.Users.SaveUser(ctx, user); err != nil {
		l.Error("change_password_failed", "status", 500, "error", err)
		return infra("save user", err)
	}

	l.Info("password_changed")
	publish(ctx, s.Events, userKey(user.ID), events.New(events.PasswordChanged, user.ID, nil))
	return nil
}

// Logout revokes the presented token. Revoking an already revoked token succeeds.
func (s *AuthService) Logout(ctx context.Context, id *Identity) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout", "user_id", id.User.ID)

	if err := s.Ledger.Revoke(ctx, id.Token, id.ExpiresAt); err != nil {
		if errors.Is(err, repo.ErrAlreadyRevoked) {
			l.Info("logout_repeated")
			return nil
		}
		l.Error("logout_failed", "status", 500, "reason", "cannot revoke token", "error", err)
		return infra("revoke token", err)
	}

	l.Info("logout_successful")
	publish(ctx, s.Events, userKey(id.User.ID), events.New(events.UserLoggedOut, id.User.ID, nil))
	return nil
}

func userKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
