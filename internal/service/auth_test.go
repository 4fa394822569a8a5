package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Skotchmaster/yummy_recipes/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, RegisterInput{
		Username:        "test_user",
		Email:           "Test@Example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "test@example.com", u.Email)
	assert.NotEqual(t, "password123", u.PasswordHash)
	assert.True(t, f.svc.Hasher.Verify("password123", u.PasswordHash))
	assert.Equal(t, []string{events.UserRegistered}, f.events.types())
}

func TestAuthService_Register_Rejections(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.register(t, "taken_user", "password123")

	tests := []struct {
		name    string
		in      RegisterInput
		kind    error
		field   string
		message string
	}{
		{
			name:    "empty username",
			in:      RegisterInput{Email: "a@example.com", Password: "password123", ConfirmPassword: "password123"},
			kind:    ErrValidation,
			field:   "username_message",
			message: "Please enter username.",
		},
		{
			name:    "short password",
			in:      RegisterInput{Username: "fresh_user", Email: "a@example.com", Password: "short", ConfirmPassword: "short"},
			kind:    ErrValidation,
			field:   "password_message",
			message: "Password must be at least 8 characters.",
		},
		{
			name:    "duplicate username",
			in:      RegisterInput{Username: "taken_user", Email: "new@example.com", Password: "password123", ConfirmPassword: "password123"},
			kind:    ErrDuplicateIdentity,
			field:   "username_message",
			message: "This username is already taken.",
		},
		{
			name:    "duplicate email",
			in:      RegisterInput{Username: "other_user", Email: "taken_user@example.com", Password: "password123", ConfirmPassword: "password123"},
			kind:    ErrDuplicateIdentity,
			field:   "email_message",
			message: "This email address is already registered.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u, err := f.svc.Register(context.Background(), tt.in)
			require.Error(t, err)
			assert.Nil(t, u)
			assert.ErrorIs(t, err, tt.kind)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.message, verr.Fields[tt.field])
		})
	}
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.users.failing = true

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "test_user", Email: "t@example.com", Password: "password123", ConfirmPassword: "password123",
	})
	assert.ErrorIs(t, err, ErrInfrastructure)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	u := f.register(t, "test_user", "password123")

	res, err := f.svc.Login(context.Background(), "test_user", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, u.ID, res.User.ID)
	assert.True(t, f.clock.Now().Add(30*time.Minute).Equal(res.ExpiresAt))

	id, err := f.svc.Tokens.Decode(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
}

func TestAuthService_Login_Failures(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.register(t, "test_user", "password123")

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{name: "wrong password", username: "test_user", password: "password124", want: ErrInvalidCredentials},
		{name: "unknown user", username: "ghost_user", password: "password123", want: ErrInvalidCredentials},
		{name: "empty username", username: "", password: "password123", want: ErrValidation},
		{name: "empty password", username: "test_user", password: "", want: ErrValidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := f.svc.Login(context.Background(), tt.username, tt.password)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.users.failing = true

	_, err := f.svc.Login(context.Background(), "test_user", "password123")
	assert.ErrorIs(t, err, ErrInfrastructure)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.register(t, "test_user", "password123")

	err := f.svc.ChangePassword(ctx, u, ChangePasswordInput{
		CurrentPassword: "wrong-password", NewPassword: "new-password", ConfirmNewPassword: "new-password",
	})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = f.svc.ChangePassword(ctx, u, ChangePasswordInput{
		CurrentPassword: "password123", NewPassword: "new-password", ConfirmNewPassword: "mismatch-password",
	})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.svc.ChangePassword(ctx, u, ChangePasswordInput{
		CurrentPassword: "password123", NewPassword: "new-password", ConfirmNewPassword: "new-password",
	}))

	_, err = f.svc.Login(ctx, "test_user", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "test_user", "new-password")
	assert.NoError(t, err)

	assert.Contains(t, f.events.types(), events.PasswordChanged)
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "test_user", "password123")

	res, err := f.svc.Login(ctx, "test_user", "password123")
	require.NoError(t, err)

	id, err := f.svc.Authenticate(ctx, "Bearer "+res.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, id))
	require.NoError(t, f.svc.Logout(ctx, id))

	_, err = f.svc.Authenticate(ctx, "Bearer "+res.AccessToken)
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, ReasonInvalidToken, authErr.Reason)
}

func TestAuthService_Logout_StoreFailure(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	u := f.register(t, "test_user", "password123")
	f.ledger.failing = true

	err := f.svc.Logout(context.Background(), &Identity{Token: "tok", User: u, ExpiresAt: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, ErrInfrastructure)
}

func TestAuthService_PublishFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.events.err = errors.New("broker gone")

	f.register(t, "test_user", "password123")
	_, err := f.svc.Login(context.Background(), "test_user", "password123")
	assert.NoError(t, err)
}
