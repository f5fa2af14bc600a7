package service

import (
	"context"
	"testing"
	"time"

	"claude-chat/internal/anthropic"
	"claude-chat/internal/domain"
	"claude-chat/internal/security"
	"claude-chat/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestSessionStore(t *testing.T) *session.Store {
	t.Helper()
	encryptor, err := security.NewEncryptorFromSecret("test-secret")
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}
	return session.NewStore(time.Hour, encryptor)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockVerifier := new(MockVerifier)
		sessions := newTestSessionStore(t)
		svc := NewAuthService(mockUsers, mockVerifier, sessions)

		user := &domain.User{ID: uuid.New(), AnthropicUserID: "abc123"}
		mockVerifier.On("Verify", ctx, "sk-ant-valid").Return(&anthropic.Identity{AnthropicUserID: "abc123"}, nil)
		mockUsers.On("GetOrCreate", ctx, "abc123").Return(user, nil)
		mockUsers.On("TouchLastLogin", ctx, user.ID, mock.AnythingOfType("time.Time")).Return(nil)

		result, err := svc.Login(ctx, "sk-ant-valid")
		assert.NoError(t, err)
		assert.Equal(t, user, result.User)
		assert.NotEmpty(t, result.SessionToken)
		assert.True(t, result.ExpiresAt.After(time.Now()))

		// The issued token resolves to the user and carries the credential.
		sess, ok := sessions.Validate(result.SessionToken)
		assert.True(t, ok)
		assert.Equal(t, user.ID, sess.UserID)
		assert.Equal(t, "sk-ant-valid", sess.Credential)

		mockVerifier.AssertExpectations(t)
		mockUsers.AssertExpectations(t)
	})

	t.Run("credential is trimmed before verification", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockVerifier := new(MockVerifier)
		sessions := newTestSessionStore(t)
		svc := NewAuthService(mockUsers, mockVerifier, sessions)

		user := &domain.User{ID: uuid.New(), AnthropicUserID: "abc123"}
		mockVerifier.On("Verify", ctx, "sk-ant-valid").Return(&anthropic.Identity{AnthropicUserID: "abc123"}, nil)
		mockUsers.On("GetOrCreate", ctx, "abc123").Return(user, nil)
		mockUsers.On("TouchLastLogin", ctx, user.ID, mock.AnythingOfType("time.Time")).Return(nil)

		_, err := svc.Login(ctx, "  sk-ant-valid\n")
		assert.NoError(t, err)
		mockVerifier.AssertExpectations(t)
	})

	t.Run("invalid credential", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockVerifier := new(MockVerifier)
		sessions := newTestSessionStore(t)
		svc := NewAuthService(mockUsers, mockVerifier, sessions)

		mockVerifier.On("Verify", ctx, "bad").Return(nil, domain.ErrInvalidCredential)

		result, err := svc.Login(ctx, "bad")
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
		assert.Nil(t, result)

		// No session, no user row.
		assert.Equal(t, 0, sessions.Len())
		mockUsers.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
	})

	t.Run("last login failure does not block login", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockVerifier := new(MockVerifier)
		sessions := newTestSessionStore(t)
		svc := NewAuthService(mockUsers, mockVerifier, sessions)

		user := &domain.User{ID: uuid.New(), AnthropicUserID: "abc123"}
		mockVerifier.On("Verify", ctx, "sk-ant-valid").Return(&anthropic.Identity{AnthropicUserID: "abc123"}, nil)
		mockUsers.On("GetOrCreate", ctx, "abc123").Return(user, nil)
		mockUsers.On("TouchLastLogin", ctx, user.ID, mock.AnythingOfType("time.Time")).Return(assert.AnError)

		result, err := svc.Login(ctx, "sk-ant-valid")
		assert.NoError(t, err)
		assert.NotEmpty(t, result.SessionToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockVerifier := new(MockVerifier)
	sessions := newTestSessionStore(t)
	svc := NewAuthService(mockUsers, mockVerifier, sessions)

	token, _, err := sessions.Create(uuid.New(), "sk-ant-valid")
	assert.NoError(t, err)

	svc.Logout(token)
	_, ok := sessions.Validate(token)
	assert.False(t, ok)

	// Idempotent.
	svc.Logout(token)
	svc.Logout("never-existed")
}
