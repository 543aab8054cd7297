package service

import (
	"context"
	"database/sql"
	"go-auth-api/model"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}
func (m *mockUserRepo) GetUserByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) UpdateUserPassword(id int, hashedPassword string) error {
	args := m.Called(id, hashedPassword)
	return args.Error(0)
}

type mockCacheClient struct{ mock.Mock }

func (m *mockCacheClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}
func (m *mockCacheClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}
func (m *mockCacheClient) GetDel(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}
func (m *mockCacheClient) Keys(ctx context.Context, pattern string) *redis.StringSliceCmd {
	args := m.Called(ctx, pattern)
	return args.Get(0).(*redis.StringSliceCmd)
}

// TestAuthService_HashAndCheckPassword ensures that password hashing and verification work correctly.
func TestAuthService_HashAndCheckPassword(t *testing.T) {
	password := "mySecretPassword123"

	hashedPassword, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() returned an unexpected error: %v", err)
	}

	if hashedPassword == password {
		t.Errorf("Hashed password should not be the same as the original password.")
	}

	if !CheckPasswordHash(password, hashedPassword) {
		t.Errorf("CheckPasswordHash() should have returned true for a matching password, but got false.")
	}

	if CheckPasswordHash("notMyPassword", hashedPassword) {
		t.Errorf("CheckPasswordHash() should have returned false for a non-matching password, but got true.")
	}

	// A malformed hash is a mismatch, never a panic or error.
	if CheckPasswordHash(password, "not-a-bcrypt-hash") {
		t.Errorf("CheckPasswordHash() should have returned false for a malformed hash.")
	}
}

func TestAuthService_LoginAndCurrentUser(t *testing.T) {
	password := "password123"
	hashedPassword, err := HashPassword(password)
	assert.NoError(t, err)
	user := &model.User{ID: 7, Username: "alice", Email: "alice@test.com", Password: hashedPassword}

	t.Run("login then current_user resolves the same user", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockCache := new(mockCacheClient)
		authService := NewAuthService(mockRepo, NewTokenService(), NewTokenStore(mockCache))

		mockRepo.On("GetUserByEmail", user.Email).Return(user, nil).Once()
		pair, err := authService.Login(user.Email, password)
		assert.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, "bearer", pair.TokenType)

		mockCache.On("Get", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "revoked:")
		})).Return(redis.NewStringResult("", redis.Nil)).Once()
		mockRepo.On("GetUserByID", user.ID).Return(user, nil).Once()

		got, err := authService.CurrentUser(context.Background(), pair.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Email, got.Email)
		mockRepo.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService := NewAuthService(mockRepo, NewTokenService(), NewTokenStore(new(mockCacheClient)))

		mockRepo.On("GetUserByEmail", "nobody@test.com").Return(nil, sql.ErrNoRows).Once()
		_, err := authService.Login("nobody@test.com", password)
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		mockRepo.On("GetUserByEmail", user.Email).Return(user, nil).Once()
		_, err = authService.Login(user.Email, "wrongpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_CurrentUserRejectsRefreshScope(t *testing.T) {
	mockRepo := new(mockUserRepo)
	mockCache := new(mockCacheClient)
	tokenService := NewTokenService()
	authService := NewAuthService(mockRepo, tokenService, NewTokenStore(mockCache))

	refreshToken, err := tokenService.IssueRefreshToken(7)
	assert.NoError(t, err)

	_, err = authService.CurrentUser(context.Background(), refreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Scope is checked before the store or the user repository are touched.
	mockCache.AssertNotCalled(t, "Get")
	mockRepo.AssertNotCalled(t, "GetUserByID")
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	user := &model.User{ID: 3, Email: "bob@test.com"}
	tokenService := NewTokenService()

	accessToken, err := tokenService.IssueAccessToken(user.ID, user.Email)
	assert.NoError(t, err)
	claims, err := tokenService.DecodeToken(accessToken)
	assert.NoError(t, err)

	t.Run("revocation entry TTL equals remaining lifetime", func(t *testing.T) {
		mockCache := new(mockCacheClient)
		authService := NewAuthService(new(mockUserRepo), tokenService, NewTokenStore(mockCache))

		// Issued with a 15 minute TTL; by revocation time the remainder
		// must be within [895s, 900s].
		mockCache.On("Set", mock.Anything, "revoked:"+claims.ID, "true", mock.MatchedBy(func(ttl time.Duration) bool {
			return ttl >= 895*time.Second && ttl <= 900*time.Second
		})).Return(redis.NewStatusResult("OK", nil)).Once()

		err := authService.Logout(context.Background(), accessToken)
		assert.NoError(t, err)
		mockCache.AssertExpectations(t)
	})

	t.Run("revoked token is rejected by current_user", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockCache := new(mockCacheClient)
		authService := NewAuthService(mockRepo, tokenService, NewTokenStore(mockCache))

		mockCache.On("Get", mock.Anything, "revoked:"+claims.ID).Return(redis.NewStringResult("true", nil)).Once()

		_, err := authService.CurrentUser(context.Background(), accessToken)
		assert.ErrorIs(t, err, ErrTokenRevoked)
		mockRepo.AssertNotCalled(t, "GetUserByID")
	})

	t.Run("revocation is per jti, not per subject", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockCache := new(mockCacheClient)
		authService := NewAuthService(mockRepo, tokenService, NewTokenStore(mockCache))

		// A fresh token for the same subject carries a new jti and stays valid.
		newToken, err := tokenService.IssueAccessToken(user.ID, user.Email)
		assert.NoError(t, err)
		newClaims, err := tokenService.DecodeToken(newToken)
		assert.NoError(t, err)
		assert.NotEqual(t, claims.ID, newClaims.ID)

		mockCache.On("Get", mock.Anything, "revoked:"+newClaims.ID).Return(redis.NewStringResult("", redis.Nil)).Once()
		mockRepo.On("GetUserByID", user.ID).Return(user, nil).Once()

		got, err := authService.CurrentUser(context.Background(), newToken)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("logout of a refresh-scoped token fails", func(t *testing.T) {
		mockCache := new(mockCacheClient)
		authService := NewAuthService(new(mockUserRepo), tokenService, NewTokenStore(mockCache))

		refreshToken, err := tokenService.IssueRefreshToken(user.ID)
		assert.NoError(t, err)

		err = authService.Logout(context.Background(), refreshToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
		mockCache.AssertNotCalled(t, "Set")
	})
}

func TestAuthService_Refresh(t *testing.T) {
	user := &model.User{ID: 5, Email: "carol@test.com"}
	tokenService := NewTokenService()

	t.Run("returns the identical refresh token", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService := NewAuthService(mockRepo, tokenService, NewTokenStore(new(mockCacheClient)))

		refreshToken, err := tokenService.IssueRefreshToken(user.ID)
		assert.NoError(t, err)
		mockRepo.On("GetUserByID", user.ID).Return(user, nil).Once()

		pair, err := authService.Refresh(refreshToken)
		assert.NoError(t, err)
		assert.Equal(t, refreshToken, pair.RefreshToken, "Refresh must not rotate the refresh token")

		claims, err := tokenService.DecodeToken(pair.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, model.ScopeAccess, claims.Scope)
		assert.Equal(t, user.Email, claims.Email)
	})

	t.Run("access-scoped token is rejected", func(t *testing.T) {
		authService := NewAuthService(new(mockUserRepo), tokenService, NewTokenStore(new(mockCacheClient)))

		accessToken, err := tokenService.IssueAccessToken(user.ID, user.Email)
		assert.NoError(t, err)

		_, err = authService.Refresh(accessToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("missing user is reported distinctly", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService := NewAuthService(mockRepo, tokenService, NewTokenStore(new(mockCacheClient)))

		refreshToken, err := tokenService.IssueRefreshToken(404)
		assert.NoError(t, err)
		mockRepo.On("GetUserByID", 404).Return(nil, sql.ErrNoRows).Once()

		_, err = authService.Refresh(refreshToken)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestAuthService_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService := NewAuthService(mockRepo, NewTokenService(), NewTokenStore(new(mockCacheClient)))

		mockRepo.On("GetUserByEmail", "new@test.com").Return(nil, sql.ErrNoRows).Once()
		mockRepo.On("CreateUser", mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "new@test.com" && CheckPasswordHash("password123", u.Password)
		})).Return(nil).Once()

		user, err := authService.Register("newuser", "new@test.com", "password123")
		assert.NoError(t, err)
		assert.Equal(t, "newuser", user.Username)
		mockRepo.AssertExpectations(t)
	})

	t.Run("duplicate email conflicts without insert", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService := NewAuthService(mockRepo, NewTokenService(), NewTokenStore(new(mockCacheClient)))

		existing := &model.User{ID: 1, Email: "taken@test.com"}
		mockRepo.On("GetUserByEmail", "taken@test.com").Return(existing, nil).Once()

		_, err := authService.Register("someone", "taken@test.com", "password123")
		assert.ErrorIs(t, err, ErrEmailTaken)
		mockRepo.AssertNotCalled(t, "CreateUser")
	})
}
