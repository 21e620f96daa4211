package services_test

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/opiquem/blog-app-be/internal/models"
	"github.com/opiquem/blog-app-be/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

var notFound = models.NewNotFoundError("User")

func TestAuthService_RegisterUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	input := services.RegisterInput{Username: "testuser", Email: "test@example.com", Password: "password123"}

	// successful registration stores a bcrypt hash
	mockRepo.On("GetByUsername", ctx, input.Username).Return(nil, notFound).Once()
	mockRepo.On("GetByEmail", ctx, input.Email).Return(nil, notFound).Once()
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "testuser" &&
			bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("password123")) == nil
	})).Return(nil).Once()

	user, err := authService.RegisterUser(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NotEqual(t, "password123", user.Password)
	mockRepo.AssertExpectations(t)

	// username already taken
	mockRepo.On("GetByUsername", ctx, input.Username).Return(&models.User{ID: "1"}, nil).Once()
	_, err = authService.RegisterUser(ctx, input)
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
	assert.Contains(t, err.Error(), "username 'testuser' already taken")

	// email already registered
	mockRepo.On("GetByUsername", ctx, input.Username).Return(nil, notFound).Once()
	mockRepo.On("GetByEmail", ctx, input.Email).Return(&models.User{ID: "1"}, nil).Once()
	_, err = authService.RegisterUser(ctx, input)
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
	assert.Contains(t, err.Error(), "email 'test@example.com' already registered")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		ID:       "user-123",
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	got, token, err := authService.LoginUser(ctx, "test@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, token)

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "testuser", claims["username"])

	// wrong password
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	_, _, err = authService.LoginUser(ctx, "test@example.com", "wrongpassword")
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

	// unknown email
	mockRepo.On("GetByEmail", ctx, "nouser@example.com").Return(nil, notFound).Once()
	_, _, err = authService.LoginUser(ctx, "nouser@example.com", "password123")
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	secret := "test_jwt_secret"
	authService := services.NewAuthService(new(MockUserRepository), secret)

	sign := func(claims jwt.MapClaims, key string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
		require.NoError(t, err)
		return s
	}

	valid := sign(jwt.MapClaims{"user_id": "u1", "username": "jake", "exp": time.Now().Add(time.Hour).Unix()}, secret)
	claims, err := authService.ValidateToken(valid)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["user_id"])

	expired := sign(jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(-time.Hour).Unix()}, secret)
	_, err = authService.ValidateToken(expired)
	assert.Error(t, err)

	wrongKey := sign(jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(time.Hour).Unix()}, "other")
	_, err = authService.ValidateToken(wrongKey)
	assert.Error(t, err)

	noUser := sign(jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, secret)
	_, err = authService.ValidateToken(noUser)
	assert.Error(t, err)

	_, err = authService.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestAuthService_UpdateUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	current := &models.User{ID: "u1", Username: "jake", Email: "jake@example.com", Password: "hash"}
	newBio := "I work at statefarm"
	newName := "jacob"

	mockRepo.On("GetByID", ctx, "u1").Return(current, nil).Once()
	mockRepo.On("GetByUsername", ctx, newName).Return(nil, notFound).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == newName && u.Bio == newBio && u.Email == "jake@example.com" && u.Password == "hash"
	})).Return(nil).Once()

	updated, err := authService.UpdateUser(ctx, "u1", services.UpdateUserInput{Bio: &newBio, Username: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Username)

	taken := "celeb"
	mockRepo.On("GetByID", ctx, "u1").Return(&models.User{ID: "u1", Username: "jacob"}, nil).Once()
	mockRepo.On("GetByUsername", ctx, taken).Return(&models.User{ID: "u2", Username: taken}, nil).Once()
	_, err = authService.UpdateUser(ctx, "u1", services.UpdateUserInput{Username: &taken})
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))

	mockRepo.On("GetByID", ctx, "ghost").Return(nil, notFound).Once()
	_, err = authService.UpdateUser(ctx, "ghost", services.UpdateUserInput{Bio: &newBio})
	assert.True(t, models.IsNotFound(err))
	mockRepo.AssertExpectations(t)
}
