package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"daisy/internal/domain"
	"daisy/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if u.ID == 0 {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) UpdateUsername(ctx context.Context, id int64, username string) error {
	args := m.Called(ctx, id, username)
	return args.Error(0)
}

type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func TestService_Register_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, repository.ErrNotFound)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "test@example.com" && u.Username == "tester" && u.IsActive && !u.IsStaff
	})).Return(nil)
	jwtSvc.On("GenerateToken", int64(1), "user").Return("fake-jwt-token", nil)

	service := NewService(userRepo, jwtSvc)

	user, token, err := service.Register(context.Background(), RegisterRequest{
		Email:    " Test@Example.com",
		Username: "tester",
		Password: "securepass123",
	})

	require.NoError(t, err)
	assert.Equal(t, "fake-jwt-token", token)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("securepass123")))

	userRepo.AssertExpectations(t)
	jwtSvc.AssertExpectations(t)
}

func TestService_Register_EmailExists(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, "exists@example.com").Return(&domain.User{ID: 3}, nil)

	service := NewService(userRepo, new(mockJWTService))

	_, _, err := service.Register(context.Background(), RegisterRequest{Email: "exists@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Login(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	existing := &domain.User{ID: 10, Email: "user@example.com", PasswordHash: string(hashed), IsActive: true, IsStaff: true}

	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)
	userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(existing, nil)
	userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound)
	jwtSvc.On("GenerateToken", int64(10), "admin").Return("login-token", nil)

	service := NewService(userRepo, jwtSvc)
	ctx := context.Background()

	_, token, err := service.Login(ctx, LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "login-token", token)

	_, _, err = service.Login(ctx, LoginRequest{Email: "user@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = service.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestService_Login_Inactive(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	userRepo := new(mockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, "off@example.com").
		Return(&domain.User{ID: 4, PasswordHash: string(hashed)}, nil)

	_, _, err := NewService(userRepo, new(mockJWTService)).
		Login(context.Background(), LoginRequest{Email: "off@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInactive)
}

func TestService_SetUsername(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("UpdateUsername", mock.Anything, int64(5), "neo").Return(nil)
	userRepo.On("GetByID", mock.Anything, int64(5)).Return(&domain.User{ID: 5, Username: "neo"}, nil)
	userRepo.On("UpdateUsername", mock.Anything, int64(6), "x").Return(repository.ErrNotFound)

	service := NewService(userRepo, new(mockJWTService))

	u, err := service.SetUsername(context.Background(), 5, " neo ")
	require.NoError(t, err)
	assert.Equal(t, "neo", u.Username)

	_, err = service.SetUsername(context.Background(), 6, "x")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
