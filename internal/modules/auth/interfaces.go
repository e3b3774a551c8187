package auth

import (
	"context"

	"daisy/internal/domain"
)

// UserRepositoryInterface lists the user store calls the auth service makes.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateUsername(ctx context.Context, id int64, username string) error
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}
