package auth

import "daisy/internal/domain"

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Username string `json:"username" binding:"omitempty,max=150"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetUsernameRequest struct {
	Username string `json:"username" binding:"required,max=150"`
}

type UserPublic struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

func toPublic(u *domain.User) UserPublic {
	return UserPublic{ID: u.ID, Email: u.Email, Username: u.Username, IsStaff: u.IsStaff}
}

type AuthResponse struct {
	User  UserPublic `json:"user"`
	Token string     `json:"token"`
}
