package dto

import "time"

// RegisterRequest creates a business together with its first admin
type RegisterRequest struct {
	Username     string `json:"username" binding:"required,max=150"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	BusinessName string `json:"business_name" binding:"required,max=255"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token for refresh and logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	TokenResponse
	User UserInfo `json:"user"`
}

// UserInfo is the public view of a user
type UserInfo struct {
	ID              uint      `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Role            *string   `json:"role"`
	BusinessID      *uint     `json:"business_id"`
	BusinessName    string    `json:"business_name,omitempty"`
	IsBusinessAdmin bool      `json:"is_business_admin"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateUserRequest adds a user to the caller's business; role defaults to viewer
type CreateUserRequest struct {
	Username        string `json:"username" binding:"required,max=150"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	Role            string `json:"role,omitempty" binding:"omitempty,oneof=admin editor approver viewer"`
	IsBusinessAdmin bool   `json:"is_business_admin"`
}

// UpdateUserRequest changes a user of the caller's business; nil fields are left alone
type UpdateUserRequest struct {
	Email           *string `json:"email,omitempty" binding:"omitempty,email"`
	Password        *string `json:"password,omitempty" binding:"omitempty,min=8"`
	Role            *string `json:"role,omitempty" binding:"omitempty,oneof=admin editor approver viewer"`
	IsBusinessAdmin *bool   `json:"is_business_admin,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

// BusinessInfo is the public view of a business
type BusinessInfo struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateBusinessRequest renames the caller's business
type UpdateBusinessRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// RoleInfo is the public view of a role
type RoleInfo struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Permissions map[string]any `json:"permissions"`
}
