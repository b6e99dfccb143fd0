package model

import "time"

// Usuario is a login account. Staff members link to it through Servidor.
type Usuario struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Nome         string    `json:"nome"`
	PasswordHash string    `json:"-"`
	RoleID       int       `json:"role_id"`
	RoleName     string    `json:"role_name,omitempty"`
	IsSuperuser  bool      `json:"is_superuser"`
	Ativo        bool      `json:"ativo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest accepts either the username or the email in Login.
type LoginRequest struct {
	Login    string `json:"login" binding:"required,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Usuario     Usuario   `json:"usuario"`
	Servidor    *Servidor `json:"servidor,omitempty"`
	Permissions []string  `json:"permissions"`
}

// CreateUsuarioRequest is the payload for creating a login account.
type CreateUsuarioRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=150,alphanum"`
	Email       string `json:"email" binding:"required,email,max=255"`
	Nome        string `json:"nome" binding:"required,min=2,max=200"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	RoleID      int    `json:"role_id" binding:"required"`
	IsSuperuser bool   `json:"is_superuser"`
}

// UpdateUsuarioRequest is the payload for updating a login account.
type UpdateUsuarioRequest struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	Nome        string `json:"nome" binding:"required,min=2,max=200"`
	Password    string `json:"password" binding:"omitempty,min=8,max=128"`
	RoleID      int    `json:"role_id" binding:"required"`
	IsSuperuser bool   `json:"is_superuser"`
	Ativo       *bool  `json:"ativo"`
}
