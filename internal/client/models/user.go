package models

import "time"

// User is the profile returned alongside an access token.
type User struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	IsVerified bool       `json:"is_verified"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// AuthResult is the body of a successful register or login call.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// RegisterForm holds sign-up input.
type RegisterForm struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	Password []byte `validate:"required,min=8,max=50"`
}

// LoginForm holds sign-in input.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password []byte `validate:"required"`
}

func (f RegisterForm) Validate() error { return validateStruct(f) }

func (f LoginForm) Validate() error { return validateStruct(f) }
