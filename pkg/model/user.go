package model

import "time"

const (
	RoleEmployee   = "employee"
	RoleManager    = "manager"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superAdmin"
)

type User struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	Password  string    `json:"password,omitempty" bson:"password" validate:"required,min=8,max=72"`
	Role      string    `json:"role" bson:"role" validate:"required,oneof=employee manager admin superAdmin"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"accessTokenExpiresIn"`
}

// Redacted returns a copy safe to serialize back to callers.
func (u *User) Redacted() *User {
	out := *u
	out.Password = ""
	return &out
}
