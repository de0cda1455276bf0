package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the portal roles carried in platform-issued tokens.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// JWTClaims represents the JWT payload of platform access tokens. The portal
// validates tokens but never issues them.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Actor identifies who is performing an operation. Services receive it
// explicitly on every call; there is no ambient authenticated user.
type Actor struct {
	ID   string
	Role UserRole
}

// Actor derives the explicit actor passed into service operations.
func (c *JWTClaims) Actor() Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{ID: c.UserID, Role: c.Role}
}

// IsStaff reports whether the actor may perform teacher/admin actions.
func (a Actor) IsStaff() bool {
	return a.Role == RoleTeacher || a.Role == RoleAdmin
}
