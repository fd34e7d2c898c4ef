package session

import "time"

// CreateRequest carries the platform access token obtained at sign-in.
type CreateRequest struct {
	Token string `json:"token" binding:"required"`
}

// Info describes the active session without exposing its token.
type Info struct {
	SessionID string     `json:"sessionId"`
	UserID    string     `json:"userId,omitempty"`
	Role      string     `json:"role,omitempty"`
	CanAuthor bool       `json:"canAuthor"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
