package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLoginSucceeded   = "auth.login.succeeded"
	EventTypeLoginFailed      = "auth.login.failed"
	EventTypeTokenRefreshed   = "auth.token.refreshed"
	EventTypePermissionDenied = "auth.permission.denied"
)

type LoginSucceededEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func NewLoginSucceededEvent(userID int64, email, role string) *LoginSucceededEvent {
	return &LoginSucceededEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLoginSucceeded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
				"role":    role,
			},
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}
}

type LoginFailedEvent struct {
	BaseEvent
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

func NewLoginFailedEvent(email, reason string) *LoginFailedEvent {
	return &LoginFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLoginFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"email":  email,
				"reason": reason,
			},
		},
		Email:  email,
		Reason: reason,
	}
}

type TokenRefreshedEvent struct {
	BaseEvent
	UserID int64 `json:"user_id"`
}

func NewTokenRefreshedEvent(userID int64) *TokenRefreshedEvent {
	return &TokenRefreshedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTokenRefreshed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
			},
		},
		UserID: userID,
	}
}

type PermissionDeniedEvent struct {
	BaseEvent
	UserID     int64  `json:"user_id"`
	Permission string `json:"permission"`
	Path       string `json:"path"`
}

func NewPermissionDeniedEvent(userID int64, permission, path string) *PermissionDeniedEvent {
	return &PermissionDeniedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePermissionDenied,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"permission": permission,
				"path":       path,
			},
		},
		UserID:     userID,
		Permission: permission,
		Path:       path,
	}
}
