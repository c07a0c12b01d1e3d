package auth

import (
	"context"

	"github.com/designxcel/storefront/internal/core/events"
)

// Service is the main auth service with dependencies
type Service struct {
	repo       RepositoryAPI
	codec      CodecAPI
	eventBus   *events.EventBus
	bcryptCost int
}

// NewService creates a new auth service
func NewService(repo RepositoryAPI, codec CodecAPI, eventBus *events.EventBus, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		codec:      codec,
		eventBus:   eventBus,
		bcryptCost: bcryptCost,
	}
}

// Login validates credentials and returns a token pair together with the
// identity and granular permissions the client seeds its capability mirror with.
func (s *Service) Login(dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	creds, err := s.repo.GetCredentials(dto.Email)
	if err != nil {
		s.publish(events.NewLoginFailedEvent(dto.Email, "unknown user"))
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		s.publish(events.NewLoginFailedEvent(dto.Email, "bad password"))
		return nil, ErrInvalidCredentials
	}

	if !creds.IsActive {
		s.publish(events.NewLoginFailedEvent(dto.Email, "inactive account"))
		return nil, ErrUserInactive
	}

	identity, permissions, err := s.IdentityWithPermissions(creds.UserID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.codec.GenerateTokenPair(*identity)
	if err != nil {
		return nil, err
	}

	s.publish(events.NewLoginSucceededEvent(identity.ID, identity.Email, string(identity.Role)))

	return &LoginResult{
		Identity:    *identity,
		Tokens:      tokens,
		Permissions: permissions,
	}, nil
}

// Refresh verifies the refresh token and mints a new pair from the current
// user record. Role or permission edits since login take effect here because
// the identity is reloaded, never copied out of the old token.
func (s *Service) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.VerifyToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefresh() {
		return nil, ErrNotRefreshToken
	}

	identity, err := s.repo.GetIdentity(claims.UserID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.RefreshAccessToken(refreshToken, *identity)
	if err != nil {
		return nil, err
	}

	s.publish(events.NewTokenRefreshedEvent(identity.ID))

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresInSeconds(s.codec, accessToken),
	}, nil
}

// IdentityWithPermissions loads the current identity plus granular permission
// names for a user.
func (s *Service) IdentityWithPermissions(userID int64) (*Identity, []string, error) {
	identity, err := s.repo.GetIdentity(userID)
	if err != nil {
		return nil, nil, err
	}

	permissions, err := s.repo.GetPermissionNames(userID)
	if err != nil {
		return nil, nil, err
	}

	return identity, permissions, nil
}

func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func (s *Service) publish(event events.Event) {
	if s.eventBus == nil {
		return
	}
	_ = s.eventBus.Publish(context.Background(), event)
}

func expiresInSeconds(codec CodecAPI, token string) int64 {
	exp := codec.TokenExpiration(token)
	if exp == nil {
		return 0
	}
	claims := codec.DecodeToken(token)
	if claims == nil || claims.IssuedAt == nil {
		return 0
	}
	return int64(exp.Sub(claims.IssuedAt.Time).Seconds())
}
