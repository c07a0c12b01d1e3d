package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/designxcel/storefront/internal"
)

// Codec signs and validates session tokens. It is constructed once at startup
// from SecurityConfig and passed into middleware and services; there is no
// package-level instance.
type Codec struct {
	secret          []byte
	issuer          string
	audience        string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewCodec(cfg internal.SecurityConfig) *Codec {
	accessTTL := cfg.AccessTokenDuration
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := cfg.RefreshTokenDuration
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Codec{
		secret:          []byte(cfg.JWTSecret),
		issuer:          cfg.TokenIssuer,
		audience:        cfg.TokenAudience,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
	}
}

func (c *Codec) AccessTokenTTL() time.Duration {
	return c.accessTokenTTL
}

// GenerateAccessToken mints a short-lived token carrying the full identity.
func (c *Codec) GenerateAccessToken(identity Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   identity.ID,
		Email:    identity.Email,
		Role:     identity.Role,
		Type:     identity.Type,
		FullName: identity.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", identity.ID),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// GenerateRefreshToken mints a long-lived token marked tokenType "refresh".
// Role and full name are deliberately omitted: the refresh path re-reads the
// identity from the store, so the token never carries authorization data.
func (c *Codec) GenerateRefreshToken(identity Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    identity.ID,
		Email:     identity.Email,
		Type:      identity.Type,
		TokenType: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", identity.ID),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

func (c *Codec) GenerateTokenPair(identity Identity) (*TokenPair, error) {
	accessToken, err := c.GenerateAccessToken(identity)
	if err != nil {
		return nil, err
	}

	refreshToken, err := c.GenerateRefreshToken(identity)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(c.accessTokenTTL.Seconds()),
	}, nil
}

// VerifyToken checks signature, issuer, audience and expiry. Errors are
// translated to the package sentinels so callers never see raw jwt errors.
func (c *Codec) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithAudience(c.audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.Type.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccessToken rejects refresh tokens presented where an access token is
// expected, on top of the usual verification.
func (c *Codec) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims, err := c.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.IsRefresh() {
		return nil, ErrNotAccessToken
	}
	if !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshAccessToken verifies the refresh token and mints a new access token
// from the re-supplied identity, not from the token's stale claims, so role
// changes take effect on the next refresh.
func (c *Codec) RefreshAccessToken(refreshToken string, identity Identity) (string, error) {
	claims, err := c.VerifyToken(refreshToken)
	if err != nil {
		return "", err
	}
	if !claims.IsRefresh() {
		return "", ErrNotRefreshToken
	}
	if claims.UserID != identity.ID {
		return "", ErrInvalidToken
	}
	return c.GenerateAccessToken(identity)
}

// DecodeToken parses without verifying the signature. Inspection only; the
// result must never feed a trust decision.
func (c *Codec) DecodeToken(tokenString string) *Claims {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}

// IsTokenExpired is a best-effort, non-throwing expiry check. Malformed tokens
// report as expired.
func (c *Codec) IsTokenExpired(tokenString string) bool {
	claims := c.DecodeToken(tokenString)
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return time.Now().After(claims.ExpiresAt.Time)
}

func (c *Codec) TokenExpiration(tokenString string) *time.Time {
	claims := c.DecodeToken(tokenString)
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	t := claims.ExpiresAt.Time
	return &t
}
