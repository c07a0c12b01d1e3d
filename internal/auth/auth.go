package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Role is the coarse authorization axis. The set is closed; anything outside it
// is rejected at token verification time.
type Role string

const (
	RoleCustomer           Role = "Customer"
	RoleEmployee           Role = "Employee"
	RoleOrderSupport       Role = "OrderSupport"
	RoleInventoryManager   Role = "InventoryManager"
	RoleUserManager        Role = "UserManager"
	RoleTransactionManager Role = "TransactionManager"
	RoleAdmin              Role = "Admin"
)

// roleRanks orders roles for "at least this role" checks. The three manager
// roles share a rank: none of them outranks another.
var roleRanks = map[Role]int{
	RoleCustomer:           0,
	RoleEmployee:           1,
	RoleOrderSupport:       2,
	RoleInventoryManager:   3,
	RoleUserManager:        3,
	RoleTransactionManager: 3,
	RoleAdmin:              4,
}

func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Rank returns the hierarchy position of the role, or -1 for unknown roles so
// that an unknown role never satisfies an AtLeast check.
func (r Role) Rank() int {
	if rank, ok := roleRanks[r]; ok {
		return rank
	}
	return -1
}

// AtLeast reports whether r ranks at or above other in the role hierarchy.
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= 0 && r.Rank() >= other.Rank()
}

// UserType distinguishes the two permission universes. Customers never pass
// through the granular permission gate.
type UserType string

const (
	UserTypeEmployee UserType = "employee"
	UserTypeCustomer UserType = "customer"
)

func (t UserType) Valid() bool {
	return t == UserTypeEmployee || t == UserTypeCustomer
}

// Identity is the authenticated principal, rebuilt on every authorized request
// from verified token claims or the user store. Never persisted as-is.
type Identity struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	Role     Role     `json:"role"`
	Type     UserType `json:"type"`
	FullName string   `json:"fullName"`
}

func (i Identity) IsEmployee() bool {
	return i.Type == UserTypeEmployee
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Claims is the single claim shape for both token kinds. Access tokens carry
// role and full name and no TokenType marker; refresh tokens carry
// TokenType "refresh" and omit role so stale role data can never be replayed
// through a refresh.
type Claims struct {
	UserID    int64    `json:"id"`
	Email     string   `json:"email"`
	Role      Role     `json:"role,omitempty"`
	Type      UserType `json:"type"`
	FullName  string   `json:"fullName,omitempty"`
	TokenType string   `json:"tokenType,omitempty"`
	jwt.RegisteredClaims
}

const refreshTokenType = "refresh"

func (c *Claims) IsRefresh() bool {
	return c.TokenType == refreshTokenType
}

// Identity projects the claim set back into an Identity.
func (c *Claims) Identity() Identity {
	return Identity{
		ID:       c.UserID,
		Email:    c.Email,
		Role:     c.Role,
		Type:     c.Type,
		FullName: c.FullName,
	}
}

// TokenPair is the login/refresh response shape.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// TokenInfo carries request-scoped metadata about the presented token.
type TokenInfo struct {
	Raw       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// CodecAPI mints and validates signed session tokens. No persistence.
type CodecAPI interface {
	GenerateAccessToken(identity Identity) (string, error)
	GenerateRefreshToken(identity Identity) (string, error)
	GenerateTokenPair(identity Identity) (*TokenPair, error)
	VerifyToken(tokenString string) (*Claims, error)
	VerifyAccessToken(tokenString string) (*Claims, error)
	RefreshAccessToken(refreshToken string, identity Identity) (string, error)
	DecodeToken(tokenString string) *Claims
	IsTokenExpired(tokenString string) bool
	TokenExpiration(tokenString string) *time.Time
}

// Credentials is the subset of a user record needed to check a login.
type Credentials struct {
	UserID       int64
	PasswordHash string
	IsActive     bool
}

// RepositoryAPI is the persistence contract for identity lookups.
type RepositoryAPI interface {
	GetCredentials(email string) (*Credentials, error)
	GetIdentity(userID int64) (*Identity, error)
	GetPermissionNames(userID int64) ([]string, error)
}

// LoginResult bundles everything a client needs after authentication: the
// token pair plus the identity and granular permissions used to seed the
// client-side capability mirror.
type LoginResult struct {
	Identity    Identity   `json:"user"`
	Tokens      *TokenPair `json:"tokens"`
	Permissions []string   `json:"permissions"`
}

// ServiceAPI performs authentication business logic.
type ServiceAPI interface {
	Login(dto LoginDTO) (*LoginResult, error)
	Refresh(refreshToken string) (*TokenPair, error)
	IdentityWithPermissions(userID int64) (*Identity, []string, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotRefreshToken    = errors.New("token is not a refresh token")
	ErrNotAccessToken     = errors.New("token is not an access token")
)

type ctxKey string

const (
	contextIdentityKey ctxKey = "identity"
	contextTokenKey    ctxKey = "token"
)

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextIdentityKey).(*Identity)
	return id, ok
}

func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, contextIdentityKey, identity)
}

func TokenFromContext(ctx context.Context) (*TokenInfo, bool) {
	info, ok := ctx.Value(contextTokenKey).(*TokenInfo)
	return info, ok
}

func ContextWithToken(ctx context.Context, info *TokenInfo) context.Context {
	return context.WithValue(ctx, contextTokenKey, info)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
