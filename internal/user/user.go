package user

import (
	"errors"
	"time"

	"github.com/designxcel/storefront/internal/auth"
	userDatamodel "github.com/designxcel/storefront/internal/core/datamodel/user"
)

type User struct {
	ID           int64         `json:"id"`
	Email        string        `json:"email"`
	FullName     string        `json:"fullName"`
	PasswordHash string        `json:"-"`
	Role         auth.Role     `json:"role"`
	UserType     auth.UserType `json:"userType"`
	IsActive     bool          `json:"isActive"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func (u *User) IsEmployee() bool {
	return u.UserType == auth.UserTypeEmployee
}

func (u *User) Identity() auth.Identity {
	return auth.Identity{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		Type:     u.UserType,
		FullName: u.FullName,
	}
}

var ErrNotFound = errors.New("user not found")

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		UserType:     string(u.UserType),
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		PasswordHash: u.PasswordHash,
		Role:         auth.Role(u.Role),
		UserType:     auth.UserType(u.UserType),
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
