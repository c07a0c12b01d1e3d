package user

import "github.com/designxcel/storefront/internal/auth"

type RegisterDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type ChangeRoleDTO struct {
	Role auth.Role `json:"role"`
}

type UsersResponse struct {
	Users []*User `json:"users"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d RegisterDTO) Validate() error {
	if d.Email == "" || !containsAt(d.Email) {
		return ValidationError{Msg: "a valid email is required"}
	}
	if len(d.Password) < 8 {
		return ValidationError{Msg: "password must be at least 8 characters"}
	}
	if d.FullName == "" {
		return ValidationError{Msg: "fullName is required"}
	}
	return nil
}

func containsAt(s string) bool {
	for _, c := range s {
		if c == '@' {
			return true
		}
	}
	return false
}
