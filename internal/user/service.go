package user

import (
	"fmt"
	"log/slog"

	"github.com/designxcel/storefront/internal/auth"
	userDatamodel "github.com/designxcel/storefront/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetAll() ([]*userDatamodel.User, error)
	GetByID(id int64) (*userDatamodel.User, error)
	GetByEmail(email string) (*userDatamodel.User, error)
	Create(u *userDatamodel.User) error
	Update(u *userDatamodel.User) error
}

type Service struct {
	repo       RepositoryAPI
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo RepositoryAPI, logger *slog.Logger, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Register creates a customer account. Storefront signup never creates
// employees; staff accounts are provisioned by an admin changing the role.
func (s *Service) Register(dto RegisterDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		return nil, ValidationError{Msg: "email is already registered"}
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	dataUser := &userDatamodel.User{
		Email:        dto.Email,
		FullName:     dto.FullName,
		PasswordHash: hash,
		Role:         string(auth.RoleCustomer),
		UserType:     string(auth.UserTypeCustomer),
		IsActive:     true,
	}
	if err := s.repo.Create(dataUser); err != nil {
		s.logger.Error("failed to create user", "email", dto.Email, "error", err)
		return nil, err
	}

	s.logger.Info("user registered", "user_id", dataUser.ID)
	return FromDataModel(dataUser), nil
}

func (s *Service) ListUsers() ([]*User, error) {
	dataUsers, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}

	users := make([]*User, 0, len(dataUsers))
	for _, dataUser := range dataUsers {
		users = append(users, FromDataModel(dataUser))
	}
	return users, nil
}

func (s *Service) GetByID(id int64) (*User, error) {
	dataUser, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if dataUser == nil {
		return nil, ErrNotFound
	}
	return FromDataModel(dataUser), nil
}

// ChangeRole assigns a new role and keeps user_type consistent with it:
// Customer role means customer type, anything else means employee.
func (s *Service) ChangeRole(id int64, role auth.Role) (*User, error) {
	if !role.Valid() {
		return nil, ValidationError{Msg: "unknown role"}
	}

	dataUser, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if dataUser == nil {
		return nil, ErrNotFound
	}

	dataUser.Role = string(role)
	if role == auth.RoleCustomer {
		dataUser.UserType = string(auth.UserTypeCustomer)
	} else {
		dataUser.UserType = string(auth.UserTypeEmployee)
	}

	if err := s.repo.Update(dataUser); err != nil {
		s.logger.Error("failed to change role", "user_id", id, "role", role, "error", err)
		return nil, err
	}

	s.logger.Info("role changed", "user_id", id, "role", role)
	return FromDataModel(dataUser), nil
}

func (s *Service) SetActive(id int64, active bool) (*User, error) {
	dataUser, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if dataUser == nil {
		return nil, ErrNotFound
	}

	dataUser.IsActive = active
	if err := s.repo.Update(dataUser); err != nil {
		s.logger.Error("failed to set user active flag", "user_id", id, "active", active, "error", err)
		return nil, err
	}

	s.logger.Info("user active flag updated", "user_id", id, "active", active)
	return FromDataModel(dataUser), nil
}
