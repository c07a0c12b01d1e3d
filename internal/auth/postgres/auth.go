package auth

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/designxcel/storefront/internal/auth"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentials(email string) (*auth.Credentials, error) {
	var creds auth.Credentials
	query := `SELECT id, password_hash, is_active FROM users WHERE email = ?`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&creds.UserID, &creds.PasswordHash, &creds.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &creds, nil
}

func (r *Repository) GetIdentity(userID int64) (*auth.Identity, error) {
	var identity auth.Identity
	var isActive bool
	query := `SELECT id, email, role, user_type, full_name, is_active FROM users WHERE id = ?`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&identity.ID, &identity.Email, &identity.Role, &identity.Type, &identity.FullName, &isActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	if !isActive {
		return nil, auth.ErrUserInactive
	}
	return &identity, nil
}

// GetPermissionNames returns the names of matrix rows granted to the user.
// Rows with can_access = false are filtered out here; they count as absent.
func (r *Repository) GetPermissionNames(userID int64) ([]string, error) {
	query := `SELECT p.name
	         FROM permissions p
	         JOIN user_permissions up ON p.id = up.permission_id
	         WHERE up.user_id = ? AND up.can_access = true`

	rows, err := r.db.Raw(query, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var permName string
		if err := rows.Scan(&permName); err != nil {
			return nil, err
		}
		permissions = append(permissions, permName)
	}

	return permissions, rows.Err()
}
