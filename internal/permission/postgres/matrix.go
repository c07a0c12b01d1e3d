package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/designxcel/storefront/internal/permission"
)

// MatrixStore reads and writes the per-user permission matrix. All queries are
// parameterized; IN lists go through sqlx.In, never string concatenation.
type MatrixStore struct {
	db *sqlx.DB
}

func NewMatrixStore(db *sqlx.DB) *MatrixStore {
	return &MatrixStore{db: db}
}

// HasPermission returns the stored can_access flag for (userID, name).
// A missing row is (false, nil): absence means deny, not error.
func (s *MatrixStore) HasPermission(ctx context.Context, userID int64, name string) (bool, error) {
	var canAccess bool
	query := `SELECT up.can_access
	         FROM user_permissions up
	         JOIN permissions p ON p.id = up.permission_id
	         WHERE up.user_id = $1 AND p.name = $2`

	err := s.db.GetContext(ctx, &canAccess, query, userID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return canAccess, nil
}

// CountGranted counts how many of the listed permissions are granted to the
// user. Used by the any-of gate: a count above zero allows.
func (s *MatrixStore) CountGranted(ctx context.Context, userID int64, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`SELECT COUNT(*)
	         FROM user_permissions up
	         JOIN permissions p ON p.id = up.permission_id
	         WHERE up.user_id = ? AND up.can_access = true AND p.name IN (?)`, userID, names)
	if err != nil {
		return 0, err
	}

	var count int
	if err := s.db.GetContext(ctx, &count, s.db.Rebind(query), args...); err != nil {
		return 0, err
	}
	return count, nil
}

// Grant upserts a matrix row with can_access = true.
func (s *MatrixStore) Grant(ctx context.Context, userID int64, name string, grantedBy int64) error {
	if !permission.Known(name) {
		return permission.ErrUnknownPermission
	}

	query := `INSERT INTO user_permissions (user_id, permission_id, can_access, granted_by, created_at, updated_at)
	         SELECT $1, p.id, true, $3, now(), now() FROM permissions p WHERE p.name = $2
	         ON CONFLICT (user_id, permission_id)
	         DO UPDATE SET can_access = true, granted_by = $3, updated_at = now()`

	result, err := s.db.ExecContext(ctx, query, userID, name, grantedBy)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return permission.ErrUnknownPermission
	}
	return nil
}

// Revoke flips an existing row to can_access = false. Revoking a name with no
// row is a no-op; the gate already reads absence as denial.
func (s *MatrixStore) Revoke(ctx context.Context, userID int64, name string) error {
	if !permission.Known(name) {
		return permission.ErrUnknownPermission
	}

	query := `UPDATE user_permissions SET can_access = false, updated_at = now()
	         WHERE user_id = $1
	           AND permission_id = (SELECT id FROM permissions WHERE name = $2)`

	_, err := s.db.ExecContext(ctx, query, userID, name)
	return err
}

// ListForUser returns the full grid for the admin editor: every known
// permission with its stored flag, absent rows reported as denied.
func (s *MatrixStore) ListForUser(ctx context.Context, userID int64) ([]permission.Entry, error) {
	type row struct {
		Name      string        `db:"name"`
		CanAccess sql.NullBool  `db:"can_access"`
		GrantedBy sql.NullInt64 `db:"granted_by"`
		UpdatedAt sql.NullTime  `db:"updated_at"`
	}

	query := `SELECT p.name, up.can_access, up.granted_by, up.updated_at
	         FROM permissions p
	         LEFT JOIN user_permissions up ON up.permission_id = p.id AND up.user_id = $1
	         ORDER BY p.name ASC`

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}

	entries := make([]permission.Entry, 0, len(rows))
	for _, r := range rows {
		entry := permission.Entry{
			Name:      r.Name,
			CanAccess: r.CanAccess.Valid && r.CanAccess.Bool,
		}
		if r.GrantedBy.Valid {
			grantedBy := r.GrantedBy.Int64
			entry.GrantedBy = &grantedBy
		}
		if r.UpdatedAt.Valid {
			updatedAt := r.UpdatedAt.Time
			entry.UpdatedAt = &updatedAt
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
