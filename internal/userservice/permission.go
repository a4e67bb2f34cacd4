package userservice

import (
	"context"
	"database/sql"
)

func (m *DBModel) addUserPermission(tx *sql.Tx, ctx context.Context, id int, permissions ...Permission) error {
	for _, p := range permissions {
		_, err := tx.ExecContext(ctx, "INSERT INTO user_permissions (user_id, permission) VALUES ($1, $2) ON CONFLICT DO NOTHING", id, p)
		if err != nil {
			return err
		}
	}

	return nil
}

// replaceUserPermissions drops every permission of the user before granting the given ones.
func (m *DBModel) replaceUserPermissions(tx *sql.Tx, ctx context.Context, id int, permissions ...Permission) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM user_permissions WHERE user_id = $1", id)
	if err != nil {
		return err
	}

	return m.addUserPermission(tx, ctx, id, permissions...)
}

func (m *DBModel) adminExists(tx *sql.Tx, ctx context.Context) (bool, error) {
	var exists bool

	err := tx.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM user_permissions WHERE permission = $1)", PermissionAdminUser).Scan(&exists)
	return exists, err
}

// grantedOnActivation lists the permissions an account receives once activated.
// Company accounts write their company's blogs. The first account without a company administers
// everything; later accounts without a company only read until an administrator assigns them.
func grantedOnActivation(u *User, adminExists bool) []Permission {
	switch {
	case u.Company != nil:
		return []Permission{PermissionWriteBlog}
	case !adminExists:
		return []Permission{PermissionWriteBlog, PermissionWriteCompany, PermissionAdminUser}
	default:
		return nil
	}
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}

func (u *User) IsActivated() bool {
	return u.Activated
}

func (u *User) HasPermission(permission Permission) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}

	return false
}

// IsAdmin reports whether the account manages users.
func (u *User) IsAdmin() bool {
	return u.HasPermission(PermissionAdminUser)
}
