package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrCompanyForeignKey = errors.New("company_id does not exist")
	ErrNotFound          = errors.New("user not found")
	ErrEditConflict      = errors.New("unable to update the record due to an edit conflict, please try again")
)

// userColumns selects an account with its company and sorted permissions; queries using it group by u.id, c.id.
const userColumns = `u.id, u.username, u.email, u.activated, u.created_at, u.updated_at, u.version, c.id, c.name,
		COALESCE(array_agg(p.permission ORDER BY p.permission) FILTER (WHERE p.permission IS NOT NULL), '{}')`

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

func nullableID(id *int) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}

func (m *DBModel) insertUser(ctx context.Context, u *User, companyID *int) error {
	query := `
		INSERT INTO users (username, email, password, company_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version`

	args := []any{
		u.Username,
		u.Email,
		u.Password.hash,
		nullableID(companyID),
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.Version)
	if err != nil {
		switch {
		case common.UniqueError(err, "users_username_key"):
			return ErrDuplicateUsername
		case common.UniqueError(err, "users_email_key"):
			return ErrDuplicateEmail
		case common.ForeignKeyError(err, "users_company_id_fkey"):
			return ErrCompanyForeignKey
		default:
			return err
		}
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	var (
		u           User
		companyID   sql.NullInt64
		companyName sql.NullString
		permissions pq.StringArray
	)

	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Activated, &u.CreatedAt, &u.UpdatedAt, &u.Version, &companyID, &companyName, &permissions)
	if err != nil {
		return nil, err
	}

	if companyID.Valid {
		u.Company = &companyservice.Company{ID: int(companyID.Int64), Name: companyName.String}
	}

	u.Permissions = Permissions{}
	for _, p := range permissions {
		u.Permissions = append(u.Permissions, Permission(p))
	}

	return &u, nil
}

func (m *DBModel) getUserByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN companies c ON u.company_id = c.id
		LEFT JOIN user_permissions p ON u.id = p.user_id
		WHERE u.id = $1
		GROUP BY u.id, c.id`

	u, err := scanUser(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return u, nil
}

// listUsers filters by company when companyID is set.
func (m *DBModel) listUsers(ctx context.Context, companyID *int, limit, offset int) ([]User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN companies c ON u.company_id = c.id
		LEFT JOIN user_permissions p ON u.id = p.user_id
		WHERE ($1::int IS NULL OR u.company_id = $1)
		GROUP BY u.id, c.id
		ORDER BY u.id
		LIMIT $2 OFFSET $3`

	rows, err := m.db.QueryContext(ctx, query, nullableID(companyID), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// updateUser only checks the version when u.Version is non-zero.
func (m *DBModel) updateUser(tx *sql.Tx, ctx context.Context, u *User, companyID *int) error {
	query := `
		UPDATE users
		SET email = $1, company_id = $2, updated_at = NOW(), version = version + 1
		WHERE id = $3 AND ($4 = 0 OR version = $4)
		RETURNING updated_at, version`

	err := tx.QueryRowContext(ctx, query, u.Email, nullableID(companyID), u.ID, u.Version).Scan(&u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		case common.UniqueError(err, "users_email_key"):
			return ErrDuplicateEmail
		case common.ForeignKeyError(err, "users_company_id_fkey"):
			return ErrCompanyForeignKey
		default:
			return err
		}
	}

	return nil
}

func (m *DBModel) getUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, email, password, version
		FROM users
		WHERE username = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.Email, &u.Password.hash, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) activateUserAccount(tx *sql.Tx, ctx context.Context, id int, version int) error {
	query := `
		UPDATE users
		SET activated = true, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND version = $2`

	res, err := tx.ExecContext(ctx, query, id, version)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows != 1 {
		switch {
		case rows == 0:
			return ErrNotFound
		default:
			return errors.New("too many rows affected")
		}
	}

	return nil
}

func (m *DBModel) updateUserPassword(ctx context.Context, pwd Password, id int, version int) error {
	query := `
		UPDATE users
		SET password = $1
		WHERE id = $2 AND version = $3`

	_, err := m.db.ExecContext(ctx, query, pwd.hash, id, version)
	if err != nil {
		return err
	}

	return nil
}
