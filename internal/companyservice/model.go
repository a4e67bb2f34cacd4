package companyservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sushihentaime/companyblog/internal/common"
)

var (
	ErrDuplicateName = errors.New("duplicate company name")
	ErrHasUsers      = errors.New("company still has user accounts")
)

func newCompanyModel(db *sql.DB) *CompanyModel {
	return &CompanyModel{db: db}
}

func (m *CompanyModel) insert(ctx context.Context, c *Company) error {
	query := `
		INSERT INTO companies (name)
		VALUES ($1)
		RETURNING id, version`

	err := m.db.QueryRowContext(ctx, query, c.Name).Scan(&c.ID, &c.Version)
	if err != nil {
		switch {
		case common.UniqueError(err, "companies_name_key"):
			return ErrDuplicateName
		default:
			return err
		}
	}

	return nil
}

func (m *CompanyModel) getAll(ctx context.Context) ([]Company, error) {
	query := `
		SELECT id, name, version
		FROM companies
		ORDER BY name`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []Company{}
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Version); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return companies, nil
}

func (m *CompanyModel) getByID(ctx context.Context, id int) (*Company, error) {
	query := `
		SELECT id, name, version
		FROM companies
		WHERE id = $1`

	var c Company
	err := m.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &c, nil
}

// update skips the version check when c.Version is zero.
func (m *CompanyModel) update(ctx context.Context, c *Company) error {
	query := `
		UPDATE companies
		SET name = $1, updated_at = NOW(), version = version + 1
		WHERE id = $2 AND ($3 = 0 OR version = $3)
		RETURNING version`

	err := m.db.QueryRowContext(ctx, query, c.Name, c.ID, c.Version).Scan(&c.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return common.ErrRecordNotFound
		case common.UniqueError(err, "companies_name_key"):
			return ErrDuplicateName
		default:
			return err
		}
	}

	return nil
}

func (m *CompanyModel) delete(ctx context.Context, id int) error {
	query := `
		DELETE FROM companies
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		if common.ForeignKeyError(err, "users_company_id_fkey") {
			return ErrHasUsers
		}
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return common.ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}
