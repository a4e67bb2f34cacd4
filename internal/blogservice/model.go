package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

var (
	ErrRecordNotFound     = common.ErrRecordNotFound
	ErrCompanyForeignKey  = errors.New("company_id does not exist")
	ErrDuplicateHandle    = errors.New("duplicate blog handle")
	ErrEditConflict       = errors.New("unable to update the record due to an edit conflict, please try again")
	errTooManyRowsDeleted = errors.New("too many rows affected")
)

const blogColumns = `b.id, b.name, b.handle, b.created_at, b.updated_at, b.version, c.id, c.name`

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// tenantArg turns an optional tenant into a query argument; NULL disables the company filter.
func tenantArg(tenant *companyservice.Company) sql.NullInt64 {
	if tenant == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(tenant.ID), Valid: true}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBlog(row scanner) (*Blog, error) {
	var (
		id   int
		blog Blog
		c    companyservice.Company
	)

	err := row.Scan(&id, &blog.Name, &blog.Handle, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version, &c.ID, &c.Name)
	if err != nil {
		return nil, err
	}

	blog.ID = &id
	blog.Company = &c

	return &blog, nil
}

func classifyWriteError(err error) error {
	switch {
	case common.ForeignKeyError(err, "blogs_company_id_fkey"):
		return ErrCompanyForeignKey
	case common.UniqueError(err, "blogs_handle_key"):
		return ErrDuplicateHandle
	default:
		return err
	}
}

func (m *BlogModel) insert(ctx context.Context, blog *Blog) error {
	query := `
		INSERT INTO blogs (name, handle, company_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at, version`

	var id int
	err := m.db.QueryRowContext(ctx, query, blog.Name, blog.Handle, blog.Company.ID).Scan(&id, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		return classifyWriteError(err)
	}

	blog.ID = &id

	return nil
}

// getBlogById is a method to get a blog by its ID joining the companies table to get the company's name.
func (m *BlogModel) getBlogById(ctx context.Context, id int) (*Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs b
		JOIN companies c ON b.company_id = c.id
		WHERE b.id = $1`

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

// updateBlog only checks the version when blog.Version is non-zero.
func (m *BlogModel) updateBlog(ctx context.Context, blog *Blog) error {
	query := `
		UPDATE blogs
		SET name = $1, handle = $2, company_id = $3, updated_at = NOW(), version = version + 1
		WHERE id = $4 AND ($5 = 0 OR version = $5)
		RETURNING created_at, updated_at, version`

	err := m.db.QueryRowContext(ctx, query, blog.Name, blog.Handle, blog.Company.ID, *blog.ID, blog.Version).Scan(&blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return classifyWriteError(err)
		}
	}

	return nil
}

func (m *BlogModel) deleteBlog(ctx context.Context, id int, tenant *companyservice.Company) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1 AND company_id = COALESCE($2, company_id)`

	res, err := m.db.ExecContext(ctx, query, id, tenantArg(tenant))
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
			return ErrRecordNotFound
		default:
			return fmt.Errorf("%w: %d", errTooManyRowsDeleted, rows)
		}
	}

	return nil
}

func (m *BlogModel) queryBlogs(ctx context.Context, query string, args ...any) ([]Blog, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

// getBlogs returns a page of blogs visible to the tenant, newest first.
func (m *BlogModel) getBlogs(ctx context.Context, tenant *companyservice.Company, limit, offset int) ([]Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs b
		JOIN companies c ON b.company_id = c.id
		WHERE b.company_id = COALESCE($1, b.company_id)
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $2 OFFSET $3`

	return m.queryBlogs(ctx, query, tenantArg(tenant), limit, offset)
}

func (m *BlogModel) getBlogsByName(ctx context.Context, name string, tenant *companyservice.Company, limit, offset int) ([]Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs b
		JOIN companies c ON b.company_id = c.id
		WHERE b.name ILIKE $1 ESCAPE '\' AND b.company_id = COALESCE($2, b.company_id)
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $3 OFFSET $4`

	return m.queryBlogs(ctx, query, "%"+likeEscaper.Replace(name)+"%", tenantArg(tenant), limit, offset)
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (m *BlogModel) getBlogsByCompanyId(ctx context.Context, companyID int) ([]Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs b
		JOIN companies c ON b.company_id = c.id
		WHERE b.company_id = $1
		ORDER BY b.name`

	return m.queryBlogs(ctx, query, companyID)
}
