package blogservice

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

// setupTestCompany is a helper function to create a test company in the database.
func setupTestCompany(db *sql.DB, name string) (*companyservice.Company, error) {
	c := companyservice.Company{Name: name}
	err := db.QueryRow("INSERT INTO companies (name) VALUES ($1) RETURNING id", name).Scan(&c.ID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func TestBlogLifecyclePostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	db := common.TestDB("file://../../migrations", t)
	s := NewBlogService(db, common.NewCache(time.Minute, time.Minute), &common.MockProducer{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	acme, err := setupTestCompany(db, "Acme")
	require.NoError(t, err)
	globex, err := setupTestCompany(db, "Globex")
	require.NoError(t, err)

	blog := &Blog{Name: "Tech", Handle: "tech", Company: globex}
	require.NoError(t, s.CreateBlog(ctx, blog, acme))
	require.NotNil(t, blog.ID)
	assert.Equal(t, acme.ID, blog.Company.ID)

	_, err = s.GetBlogByID(ctx, *blog.ID, globex)
	assert.Equal(t, ErrRecordNotFound, err)

	got, err := s.GetBlogByID(ctx, *blog.ID, acme)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Company.Name)

	got.Name = "Tech Talk"
	require.NoError(t, s.UpdateBlog(ctx, got, nil))
	assert.Equal(t, 2, got.Version)

	blogs, err := s.GetBlogs(ctx, globex, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, blogs)

	blogs, err = s.SearchBlogs(ctx, "talk", acme, 10, 0)
	require.NoError(t, err)
	assert.Len(t, blogs, 1)

	assert.Equal(t, ErrRecordNotFound, s.DeleteBlog(ctx, *blog.ID, globex))
	assert.NoError(t, s.DeleteBlog(ctx, *blog.ID, acme))
}
