package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

func intptr(i int) *int {
	return &i
}

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

// newTestServer answers every request with status and body and records what it received.
func newTestServer(t *testing.T, status int, body string) (*Client, *recorded) {
	t.Helper()

	rec := &recorded{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.auth = r.Header.Get("Authorization")

		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)

	return New(ts.URL+"/", "secret", time.Second), rec
}

func TestBlogCreate(t *testing.T) {
	c, rec := newTestServer(t, http.StatusCreated, `{"blog": {"id": 11, "name": "Tech", "handle": "tech", "company": {"id": 3, "name": "Initech"}, "version": 1}}`)

	blog, err := c.Blogs().Create(context.Background(), &blogservice.Blog{Name: "Tech", Handle: "tech", Company: &companyservice.Company{ID: 3}})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/v1/blogs", rec.path)
	assert.Equal(t, "Bearer secret", rec.auth)
	assert.Equal(t, map[string]any{"name": "Tech", "handle": "tech", "company": map[string]any{"id": float64(3)}}, rec.body)

	assert.Equal(t, 11, *blog.ID)
	assert.Equal(t, "Initech", blog.Company.Name)
}

func TestBlogUpdate(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `{"blog": {"id": 7, "name": "Tech", "handle": "tech", "company": {"id": 3}, "version": 2}}`)

	blog, err := c.Blogs().Update(context.Background(), &blogservice.Blog{ID: intptr(7), Name: "Tech", Handle: "tech", Company: &companyservice.Company{ID: 3}, Version: 1})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/v1/blogs/7", rec.path)
	assert.Equal(t, float64(7), rec.body["id"])
	assert.Equal(t, float64(1), rec.body["version"])
	assert.Equal(t, 2, blog.Version)

	_, err = c.Blogs().Update(context.Background(), &blogservice.Blog{Name: "Tech"})
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestBlogList(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `{"blogs": [{"id": 1, "name": "One", "handle": "one"}, {"id": 2, "name": "Two", "handle": "two"}]}`)

	blogs, err := c.Blogs().List(context.Background(), 20, 40)
	require.NoError(t, err)
	assert.Len(t, blogs, 2)
	assert.Equal(t, "limit=20&offset=40", rec.query)

	_, err = c.Blogs().Search(context.Background(), "tech talk", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "limit=10&offset=0&q=tech+talk", rec.query)
}

func TestErrorResponses(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantFields  map[string]string
		notFound    bool
	}{
		{
			name:        "message",
			status:      http.StatusConflict,
			body:        `{"error": "unable to update the record due to an edit conflict, please try again"}`,
			wantMessage: "unable to update the record due to an edit conflict, please try again",
		},
		{
			name:        "validation",
			status:      http.StatusUnprocessableEntity,
			body:        `{"error": {"name": "must be at least 3 characters", "handle": "must be provided"}}`,
			wantMessage: "handle: must be provided, name: must be at least 3 characters",
			wantFields:  map[string]string{"name": "must be at least 3 characters", "handle": "must be provided"},
		},
		{
			name:        "not found",
			status:      http.StatusNotFound,
			body:        `{"error": "resource not found"}`,
			wantMessage: "resource not found",
			notFound:    true,
		},
		{
			name:        "not json",
			status:      http.StatusBadGateway,
			body:        "upstream down",
			wantMessage: "HTTP 502: upstream down",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestServer(t, tc.status, tc.body)

			_, err := c.Blogs().Find(context.Background(), 7)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.wantMessage, err.Error())
			assert.Equal(t, tc.wantFields, apiErr.Fields)
			assert.Equal(t, tc.notFound, IsNotFound(err))
			assert.Equal(t, tc.notFound, errors.Is(err, common.ErrRecordNotFound))
		})
	}
}

func TestCompanies(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `{"companies": [{"id": 1, "name": "Acme"}, {"id": 2, "name": "Globex"}]}`)

	companies, err := c.WithToken("").Companies().Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []companyservice.Company{{ID: 1, Name: "Acme"}, {ID: 2, Name: "Globex"}}, companies)
	assert.Equal(t, "/v1/companies", rec.path)
	assert.Empty(t, rec.auth)
}

func TestLoginAndAccount(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `{"token": {"access_token": "ABC", "refresh_token": "DEF", "user_id": 1}}`)

	token, err := c.Login(context.Background(), "admin", "Password!23")
	require.NoError(t, err)
	assert.Equal(t, "ABC", token.AccessTokenPlain)
	assert.Equal(t, map[string]any{"username": "admin", "password": "Password!23"}, rec.body)

	c, rec = newTestServer(t, http.StatusOK, `{"user": {"id": 1, "username": "admin", "company": {"id": 3, "name": "Initech"}}}`)
	u, err := c.WithToken("ABC").Account(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer ABC", rec.auth)
	assert.Equal(t, 3, u.Company.ID)
}

func TestDeleteBlog(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `{"message": "blog deleted"}`)

	require.NoError(t, c.Blogs().Delete(context.Background(), 7))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/v1/blogs/7", rec.path)
}
