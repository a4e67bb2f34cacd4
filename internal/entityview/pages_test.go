package entityview

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/companyservice"
	"github.com/sushihentaime/companyblog/internal/userservice"
)

type pagesFixture struct {
	accounts  *fakeAccounts
	blogs     *fakeBlogs
	reader    *fakeReader
	companies *fakeCompanies
	handler   http.Handler
}

func newPagesFixture(t *testing.T, account *userservice.User) *pagesFixture {
	t.Helper()

	renderer, err := NewRenderer()
	require.NoError(t, err)

	f := &pagesFixture{
		accounts: &fakeAccounts{user: account},
		blogs:    &fakeBlogs{},
		reader: &fakeReader{blogs: map[int]*blogservice.Blog{
			7: {ID: intptr(7), Name: "Tech", Handle: "tech", Company: &companyservice.Company{ID: 1, Name: "Acme"}, Version: 1},
		}},
		companies: &fakeCompanies{companies: []companyservice.Company{{ID: 1, Name: "Acme"}, {ID: 2, Name: "Globex"}}},
	}

	f.handler = NewBlogPages(BlogPagesConfig{
		Base:      "/entities/blog",
		Accounts:  f.accounts,
		Blogs:     f.blogs,
		Reader:    f.reader,
		Companies: f.companies,
		Renderer:  renderer,
		Logger:    discardLogger(),
	})

	return f
}

func (f *pagesFixture) do(method, target string, form url.Values, header http.Header) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range header {
		req.Header[k] = v
	}

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func TestBlogPagesRead(t *testing.T) {
	testCases := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   []string
	}{
		{name: "list", target: "/", wantStatus: http.StatusOK, wantBody: []string{"Tech", `href="/entities/blog/view/7"`, "Acme"}},
		{name: "detail", target: "/view/7", wantStatus: http.StatusOK, wantBody: []string{"Blog 7", "tech", `action="/entities/blog/view/7"`}},
		{name: "new form", target: "/new", wantStatus: http.StatusOK, wantBody: []string{"Create a Blog", `<option value="1"`, "Globex", `action="/entities/blog/new"`}},
		{name: "edit form", target: "/edit/7", wantStatus: http.StatusOK, wantBody: []string{"Edit Blog", `value="Tech"`, `<option value="1" selected>`, `name="version" value="1"`}},
		{name: "unknown blog", target: "/view/8", wantStatus: http.StatusNotFound},
		{name: "malformed id", target: "/edit/abc", wantStatus: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newPagesFixture(t, &userservice.User{ID: 1, Username: "admin"})

			rr := f.do(http.MethodGet, tc.target, nil, nil)

			assert.Equal(t, tc.wantStatus, rr.Code)
			for _, want := range tc.wantBody {
				assert.Contains(t, rr.Body.String(), want)
			}
		})
	}
}

func TestBlogPagesCreate(t *testing.T) {
	f := newPagesFixture(t, nil)

	rr := f.do(http.MethodPost, "/new", url.Values{
		"name":    {"Travel"},
		"handle":  {"travel"},
		"company": {"2"},
		"return":  {"/entities/blog?offset=20"},
	}, nil)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/entities/blog?offset=20", rr.Header().Get("Location"))
	require.Len(t, f.blogs.created, 1)
	assert.Empty(t, f.blogs.updated)
	assert.Nil(t, f.blogs.created[0].ID)
	assert.Equal(t, &companyservice.Company{ID: 2, Name: "Globex"}, f.blogs.created[0].Company)
}

func TestBlogPagesUpdate(t *testing.T) {
	f := newPagesFixture(t, nil)

	rr := f.do(http.MethodPost, "/edit/7", url.Values{
		"name":    {"Tech Talk"},
		"handle":  {"tech"},
		"company": {"1"},
		"version": {"1"},
		"return":  {"//evil.example.com"},
	}, nil)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/entities/blog", rr.Header().Get("Location"))
	require.Len(t, f.blogs.updated, 1)
	assert.Empty(t, f.blogs.created)
	assert.Equal(t, 7, *f.blogs.updated[0].ID)
	assert.Equal(t, "Tech Talk", f.blogs.updated[0].Name)
	assert.Equal(t, 1, f.blogs.updated[0].Version)
}

func TestBlogPagesInvalidForm(t *testing.T) {
	f := newPagesFixture(t, nil)

	rr := f.do(http.MethodPost, "/new", url.Values{"name": {"ab"}, "handle": {"t"}}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "at least 3 characters")
	assert.Contains(t, rr.Body.String(), "at least 2 characters")
	assert.Empty(t, f.blogs.created)
}

func TestBlogPagesSaveFailure(t *testing.T) {
	f := newPagesFixture(t, nil)
	f.blogs.err = errors.New("handle already taken")

	rr := f.do(http.MethodPost, "/edit/7", url.Values{"name": {"Tech Talk"}, "handle": {"tech"}, "company": {"1"}}, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Location"))
	assert.Contains(t, rr.Body.String(), `value="Tech Talk"`)
	assert.NotContains(t, rr.Body.String(), `role="alert"`)
	assert.NotContains(t, rr.Body.String(), "handle already taken")
	assert.Len(t, f.blogs.updated, 1)
}

func TestBlogPagesAccountCompany(t *testing.T) {
	f := newPagesFixture(t, &userservice.User{ID: 1, Company: &companyservice.Company{ID: 2, Name: "Globex"}})

	rr := f.do(http.MethodGet, "/edit/7", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "<select")
	assert.Contains(t, rr.Body.String(), `value="Globex" disabled`)
	assert.Equal(t, 0, f.companies.calls)

	rr = f.do(http.MethodPost, "/edit/7", url.Values{"name": {"Tech"}, "handle": {"tech"}, "company": {"1"}}, nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	require.Len(t, f.blogs.updated, 1)
	assert.Equal(t, 2, f.blogs.updated[0].Company.ID)
}

func TestBlogPagesCompanyQueryFailure(t *testing.T) {
	f := newPagesFixture(t, nil)
	f.companies.err = errors.New("Companies are unavailable")

	rr := f.do(http.MethodGet, "/new", nil, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `role="alert">Companies are unavailable`)
	assert.NotContains(t, rr.Body.String(), `<option value="1"`)
}

func TestBlogPagesBack(t *testing.T) {
	f := newPagesFixture(t, nil)

	rr := f.do(http.MethodPost, "/view/7", url.Values{"return": {"/entities/company"}}, nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/entities/company", rr.Header().Get("Location"))

	rr = f.do(http.MethodPost, "/view/7", url.Values{}, nil)
	assert.Equal(t, "/entities/blog", rr.Header().Get("Location"))
}

func TestBlogPagesReturnFromReferer(t *testing.T) {
	f := newPagesFixture(t, nil)

	rr := f.do(http.MethodGet, "/edit/7", nil, http.Header{"Referer": {"http://example.com/entities/blog?offset=20"}})
	assert.Contains(t, rr.Body.String(), `name="return" value="/entities/blog?offset=20"`)

	rr = f.do(http.MethodGet, "/edit/7", nil, http.Header{"Referer": {"http://other.example.com/phish"}})
	assert.Contains(t, rr.Body.String(), `name="return" value="/entities/blog"`)
}

func TestBlogPagesReaderError(t *testing.T) {
	f := newPagesFixture(t, nil)
	f.reader.err = errors.New("connection refused")

	rr := f.do(http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestCompanyPages(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	companies := &fakeCompanies{companies: []companyservice.Company{{ID: 1, Name: "Acme"}}}
	h := NewCompanyPages(CompanyPagesConfig{
		Base:      "/entities/company",
		Accounts:  &fakeAccounts{},
		Companies: companies,
		Renderer:  renderer,
		Logger:    discardLogger(),
	})

	testCases := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "list", target: "/", wantStatus: http.StatusOK, wantBody: `href="/entities/company/view/1"`},
		{name: "detail", target: "/view/1", wantStatus: http.StatusOK, wantBody: "Company 1"},
		{name: "unknown", target: "/view/9", wantStatus: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.target, nil))

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
		})
	}
}

func TestRendererUnknownPage(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = renderer.Render(rr, http.StatusOK, "missing", Page{})
	assert.Error(t, err)
	assert.Equal(t, 0, rr.Body.Len())
}

func TestAlerts(t *testing.T) {
	a := &Alerts{}
	a.Error("plain")
	a.Error("blog %d is locked", 7)
	a.Error("handle already taken", nil, nil)
	a.Error("100% full")
	assert.Equal(t, []string{"plain", "blog 7 is locked", "handle already taken", "100% full"}, a.Messages)
}
