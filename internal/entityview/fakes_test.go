package entityview

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
	"github.com/sushihentaime/companyblog/internal/userservice"
)

func intptr(i int) *int {
	return &i
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAccounts struct {
	user  *userservice.User
	err   error
	calls int
}

func (f *fakeAccounts) Identity(ctx context.Context) (*userservice.User, error) {
	f.calls++
	return f.user, f.err
}

type fakeBlogs struct {
	err      error
	created  []*blogservice.Blog
	updated  []*blogservice.Blog
	duringFn func()
}

func (f *fakeBlogs) Create(ctx context.Context, blog *blogservice.Blog) (*blogservice.Blog, error) {
	f.created = append(f.created, blog)
	if f.duringFn != nil {
		f.duringFn()
	}
	if f.err != nil {
		return nil, f.err
	}
	saved := *blog
	saved.ID = intptr(100)
	return &saved, nil
}

func (f *fakeBlogs) Update(ctx context.Context, blog *blogservice.Blog) (*blogservice.Blog, error) {
	f.updated = append(f.updated, blog)
	if f.duringFn != nil {
		f.duringFn()
	}
	if f.err != nil {
		return nil, f.err
	}
	return blog, nil
}

type fakeCompanies struct {
	companies []companyservice.Company
	err       error
	calls     int
}

func (f *fakeCompanies) Query(ctx context.Context) ([]companyservice.Company, error) {
	f.calls++
	return f.companies, f.err
}

func (f *fakeCompanies) Find(ctx context.Context, id int) (*companyservice.Company, error) {
	for _, c := range f.companies {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, common.ErrRecordNotFound
}

type fakeReader struct {
	blogs map[int]*blogservice.Blog
	err   error
}

func (f *fakeReader) List(ctx context.Context, limit, offset int) ([]blogservice.Blog, error) {
	if f.err != nil {
		return nil, f.err
	}

	ids := make([]int, 0, len(f.blogs))
	for id := range f.blogs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var blogs []blogservice.Blog
	for _, id := range ids {
		blogs = append(blogs, *f.blogs[id])
	}
	return blogs, nil
}

func (f *fakeReader) Find(ctx context.Context, id int) (*blogservice.Blog, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.blogs[id]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	found := *b
	return &found, nil
}

type fakeNav struct {
	backs int
}

func (f *fakeNav) Back() {
	f.backs++
}
