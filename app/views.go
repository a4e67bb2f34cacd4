package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/client"
	"github.com/sushihentaime/companyblog/internal/companyservice"
	"github.com/sushihentaime/companyblog/internal/entityroute"
	"github.com/sushihentaime/companyblog/internal/entityview"
	"github.com/sushihentaime/companyblog/internal/userservice"
)

const entityPrefix = "/entities"

var errNotPermitted = errors.New("your user account doesn't have the necessary permissions to change blogs")

// localBlogs serves the blog views from the in-process blog service, scoped to the request's tenant.
type localBlogs struct {
	svc *blogservice.BlogService
}

func (b localBlogs) Create(ctx context.Context, blog *blogservice.Blog) (*blogservice.Blog, error) {
	user, err := blogWriter(ctx)
	if err != nil {
		return nil, err
	}

	if err := b.svc.CreateBlog(ctx, blog, tenantOf(user)); err != nil {
		return nil, err
	}
	return blog, nil
}

func (b localBlogs) Update(ctx context.Context, blog *blogservice.Blog) (*blogservice.Blog, error) {
	user, err := blogWriter(ctx)
	if err != nil {
		return nil, err
	}

	if err := b.svc.UpdateBlog(ctx, blog, tenantOf(user)); err != nil {
		return nil, err
	}
	return blog, nil
}

func (b localBlogs) List(ctx context.Context, limit, offset int) ([]blogservice.Blog, error) {
	return b.svc.GetBlogs(ctx, tenantOf(contextUser(ctx)), limit, offset)
}

func (b localBlogs) Find(ctx context.Context, id int) (*blogservice.Blog, error) {
	return b.svc.GetBlogByID(ctx, id, tenantOf(contextUser(ctx)))
}

// blogWriter applies the same checks as requirePermission on the JSON API.
func blogWriter(ctx context.Context) (*userservice.User, error) {
	user := contextUser(ctx)
	if user.IsAnonymous() || !user.IsActivated() || !user.HasPermission(userservice.PermissionWriteBlog) {
		return nil, errNotPermitted
	}
	return user, nil
}

type localCompanies struct {
	svc *companyservice.CompanyService
}

func (c localCompanies) Query(ctx context.Context) ([]companyservice.Company, error) {
	return c.svc.Query(ctx)
}

func (c localCompanies) Find(ctx context.Context, id int) (*companyservice.Company, error) {
	return c.svc.GetCompanyByID(ctx, id)
}

// remoteBlogs and remoteCompanies forward every call to a companyblog API with the caller's token.
type remoteBlogs struct {
	c *client.Client
}

func (b remoteBlogs) api(ctx context.Context) *client.BlogClient {
	return b.c.WithToken(contextToken(ctx)).Blogs()
}

func (b remoteBlogs) Create(ctx context.Context, blog *blogservice.Blog) (*blogservice.Blog, error) {
	return b.api(ctx).Create(ctx, blog)
}

func (b remoteBlogs) Update(ctx context.Context, blog *blogservice.Blog) (*blogservice.Blog, error) {
	return b.api(ctx).Update(ctx, blog)
}

func (b remoteBlogs) List(ctx context.Context, limit, offset int) ([]blogservice.Blog, error) {
	return b.api(ctx).List(ctx, limit, offset)
}

func (b remoteBlogs) Find(ctx context.Context, id int) (*blogservice.Blog, error) {
	return b.api(ctx).Find(ctx, id)
}

type remoteCompanies struct {
	c *client.Client
}

func (c remoteCompanies) Query(ctx context.Context) ([]companyservice.Company, error) {
	return c.c.WithToken(contextToken(ctx)).Companies().Query(ctx)
}

func (c remoteCompanies) Find(ctx context.Context, id int) (*companyservice.Company, error) {
	return c.c.WithToken(contextToken(ctx)).Companies().Find(ctx, id)
}

type blogBackend interface {
	entityview.BlogEntityService
	entityview.BlogReader
}

// entitySources picks the backends of the entity pages: local services, or the API at config.EntityAPIURL.
func (app *application) entitySources() (blogBackend, entityview.CompanyReader) {
	if app.config.EntityAPIURL != "" {
		c := client.New(app.config.EntityAPIURL, "", 10*time.Second)
		return remoteBlogs{c: c}, remoteCompanies{c: c}
	}

	return localBlogs{svc: app.blogService}, localCompanies{svc: app.companyService}
}

// entities registers the blog and company features. Each is built on its first request.
func (app *application) entities() (*entityroute.Registry, error) {
	registry := entityroute.New(entityPrefix, app.logger)
	blogs, companies := app.entitySources()

	err := registry.Register("blog", func() (http.Handler, error) {
		renderer, err := entityview.NewRenderer()
		if err != nil {
			return nil, err
		}

		return entityview.NewBlogPages(entityview.BlogPagesConfig{
			Base:      registry.Path("blog"),
			Accounts:  accountService{},
			Blogs:     blogs,
			Reader:    blogs,
			Companies: companies,
			Renderer:  renderer,
			Logger:    app.logger,
		}), nil
	})
	if err != nil {
		return nil, err
	}

	err = registry.Register("company", func() (http.Handler, error) {
		renderer, err := entityview.NewRenderer()
		if err != nil {
			return nil, err
		}

		return entityview.NewCompanyPages(entityview.CompanyPagesConfig{
			Base:      registry.Path("company"),
			Accounts:  accountService{},
			Companies: companies,
			Renderer:  renderer,
			Logger:    app.logger,
		}), nil
	})
	if err != nil {
		return nil, err
	}

	return registry, nil
}
