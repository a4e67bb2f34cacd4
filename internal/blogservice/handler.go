package blogservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

func NewBlogService(db *sql.DB, cache *common.Cache, mb common.MessageProducer, logger *slog.Logger) *BlogService {
	return &BlogService{m: newBlogModel(db), c: cache, mb: mb, logger: logger}
}

// Every operation takes the tenant of the caller. A nil tenant sees and writes every company's blogs;
// otherwise reads are restricted to the tenant and writes are pinned to it.

// CreateBlog creates a new blog and fills in its ID. The company is forced to the tenant when there is one.
func (s *BlogService) CreateBlog(ctx context.Context, blog *Blog, tenant *companyservice.Company) error {
	pinTenant(blog, tenant)

	v := common.NewValidator()
	validateBlog(v, blog)
	if !v.Valid() {
		return v.ValidationError()
	}

	if err := s.m.insert(ctx, blog); err != nil {
		return err
	}

	s.publish(ctx, common.BlogCreatedKey, blog)

	return nil
}

// GetBlogByID returns a blog by its ID. Blogs of another tenant are reported as not found.
func (s *BlogService) GetBlogByID(ctx context.Context, id int, tenant *companyservice.Company) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.cachedBlog(ctx, id)
	if err != nil {
		return nil, err
	}

	if !visibleTo(blog, tenant) {
		return nil, ErrRecordNotFound
	}

	return blog, nil
}

// UpdateBlog updates a blog. The blog must be visible to the tenant and its company is forced to the tenant.
// A non-zero Version must match the stored version.
func (s *BlogService) UpdateBlog(ctx context.Context, blog *Blog, tenant *companyservice.Company) error {
	pinTenant(blog, tenant)

	v := common.NewValidator()
	v.Check(blog.ID != nil && *blog.ID > 0, "id", "must be greater than zero")
	validateBlog(v, blog)
	if !v.Valid() {
		return v.ValidationError()
	}

	if _, err := s.GetBlogByID(ctx, *blog.ID, tenant); err != nil {
		return err
	}

	if err := s.m.updateBlog(ctx, blog); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyBlog(*blog.ID))
	s.publish(ctx, common.BlogUpdatedKey, blog)

	return nil
}

// DeleteBlog deletes a blog. Deleting a blog of another tenant is reported as not found.
func (s *BlogService) DeleteBlog(ctx context.Context, id int, tenant *companyservice.Company) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	if err := s.m.deleteBlog(ctx, id, tenant); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyBlog(id))
	s.publish(ctx, common.BlogDeletedKey, &Blog{ID: &id, Company: tenant})

	return nil
}

// GetBlogs returns the tenant's blogs. Default limit is 10 and default offset is 0.
func (s *BlogService) GetBlogs(ctx context.Context, tenant *companyservice.Company, limit, offset int) ([]Blog, error) {
	limit, offset = normalizePage(limit, offset)
	return s.m.getBlogs(ctx, tenant, limit, offset)
}

// SearchBlogs returns the tenant's blogs whose name contains name, case-insensitively.
func (s *BlogService) SearchBlogs(ctx context.Context, name string, tenant *companyservice.Company, limit, offset int) ([]Blog, error) {
	v := common.NewValidator()
	v.Check(name != "", "q", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	limit, offset = normalizePage(limit, offset)
	return s.m.getBlogsByName(ctx, name, tenant, limit, offset)
}

// GetBlogsByCompanyID returns every blog of a company. A tenant only sees its own company.
func (s *BlogService) GetBlogsByCompanyID(ctx context.Context, companyID int, tenant *companyservice.Company) ([]Blog, error) {
	v := common.NewValidator()
	validateInt(v, companyID, "company_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if tenant != nil && tenant.ID != companyID {
		return nil, ErrRecordNotFound
	}

	return s.m.getBlogsByCompanyId(ctx, companyID)
}

func (s *BlogService) cachedBlog(ctx context.Context, id int) (*Blog, error) {
	if cached, ok := s.c.Get(common.CacheKeyBlog(id)); ok {
		return copyBlog(cached.(Blog)), nil
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlog(id), *copyBlog(*blog))

	return blog, nil
}

// publish sends a lifecycle event. Failures are logged because the write has already been committed.
func (s *BlogService) publish(ctx context.Context, key common.BindingKey, blog *Blog) {
	event := blogEvent{Name: blog.Name, Handle: blog.Handle}
	if blog.ID != nil {
		event.ID = *blog.ID
	}
	if blog.Company != nil {
		event.CompanyID = blog.Company.ID
	}

	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("could not marshal blog event", slog.String("key", string(key)), slog.String("error", err.Error()))
		return
	}

	if err := s.mb.Publish(ctx, body, key, common.BlogExchange); err != nil {
		s.logger.Error("could not publish blog event", slog.String("key", string(key)), slog.Int("blog_id", event.ID), slog.String("error", err.Error()))
	}
}

func pinTenant(blog *Blog, tenant *companyservice.Company) {
	if tenant == nil {
		return
	}

	c := *tenant
	blog.Company = &c
}

func visibleTo(blog *Blog, tenant *companyservice.Company) bool {
	return tenant == nil || (blog.Company != nil && blog.Company.ID == tenant.ID)
}

// copyBlog deep-copies so cached entries are never shared with callers.
func copyBlog(b Blog) *Blog {
	if b.ID != nil {
		id := *b.ID
		b.ID = &id
	}
	if b.Company != nil {
		c := *b.Company
		b.Company = &c
	}
	return &b
}

func normalizePage(limit, offset int) (int, int) {
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
