package companyservice

import (
	"context"
	"database/sql"

	"github.com/sushihentaime/companyblog/internal/common"
)

func NewCompanyService(db *sql.DB, cache *common.Cache) *CompanyService {
	return &CompanyService{m: newCompanyModel(db), c: cache}
}

// Query returns every company ordered by name. The list is served from the cache when present.
func (s *CompanyService) Query(ctx context.Context) ([]Company, error) {
	if cached, ok := s.c.Get(common.CacheKeyCompanies()); ok {
		companies := cached.([]Company)
		return append([]Company(nil), companies...), nil
	}

	companies, err := s.m.getAll(ctx)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyCompanies(), append([]Company(nil), companies...))

	return companies, nil
}

// GetCompanyByID returns a company by its ID.
func (s *CompanyService) GetCompanyByID(ctx context.Context, id int) (*Company, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyCompany(id)); ok {
		c := cached.(Company)
		return &c, nil
	}

	c, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyCompany(id), *c)

	return c, nil
}

// CreateCompany inserts the company and fills in its ID and version.
func (s *CompanyService) CreateCompany(ctx context.Context, c *Company) error {
	v := common.NewValidator()
	validateName(v, c.Name)
	if !v.Valid() {
		return v.ValidationError()
	}

	if err := s.m.insert(ctx, c); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyCompanies())

	return nil
}

// UpdateCompany renames a company. A non-zero version must match the stored one.
func (s *CompanyService) UpdateCompany(ctx context.Context, c *Company) error {
	v := common.NewValidator()
	validateInt(v, c.ID, "id")
	validateName(v, c.Name)
	if !v.Valid() {
		return v.ValidationError()
	}

	if err := s.m.update(ctx, c); err != nil {
		return err
	}

	s.invalidate(c.ID)

	return nil
}

// DeleteCompany deletes a company together with its blogs. Companies that still have user accounts
// are kept and ErrHasUsers is returned.
func (s *CompanyService) DeleteCompany(ctx context.Context, id int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	if err := s.m.delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(id)

	return nil
}

// invalidate drops the company entries and every cached blog, since blogs embed the company name
// and are removed with their company.
func (s *CompanyService) invalidate(id int) {
	s.c.Delete(common.CacheKeyCompany(id))
	s.c.Delete(common.CacheKeyCompanies())
	s.c.DeletePrefix(common.CacheKeyBlogPrefix)
}
