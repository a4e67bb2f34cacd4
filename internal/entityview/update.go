package entityview

import (
	"context"
	"log/slog"

	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/companyservice"
	"github.com/sushihentaime/companyblog/internal/userservice"
)

// UpdateView edits a new or existing blog.
type UpdateView struct {
	accounts  AccountService
	blogs     BlogEntityService
	companies CompanyService
	alerts    Alerter
	nav       Navigator
	logger    *slog.Logger

	Account   *userservice.User
	Companies []companyservice.Company
	Form      *BlogForm
	IsSaving  bool
}

type UpdateViewDeps struct {
	Accounts  AccountService
	Blogs     BlogEntityService
	Companies CompanyService
	Alerts    Alerter
	Nav       Navigator
	Logger    *slog.Logger
}

func NewUpdateView(deps UpdateViewDeps) *UpdateView {
	return &UpdateView{
		accounts:  deps.Accounts,
		blogs:     deps.Blogs,
		companies: deps.Companies,
		alerts:    deps.Alerts,
		nav:       deps.Nav,
		logger:    deps.Logger,
		Form:      NewBlogForm(),
	}
}

// Init waits for the account before touching the route data. An account bound to a
// company overrides the blog's company and the company list is not loaded.
func (v *UpdateView) Init(ctx context.Context, data RouteData) error {
	account, err := v.accounts.Identity(ctx)
	if err != nil {
		return err
	}
	v.Account = account

	blog := data.Blog
	if blog == nil {
		blog = &blogservice.Blog{}
	}

	if company := v.accountCompany(); company != nil {
		blog.Company = company
		v.Form.LockCompany(company)
	} else {
		companies, err := v.companies.Query(ctx)
		if err != nil {
			v.alerts.Error(err.Error())
		} else {
			v.Companies = companies
		}
	}

	v.Form.Patch(blog)

	return nil
}

func (v *UpdateView) accountCompany() *companyservice.Company {
	if v.Account == nil {
		return nil
	}
	return v.Account.Company
}

// Save creates the blog when it has no id and updates it otherwise. On success the
// view navigates back. A failed save only clears IsSaving; the error is returned.
func (v *UpdateView) Save(ctx context.Context) error {
	v.IsSaving = true

	blog := v.Form.Blog()

	var err error
	if blog.ID != nil {
		_, err = v.blogs.Update(ctx, blog)
	} else {
		_, err = v.blogs.Create(ctx, blog)
	}

	v.IsSaving = false

	if err != nil {
		v.logger.Warn("could not save blog", slog.String("error", err.Error()), slog.Bool("new", blog.ID == nil))
		return err
	}

	v.PreviousState()
	return nil
}

func (v *UpdateView) PreviousState() {
	v.nav.Back()
}

// TrackCompanyByID is the identity of a company option.
func (v *UpdateView) TrackCompanyByID(index int, company companyservice.Company) int {
	return company.ID
}
