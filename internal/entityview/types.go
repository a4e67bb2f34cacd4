package entityview

import (
	"context"

	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/companyservice"
	"github.com/sushihentaime/companyblog/internal/userservice"
)

// AccountService returns the current account, or nil when nobody is signed in.
type AccountService interface {
	Identity(ctx context.Context) (*userservice.User, error)
}

type BlogEntityService interface {
	Create(ctx context.Context, blog *blogservice.Blog) (*blogservice.Blog, error)
	Update(ctx context.Context, blog *blogservice.Blog) (*blogservice.Blog, error)
}

type CompanyService interface {
	Query(ctx context.Context) ([]companyservice.Company, error)
}

// BlogReader backs the list pages and the route data resolver.
type BlogReader interface {
	List(ctx context.Context, limit, offset int) ([]blogservice.Blog, error)
	Find(ctx context.Context, id int) (*blogservice.Blog, error)
}

type CompanyReader interface {
	CompanyService
	Find(ctx context.Context, id int) (*companyservice.Company, error)
}

type Alerter interface {
	// Error raises message; args format it when it contains verbs.
	Error(message string, args ...any)
}

type Navigator interface {
	Back()
}

// Resolver supplies the blog a view is activated with. A nil id yields a blank blog.
type Resolver interface {
	Resolve(ctx context.Context, id *int) (*blogservice.Blog, error)
}

// RouteData is what the router hands a view on activation.
type RouteData struct {
	Blog *blogservice.Blog
}
