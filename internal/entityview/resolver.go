package entityview

import (
	"context"

	"github.com/sushihentaime/companyblog/internal/blogservice"
)

type BlogResolver struct {
	blogs BlogReader
}

func NewBlogResolver(blogs BlogReader) *BlogResolver {
	return &BlogResolver{blogs: blogs}
}

func (r *BlogResolver) Resolve(ctx context.Context, id *int) (*blogservice.Blog, error) {
	if id == nil {
		return &blogservice.Blog{}, nil
	}

	return r.blogs.Find(ctx, *id)
}

// RouteDataFor resolves the blog for id and wraps it for view activation.
func RouteDataFor(ctx context.Context, r Resolver, id *int) (RouteData, error) {
	blog, err := r.Resolve(ctx, id)
	if err != nil {
		return RouteData{}, err
	}

	return RouteData{Blog: blog}, nil
}
