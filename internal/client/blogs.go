package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

var ErrMissingID = errors.New("blog has no id")

// BlogClient implements the blog entity service over /v1/blogs.
type BlogClient struct {
	c *Client
}

type blogPayload struct {
	ID      *int                    `json:"id,omitempty"`
	Name    string                  `json:"name"`
	Handle  string                  `json:"handle"`
	Company *companyservice.Company `json:"company"`
	Version int                     `json:"version,omitempty"`
}

func payloadOf(b *blogservice.Blog) blogPayload {
	return blogPayload{ID: b.ID, Name: b.Name, Handle: b.Handle, Company: b.Company, Version: b.Version}
}

type blogEnvelope struct {
	Blog *blogservice.Blog `json:"blog"`
}

type blogsEnvelope struct {
	Blogs []blogservice.Blog `json:"blogs"`
}

func (bc *BlogClient) Create(ctx context.Context, blog *blogservice.Blog) (*blogservice.Blog, error) {
	var env blogEnvelope
	if err := bc.c.do(ctx, http.MethodPost, "/v1/blogs", payloadOf(blog), &env); err != nil {
		return nil, err
	}
	return env.Blog, nil
}

func (bc *BlogClient) Update(ctx context.Context, blog *blogservice.Blog) (*blogservice.Blog, error) {
	if blog.ID == nil {
		return nil, ErrMissingID
	}

	var env blogEnvelope
	if err := bc.c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/blogs/%d", *blog.ID), payloadOf(blog), &env); err != nil {
		return nil, err
	}
	return env.Blog, nil
}

func (bc *BlogClient) Find(ctx context.Context, id int) (*blogservice.Blog, error) {
	var env blogEnvelope
	if err := bc.c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/blogs/%d", id), nil, &env); err != nil {
		return nil, err
	}
	return env.Blog, nil
}

func (bc *BlogClient) List(ctx context.Context, limit, offset int) ([]blogservice.Blog, error) {
	return bc.list(ctx, url.Values{"limit": {strconv.Itoa(limit)}, "offset": {strconv.Itoa(offset)}})
}

// Search lists blogs whose name contains name.
func (bc *BlogClient) Search(ctx context.Context, name string, limit, offset int) ([]blogservice.Blog, error) {
	return bc.list(ctx, url.Values{"q": {name}, "limit": {strconv.Itoa(limit)}, "offset": {strconv.Itoa(offset)}})
}

func (bc *BlogClient) list(ctx context.Context, params url.Values) ([]blogservice.Blog, error) {
	var env blogsEnvelope
	if err := bc.c.do(ctx, http.MethodGet, pageQuery("/v1/blogs", params), nil, &env); err != nil {
		return nil, err
	}
	return env.Blogs, nil
}

func (bc *BlogClient) Delete(ctx context.Context, id int) error {
	return bc.c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/blogs/%d", id), nil, nil)
}
