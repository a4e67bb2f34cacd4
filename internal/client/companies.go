package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sushihentaime/companyblog/internal/companyservice"
)

// CompanyClient implements the company service over /v1/companies.
type CompanyClient struct {
	c *Client
}

type companyEnvelope struct {
	Company *companyservice.Company `json:"company"`
}

func (cc *CompanyClient) Query(ctx context.Context) ([]companyservice.Company, error) {
	var env struct {
		Companies []companyservice.Company `json:"companies"`
	}
	if err := cc.c.do(ctx, http.MethodGet, "/v1/companies", nil, &env); err != nil {
		return nil, err
	}
	return env.Companies, nil
}

func (cc *CompanyClient) Find(ctx context.Context, id int) (*companyservice.Company, error) {
	var env companyEnvelope
	if err := cc.c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/companies/%d", id), nil, &env); err != nil {
		return nil, err
	}
	return env.Company, nil
}

func (cc *CompanyClient) Create(ctx context.Context, name string) (*companyservice.Company, error) {
	var env companyEnvelope
	if err := cc.c.do(ctx, http.MethodPost, "/v1/companies", map[string]string{"name": name}, &env); err != nil {
		return nil, err
	}
	return env.Company, nil
}

func (cc *CompanyClient) Delete(ctx context.Context, id int) error {
	return cc.c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/companies/%d", id), nil, nil)
}
