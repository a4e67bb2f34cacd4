package companyservice

import (
	"database/sql"

	"github.com/sushihentaime/companyblog/internal/common"
)

// Company is the tenant a blog and a user can belong to.
type Company struct {
	ID      int    `json:"id"`
	Name    string `json:"name,omitempty"`
	Version int    `json:"version,omitempty"`
}

type CompanyModel struct {
	db *sql.DB
}

type CompanyService struct {
	m *CompanyModel
	c *common.Cache
}
