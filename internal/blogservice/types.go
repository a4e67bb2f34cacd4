package blogservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

// Blog is a company blog. ID is nil until the blog has been persisted.
type Blog struct {
	ID        *int                    `json:"id,omitempty"`
	Name      string                  `json:"name"`
	Handle    string                  `json:"handle"`
	Company   *companyservice.Company `json:"company"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
	Version   int                     `json:"version"`
}

// IsNew reports whether the blog is a pending creation.
func (b *Blog) IsNew() bool {
	return b.ID == nil
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m      *BlogModel
	c      *common.Cache
	mb     common.MessageProducer
	logger *slog.Logger
}

// blogEvent is the body published for blog lifecycle events.
type blogEvent struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	CompanyID int    `json:"company_id"`
}
