package userservice

import (
	"database/sql"
	"time"

	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

type tokenScope string

type Permission string
type Permissions []Permission

const (
	TokenScopeActivate tokenScope = "token:activate"

	ActivationTokenTime time.Duration = 3 * 24 * time.Hour
	AccessTokenTime     time.Duration = 7 * 24 * time.Hour
	RefreshTokenTime    time.Duration = 30 * 24 * time.Hour

	PermissionWriteBlog    Permission = "blog:write"
	PermissionWriteCompany Permission = "company:write"
	PermissionAdminUser    Permission = "user:admin"

	defaultLimit = 10
	maxLimit     = 100
)

var (
	AnonymousUser = User{}

	knownPermissions = []Permission{PermissionWriteBlog, PermissionWriteCompany, PermissionAdminUser}
)

type UserService struct {
	m  *DBModel
	mb common.MessageProducer
}

type DBModel struct {
	db *sql.DB
}

// User is an account. Company is nil for accounts that are not bound to a tenant.
type User struct {
	ID        int                     `json:"id"`
	Username  string                  `json:"username"`
	Email     string                  `json:"email"`
	Password  Password                `json:"-"`
	Activated bool                    `json:"activated"`
	Company   *companyservice.Company `json:"company,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
	Version   int                     `json:"version"`

	Permissions Permissions `json:"permissions"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

type Token struct {
	Plain  string     `json:"token"`
	Hash   []byte     `json:"-"`
	UserID int        `json:"-"`
	Expiry time.Time  `json:"expiry"`
	Scope  tokenScope `json:"-"`
}

// Authentication Token
type AuthToken struct {
	AccessTokenPlain   string    `json:"access_token"`
	AccessTokenHash    []byte    `json:"-"`
	RefreshTokenPlain  string    `json:"refresh_token"`
	RefreshTokenHash   []byte    `json:"-"`
	UserID             int       `json:"user_id"`
	AccessTokenExpiry  time.Time `json:"access_token_expiry"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry"`
}

type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	CompanyID *int   `json:"company_id"`
}

// UpdateUserRequest replaces the email, company and permissions of an account.
type UpdateUserRequest struct {
	ID          int         `json:"-"`
	Email       string      `json:"email"`
	CompanyID   *int        `json:"company_id"`
	Permissions Permissions `json:"permissions"`
	Version     int         `json:"version"`
}
