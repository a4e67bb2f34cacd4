package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("unauthorized access")
)

func NewUserService(db *sql.DB, mb common.MessageProducer) *UserService {
	return &UserService{
		m:  newUserModel(db),
		mb: mb,
	}
}

// CreateUser creates a new user account and publishes a user.created event carrying the activation token.
// creator is nil for public registration, which never picks a company. When creator belongs to a company
// the new account joins that company and req.CompanyID is ignored; only administrators without a company
// may choose one.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest, creator *User) (*User, *Token, error) {
	v := common.NewValidator()
	validateUsername(v, req.Username)
	validateEmail(v, req.Email)
	validatePassword(v, req.Password)
	companyID := assignedCompany(v, req.CompanyID, creator)
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	u := User{
		Username: req.Username,
		Email:    req.Email,
		Password: Password{Plain: req.Password},
	}

	err := u.Password.set(u.Password.Plain)
	if err != nil {
		return nil, nil, err
	}

	err = s.m.insertUser(ctx, &u, companyID)
	if err != nil {
		return nil, nil, err
	}

	if companyID != nil {
		u.Company = &companyservice.Company{ID: *companyID}
	}

	token, err := s.m.createToken(ctx, u.ID, ActivationTokenTime, TokenScopeActivate)
	if err != nil {
		return nil, nil, err
	}

	data := struct {
		Email string
		Token string
	}{
		Email: u.Email,
		Token: token.Plain,
	}

	emailData, err := json.Marshal(data)
	if err != nil {
		return nil, nil, err
	}

	err = s.mb.Publish(ctx, emailData, common.UserCreatedKey, common.UserExchange)
	if err != nil {
		return nil, nil, err
	}

	return &u, token, nil
}

// ActivateUser activates the account owning token, deletes the token and grants the write permissions.
func (s *UserService) ActivateUser(ctx context.Context, token string) error {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return v.ValidationError()
	}

	user, err := s.m.getUser(ctx, TokenScopeActivate, hashToken(token))
	if err != nil {
		return err
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = s.m.activateUserAccount(tx, ctx, user.ID, user.Version)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = s.m.deleteToken(tx, ctx, user.ID, TokenScopeActivate)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	adminExists := true
	if user.Company == nil {
		adminExists, err = s.m.adminExists(tx, ctx)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	err = s.m.addUserPermission(tx, ctx, user.ID, grantedOnActivation(user, adminExists)...)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// LoginUser checks the credentials and issues a fresh access/refresh token pair, replacing any previous one.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*AuthToken, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getUserByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := user.Password.matches(password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAuthenticationFailure
	}

	// rehash passwords stored with an outdated cost
	if user.Password.outdated() {
		if err := user.Password.set(password); err != nil {
			return nil, err
		}
		if err := s.m.updateUserPassword(ctx, user.Password, user.ID, user.Version); err != nil {
			return nil, err
		}
	}

	existing, err := s.m.getAuthToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		err = s.m.deleteAuthToken(tx, ctx, user.ID)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}

	authToken, err := s.m.createAuthToken(tx, ctx, user.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return authToken, nil
}

// GetUserByAccessToken returns the user, with company and permissions, owning a valid access token.
func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getToken(ctx, hashToken(token))
}

func (s *UserService) LogoutUser(ctx context.Context, userID int) error {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = s.m.deleteAuthToken(tx, ctx, userID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// assignedCompany decides which company a new account joins.
func assignedCompany(v *common.Validator, requested *int, creator *User) *int {
	switch {
	case creator != nil && creator.Company != nil:
		id := creator.Company.ID
		return &id
	case requested == nil:
		return nil
	case creator == nil || !creator.IsAdmin():
		v.AddError("company_id", "can only be set by an administrator")
		return nil
	default:
		validateCompanyID(v, requested)
		return requested
	}
}

// GetUserByID returns an account with its company and permissions. Accounts outside the tenant are
// reported as not found.
func (s *UserService) GetUserByID(ctx context.Context, id int, tenant *companyservice.Company) (*User, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u, err := s.m.getUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if tenant != nil && (u.Company == nil || u.Company.ID != tenant.ID) {
		return nil, ErrNotFound
	}

	return u, nil
}

// ListUsers returns the tenant's accounts ordered by id. A nil tenant lists every account.
// Default limit is 10 and default offset is 0.
func (s *UserService) ListUsers(ctx context.Context, tenant *companyservice.Company, limit, offset int) ([]User, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	var companyID *int
	if tenant != nil {
		companyID = &tenant.ID
	}

	return s.m.listUsers(ctx, companyID, limit, offset)
}

// UpdateUser replaces the email, company and permissions of an account visible to actor.
// An actor bound to a company keeps the account in that company. Permissions the actor does not
// hold cannot be granted, and blog:write without a company is reserved for administrators.
func (s *UserService) UpdateUser(ctx context.Context, req UpdateUserRequest, actor *User) (*User, error) {
	v := common.NewValidator()
	validateInt(v, req.ID, "id")
	validateEmail(v, req.Email)
	validatePermissions(v, req.Permissions, actor)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u, err := s.GetUserByID(ctx, req.ID, actor.Company)
	if err != nil {
		return nil, err
	}

	var company *companyservice.Company
	switch {
	case actor.Company != nil:
		c := *actor.Company
		company = &c
	case req.CompanyID != nil:
		validateCompanyID(v, req.CompanyID)
		company = &companyservice.Company{ID: *req.CompanyID}
		if u.Company != nil && u.Company.ID == *req.CompanyID {
			company.Name = u.Company.Name
		}
	}

	permissions := dedupePermissions(req.Permissions)
	if company == nil && contains(permissions, PermissionWriteBlog) && !contains(permissions, PermissionAdminUser) {
		v.AddError("permissions", "blog:write requires a company unless user:admin is granted")
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	var companyID *int
	if company != nil {
		companyID = &company.ID
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	u.Email = req.Email
	u.Version = req.Version

	err = s.m.updateUser(tx, ctx, u, companyID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	err = s.m.replaceUserPermissions(tx, ctx, u.ID, permissions...)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	u.Company = company
	u.Permissions = permissions

	return u, nil
}

// dedupePermissions keeps the first occurrence of each permission, in order.
func dedupePermissions(permissions Permissions) Permissions {
	out := Permissions{}
	for _, p := range permissions {
		if !contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func contains(permissions Permissions, p Permission) bool {
	for _, q := range permissions {
		if q == p {
			return true
		}
	}
	return false
}
