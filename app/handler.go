package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
	"github.com/sushihentaime/companyblog/internal/userservice"
)

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input userservice.CreateUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	// self registration never picks a company; administrators use /v1/admin/users
	user, token, err := app.userService.CreateUser(r.Context(), input, nil)
	if err != nil {
		app.writeUserError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"user": user, "token": token}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) writeUserError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, userservice.ErrNotFound):
		app.notFoundErrorResponse(w, r)
	case errors.Is(err, userservice.ErrEditConflict):
		app.editConflictResponse(w, r)
	case errors.Is(err, userservice.ErrDuplicateEmail):
		app.failedValidationErrorResponse(w, r, map[string]string{"email": "a user with this email address already exists"})
	case errors.Is(err, userservice.ErrDuplicateUsername):
		app.failedValidationErrorResponse(w, r, map[string]string{"username": "this username is already taken"})
	case errors.Is(err, userservice.ErrCompanyForeignKey):
		app.failedValidationErrorResponse(w, r, map[string]string{"company_id": "company does not exist"})
	case errors.As(err, &common.ValidationError{}):
		validationErr := err.(common.ValidationError)
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

type activateUserRequest struct {
	Token string `json:"token"`
}

func (app *application) activateUserHandler(w http.ResponseWriter, r *http.Request) {
	var input activateUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.userService.ActivateUser(r.Context(), input.Token)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "user account activated"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type loginUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input loginUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	token, err := app.userService.LoginUser(r.Context(), input.Username, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrNotFound):
			app.invalidCredentialsErrorResponse(w, r)
		case errors.Is(err, userservice.ErrAuthenticationFailure):
			app.invalidCredentialsErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// the entity pages authenticate with the same access token
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token.AccessTokenPlain,
		Path:     "/",
		Expires:  token.AccessTokenExpiry,
		HttpOnly: true,
		Secure:   app.config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})

	err = app.writeJSON(w, http.StatusOK, envelope{"token": token}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) logoutUserHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	err := app.userService.LogoutUser(r.Context(), user.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: tokenCookieName, Value: "", Path: "/", MaxAge: -1})

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "user logged out"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) accountHandler(w http.ResponseWriter, r *http.Request) {
	err := app.writeJSON(w, http.StatusOK, envelope{"user": app.getUserContext(r)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// blogRequest is the REST payload for create and update. The id, when sent, must match the path.
type blogRequest struct {
	ID      *int                    `json:"id"`
	Name    string                  `json:"name"`
	Handle  string                  `json:"handle"`
	Company *companyservice.Company `json:"company"`
	Version int                     `json:"version"`
}

func (app *application) writeBlogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, blogservice.ErrRecordNotFound):
		app.notFoundErrorResponse(w, r)
	case errors.Is(err, blogservice.ErrEditConflict):
		app.editConflictResponse(w, r)
	case errors.Is(err, blogservice.ErrDuplicateHandle):
		app.failedValidationErrorResponse(w, r, map[string]string{"handle": "a blog with this handle already exists"})
	case errors.Is(err, blogservice.ErrCompanyForeignKey):
		app.failedValidationErrorResponse(w, r, map[string]string{"company": "company does not exist"})
	case errors.As(err, &common.ValidationError{}):
		validationErr := err.(common.ValidationError)
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

// getBlogsHandler lists the caller's blogs; with ?q= it searches them by name.
func (app *application) getBlogsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	tenant := tenantOf(app.getUserContext(r))

	var blogs []blogservice.Blog
	if q := r.URL.Query().Get("q"); q != "" {
		blogs, err = app.blogService.SearchBlogs(r.Context(), q, tenant, limit, offset)
	} else {
		blogs, err = app.blogService.GetBlogs(r.Context(), tenant, limit, offset)
	}
	if err != nil {
		app.writeBlogError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.GetBlogByID(r.Context(), id, tenantOf(app.getUserContext(r)))
	if err != nil {
		app.writeBlogError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input blogRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	if input.ID != nil {
		app.failedValidationErrorResponse(w, r, map[string]string{"id": "a new blog cannot already have an id"})
		return
	}

	blog := &blogservice.Blog{Name: input.Name, Handle: input.Handle, Company: input.Company}

	err = app.blogService.CreateBlog(r.Context(), blog, tenantOf(app.getUserContext(r)))
	if err != nil {
		app.writeBlogError(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", "/v1/blogs/"+strconv.Itoa(*blog.ID))

	err = app.writeJSON(w, http.StatusCreated, envelope{"blog": blog}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input blogRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	if input.ID != nil && *input.ID != id {
		app.failedValidationErrorResponse(w, r, map[string]string{"id": "must match the id in the path"})
		return
	}

	blog := &blogservice.Blog{ID: &id, Name: input.Name, Handle: input.Handle, Company: input.Company, Version: input.Version}

	err = app.blogService.UpdateBlog(r.Context(), blog, tenantOf(app.getUserContext(r)))
	if err != nil {
		app.writeBlogError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.blogService.DeleteBlog(r.Context(), id, tenantOf(app.getUserContext(r)))
	if err != nil {
		app.writeBlogError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "blog deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type companyRequest struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

func (app *application) writeCompanyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrRecordNotFound):
		app.notFoundErrorResponse(w, r)
	case errors.Is(err, companyservice.ErrHasUsers):
		app.writeErrorResponse(w, r, http.StatusConflict, "the company still has user accounts")
	case errors.Is(err, companyservice.ErrDuplicateName):
		app.failedValidationErrorResponse(w, r, map[string]string{"name": "a company with this name already exists"})
	case errors.As(err, &common.ValidationError{}):
		validationErr := err.(common.ValidationError)
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getCompaniesHandler(w http.ResponseWriter, r *http.Request) {
	companies, err := app.companyService.Query(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"companies": companies}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getCompanyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	company, err := app.companyService.GetCompanyByID(r.Context(), id)
	if err != nil {
		app.writeCompanyError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"company": company}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getCompanyBlogsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs, err := app.blogService.GetBlogsByCompanyID(r.Context(), id, tenantOf(app.getUserContext(r)))
	if err != nil {
		app.writeBlogError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createCompanyHandler(w http.ResponseWriter, r *http.Request) {
	var input companyRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	company := &companyservice.Company{Name: input.Name}

	err = app.companyService.CreateCompany(r.Context(), company)
	if err != nil {
		app.writeCompanyError(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", "/v1/companies/"+strconv.Itoa(company.ID))

	err = app.writeJSON(w, http.StatusCreated, envelope{"company": company}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateCompanyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input companyRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	company := &companyservice.Company{ID: id, Name: input.Name, Version: input.Version}

	err = app.companyService.UpdateCompany(r.Context(), company)
	if err != nil {
		app.writeCompanyError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"company": company}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteCompanyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.companyService.DeleteCompany(r.Context(), id)
	if err != nil {
		app.writeCompanyError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "company deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// getUsersHandler lists the accounts of the administrator's company, or every account for an
// administrator without one.
func (app *application) getUsersHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	users, err := app.userService.ListUsers(r.Context(), tenantOf(app.getUserContext(r)), limit, offset)
	if err != nil {
		app.writeUserError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"users": users}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var input userservice.CreateUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, token, err := app.userService.CreateUser(r.Context(), input, app.getUserContext(r))
	if err != nil {
		app.writeUserError(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", "/v1/admin/users/"+strconv.Itoa(user.ID))

	err = app.writeJSON(w, http.StatusCreated, envelope{"user": user, "token": token}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, err := app.userService.GetUserByID(r.Context(), id, tenantOf(app.getUserContext(r)))
	if err != nil {
		app.writeUserError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input userservice.UpdateUserRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}
	input.ID = id

	user, err := app.userService.UpdateUser(r.Context(), input, app.getUserContext(r))
	if err != nil {
		app.writeUserError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
