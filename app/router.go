package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sushihentaime/companyblog/internal/userservice"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	// user service
	router.HandlerFunc(http.MethodPost, "/v1/users/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPut, "/v1/users/activate", app.activateUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/logout", app.requireAuthUser(app.logoutUserHandler))
	router.HandlerFunc(http.MethodGet, "/v1/account", app.requireAuthUser(app.accountHandler))

	// user administration
	router.HandlerFunc(http.MethodGet, "/v1/admin/users", app.requirePermission(app.getUsersHandler, userservice.PermissionAdminUser))
	router.HandlerFunc(http.MethodPost, "/v1/admin/users", app.requirePermission(app.createUserHandler, userservice.PermissionAdminUser))
	router.HandlerFunc(http.MethodGet, "/v1/admin/users/:id", app.requirePermission(app.getUserHandler, userservice.PermissionAdminUser))
	router.HandlerFunc(http.MethodPut, "/v1/admin/users/:id", app.requirePermission(app.updateUserHandler, userservice.PermissionAdminUser))

	// blog service
	router.HandlerFunc(http.MethodGet, "/v1/blogs", app.getBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/blogs", app.requirePermission(app.createBlogHandler, userservice.PermissionWriteBlog))
	router.HandlerFunc(http.MethodGet, "/v1/blogs/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodPut, "/v1/blogs/:id", app.requirePermission(app.updateBlogHandler, userservice.PermissionWriteBlog))
	router.HandlerFunc(http.MethodDelete, "/v1/blogs/:id", app.requirePermission(app.deleteBlogHandler, userservice.PermissionWriteBlog))

	// company service
	router.HandlerFunc(http.MethodGet, "/v1/companies", app.getCompaniesHandler)
	router.HandlerFunc(http.MethodPost, "/v1/companies", app.requirePermission(app.createCompanyHandler, userservice.PermissionWriteCompany))
	router.HandlerFunc(http.MethodGet, "/v1/companies/:id", app.getCompanyHandler)
	router.HandlerFunc(http.MethodGet, "/v1/companies/:id/blogs", app.getCompanyBlogsHandler)
	router.HandlerFunc(http.MethodPut, "/v1/companies/:id", app.requirePermission(app.updateCompanyHandler, userservice.PermissionWriteCompany))
	router.HandlerFunc(http.MethodDelete, "/v1/companies/:id", app.requirePermission(app.deleteCompanyHandler, userservice.PermissionWriteCompany))

	// entity pages
	router.Handler(http.MethodGet, entityPrefix+"/*path", app.entityRegistry)
	router.Handler(http.MethodPost, entityPrefix+"/*path", app.entityRegistry)
	router.Handler(http.MethodGet, "/", http.RedirectHandler(entityPrefix+"/blog", http.StatusSeeOther))

	return app.recoverPanic(app.requestID(app.metrics(app.logRequest(app.rateLimit(app.authenticate(router))))))
}
