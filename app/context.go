package main

import (
	"context"
	"net/http"

	"github.com/sushihentaime/companyblog/internal/companyservice"
	"github.com/sushihentaime/companyblog/internal/userservice"
)

type contextKey string

const (
	userContextKey      = contextKey("user")
	tokenContextKey     = contextKey("token")
	requestIDContextKey = contextKey("request_id")
)

func (app *application) createUserContext(r *http.Request, user *userservice.User, token string) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	if token != "" {
		ctx = context.WithValue(ctx, tokenContextKey, token)
	}
	return r.WithContext(ctx)
}

func (app *application) getUserContext(r *http.Request) *userservice.User {
	return contextUser(r.Context())
}

// contextUser returns the authenticated user, or the anonymous user when none was set.
func contextUser(ctx context.Context) *userservice.User {
	user, ok := ctx.Value(userContextKey).(*userservice.User)
	if !ok || user == nil {
		return &userservice.AnonymousUser
	}
	return user
}

func contextToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// tenantOf is the company a user is restricted to, nil for unrestricted accounts.
func tenantOf(user *userservice.User) *companyservice.Company {
	if user == nil || user.IsAnonymous() {
		return nil
	}
	return user.Company
}

// accountService exposes the authenticated user of a request to the entity views.
type accountService struct{}

func (accountService) Identity(ctx context.Context) (*userservice.User, error) {
	user := contextUser(ctx)
	if user.IsAnonymous() {
		return nil, nil
	}
	return user, nil
}
