package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/companyblog/internal/companyservice"
	"github.com/sushihentaime/companyblog/internal/userservice"
)

func TestRecoverPanic(t *testing.T) {
	app, _, _ := newTestApplication(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	app.recoverPanic(handler).ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "close", res.Header().Get("Connection"))
}

func TestRequestID(t *testing.T) {
	app, _, _ := newTestApplication(t)

	var seen string
	handler := app.requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFrom(r.Context())
	}))

	t.Run("Generated", func(t *testing.T) {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, seen, 36)
		assert.Equal(t, seen, res.Header().Get(requestIDHeader))
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", res.Header().Get(requestIDHeader))
	})
}

func TestLogRequestRecordsStatus(t *testing.T) {
	app, _, _ := newTestApplication(t)

	var buf bytes.Buffer
	app.logger = slog.New(slog.NewTextHandler(&buf, nil))

	handler := app.logRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/blogs?q=x", nil))

	assert.Contains(t, buf.String(), "status=418")
	assert.Contains(t, buf.String(), "uri=\"/v1/blogs?q=x\"")
}

func TestRateLimit(t *testing.T) {
	app, _, _ := newTestApplication(t)
	app.config.RateLimit.Enabled = true
	app.config.RateLimit.RPS = 1
	app.config.RateLimit.Burst = 2

	handler := app.rateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	request := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		return res.Code
	}

	assert.Equal(t, http.StatusNoContent, request("10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, request("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:1002"))

	// buckets are per IP
	assert.Equal(t, http.StatusNoContent, request("10.0.0.2:1000"))
}

func TestRateLimitDisabled(t *testing.T) {
	app, _, _ := newTestApplication(t)
	app.config.RateLimit.Enabled = false

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	for i := 0; i < 10; i++ {
		res := httptest.NewRecorder()
		app.rateLimit(next).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, res.Code)
	}
}

func TestAuthenticate(t *testing.T) {
	testCases := []struct {
		name          string
		header        string
		cookie        string
		wantStatus    int
		wantAnonymous bool
	}{
		{
			name:          "No Credentials",
			wantStatus:    http.StatusOK,
			wantAnonymous: true,
		},
		{
			name:       "Wrong Scheme",
			header:     "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Malformed Token",
			header:     "Bearer short",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:          "Stale Cookie",
			cookie:        "short",
			wantStatus:    http.StatusOK,
			wantAnonymous: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app, mock, _ := newTestApplication(t)

			var anonymous bool
			handler := app.authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				anonymous = app.getUserContext(r).IsAnonymous()
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: tc.cookie})
			}
			res := httptest.NewRecorder()

			handler.ServeHTTP(res, req)

			assert.Equal(t, tc.wantStatus, res.Code)
			assert.Equal(t, tc.wantAnonymous, anonymous)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAuthenticateCookie(t *testing.T) {
	app, mock, _ := newTestApplication(t)
	expectAuth(mock, writer(&companyservice.Company{ID: 3, Name: "Initech"}))

	var user *userservice.User
	var token string
	handler := app.authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = app.getUserContext(r)
		token = contextToken(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/entities/blog", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: testToken})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, user)
	assert.Equal(t, "writer", user.Username)
	assert.Equal(t, testToken, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequirePermission(t *testing.T) {
	testCases := []struct {
		name       string
		user       *userservice.User
		wantStatus int
	}{
		{name: "Anonymous", user: &userservice.AnonymousUser, wantStatus: http.StatusUnauthorized},
		{name: "Not Activated", user: &userservice.User{ID: 1, Permissions: userservice.Permissions{userservice.PermissionWriteBlog}}, wantStatus: http.StatusForbidden},
		{name: "Missing Permission", user: &userservice.User{ID: 1, Activated: true}, wantStatus: http.StatusForbidden},
		{name: "Permitted", user: writer(nil), wantStatus: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app, _, _ := newTestApplication(t)

			handler := app.requirePermission(func(w http.ResponseWriter, r *http.Request) {}, userservice.PermissionWriteBlog)

			req := httptest.NewRequest(http.MethodPost, "/v1/blogs", nil)
			req = app.createUserContext(req, tc.user, "")
			res := httptest.NewRecorder()

			handler.ServeHTTP(res, req)

			assert.Equal(t, tc.wantStatus, res.Code)
		})
	}
}

func TestContextHelpers(t *testing.T) {
	assert.True(t, contextUser(context.Background()).IsAnonymous())
	assert.Nil(t, tenantOf(&userservice.AnonymousUser))
	assert.Nil(t, tenantOf(writer(nil)))

	acme := &companyservice.Company{ID: 1, Name: "Acme"}
	assert.Equal(t, acme, tenantOf(writer(acme)))

	user, err := accountService{}.Identity(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, user)

	ctx := context.WithValue(context.Background(), userContextKey, writer(acme))
	user, err = accountService{}.Identity(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "writer", user.Username)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken("Token abc"))
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/v1/blogs/:id", normalizePath("/v1/blogs/42"))
	assert.Equal(t, "/v1/companies/:id/blogs", normalizePath("/v1/companies/3/blogs"))
	assert.Equal(t, "/entities/blog/edit/:id", normalizePath("/entities/blog/edit/9"))
	assert.Equal(t, "/v1/healthcheck", normalizePath("/v1/healthcheck"))
}

func TestRouteLabel(t *testing.T) {
	testCases := []struct {
		path string
		want string
	}{
		{path: "/v1/blogs/42", want: "/v1/blogs/:id"},
		{path: "/v1/companies/3/blogs", want: "/v1/companies/:id/blogs"},
		{path: "/v1/admin/users/5", want: "/v1/admin/users/:id"},
		{path: "/entities/blog/edit/9", want: "/entities/blog/edit/:id"},
		{path: "/wp-login.php", want: otherLabel},
		{path: "/v1/blogs/abc", want: otherLabel},
		{path: "/entities/post/view/1", want: otherLabel},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, routeLabel(tc.path))
		})
	}

	assert.Equal(t, http.MethodDelete, methodLabel(http.MethodDelete))
	assert.Equal(t, otherLabel, methodLabel("PROPFIND"))
}

func TestObserveRequestBoundsSeries(t *testing.T) {
	// one series for the scanner paths plus one for the odd verb
	observeRequest(http.MethodGet, "/scan/warmup", http.StatusNotFound, time.Millisecond)
	observeRequest("BREW", "/scan/warmup", http.StatusNotFound, time.Millisecond)
	before := testutil.CollectAndCount(httpRequestsTotal)
	otherBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(otherLabel, otherLabel, "404"))

	for i := 0; i < 500; i++ {
		observeRequest(http.MethodGet, fmt.Sprintf("/scan/x%dabc", i), http.StatusNotFound, time.Millisecond)
		observeRequest(fmt.Sprintf("VERB%d", i), "/scan/y", http.StatusNotFound, time.Millisecond)
	}

	assert.Equal(t, before, testutil.CollectAndCount(httpRequestsTotal))
	assert.Equal(t, otherBefore+500, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(otherLabel, otherLabel, "404")))
}

func TestMetricsEndpoint(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, _, _ = ts.get(t, "/v1/healthcheck", "")

	res, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `companyblog_http_requests_total{method="GET",path="/v1/healthcheck",status="200"}`)
}
