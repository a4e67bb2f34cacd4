package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
	"github.com/sushihentaime/companyblog/internal/userservice"
)

var testTime = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

// testToken has the length of a real access token.
const testToken = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func intptr(i int) *int {
	return &i
}

func testConfig() *Config {
	cfg := &Config{Environment: "development", Version: "test"}
	cfg.RateLimit.RPS = 2
	cfg.RateLimit.Burst = 4
	return cfg
}

// newTestApplication wires the real services to a sqlmock database and a recording producer.
func newTestApplication(t *testing.T) (*application, sqlmock.Sqlmock, *common.MockProducer) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	producer := &common.MockProducer{}

	return newApplication(t, testConfig(), db, producer), mock, producer
}

func newApplication(t *testing.T, cfg *Config, db *sql.DB, producer common.MessageProducer) *application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := common.NewCache(time.Minute, 2*time.Minute)

	app := &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		userService:    userservice.NewUserService(db, producer),
		blogService:    blogservice.NewBlogService(db, cache, producer, logger),
		companyService: companyservice.NewCompanyService(db, cache),
	}

	registry, err := app.entities()
	require.NoError(t, err)
	app.entityRegistry = registry

	return app
}

// expectAuth makes the next token lookup resolve testToken to user.
func expectAuth(mock sqlmock.Sqlmock, user *userservice.User) {
	rows := sqlmock.NewRows([]string{"id", "username", "email", "activated", "version", "company_id", "company_name", "permission"})

	var companyID, companyName any
	if user.Company != nil {
		companyID, companyName = user.Company.ID, user.Company.Name
	}

	if len(user.Permissions) == 0 {
		rows.AddRow(user.ID, user.Username, user.Email, user.Activated, user.Version, companyID, companyName, nil)
	}
	for _, p := range user.Permissions {
		rows.AddRow(user.ID, user.Username, user.Email, user.Activated, user.Version, companyID, companyName, string(p))
	}

	mock.ExpectQuery(regexp.QuoteMeta("INNER JOIN auth_tokens t ON u.id = t.user_id")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)
}

func blogRows(blogs ...blogservice.Blog) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "handle", "created_at", "updated_at", "version", "company_id", "company_name"})
	for _, b := range blogs {
		rows.AddRow(*b.ID, b.Name, b.Handle, testTime, testTime, b.Version, b.Company.ID, b.Company.Name)
	}
	return rows
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var env envelope
	if len(responseBody) > 0 {
		err = json.Unmarshal(responseBody, &env)
		if err != nil {
			t.Fatal(err)
		}
	}

	return res.StatusCode, res.Header, env
}

func (ts *testServer) do(t *testing.T, method, path string, token string, payload any) (int, http.Header, envelope) {
	var body io.Reader
	if payload != nil {
		js, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(js)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, token, nil)
}

func (ts *testServer) post(t *testing.T, path string, token string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, token, payload)
}

func (ts *testServer) put(t *testing.T, path string, token string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPut, path, token, payload)
}

func (ts *testServer) delete(t *testing.T, path string, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, token, nil)
}
