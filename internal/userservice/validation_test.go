package userservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

func TestValidateUsername(t *testing.T) {
	testCases := []struct {
		username string
		wantErr  string
	}{
		{username: "", wantErr: "must be provided"},
		{username: "ab", wantErr: "must be between 3 and 25 characters long"},
		{username: "abcdefghijklmnopqrstuvwxyz", wantErr: "must be between 3 and 25 characters long"},
		{username: "acme-editor", wantErr: "must only contain letters and numbers"},
		{username: "acme.editor", wantErr: "must only contain letters and numbers"},
		{username: "acme editor", wantErr: "must only contain letters and numbers"},
		{username: "abc"},
		{username: "acmeEditor2"},
	}

	for _, tc := range testCases {
		t.Run(tc.username, func(t *testing.T) {
			v := common.NewValidator()
			validateUsername(v, tc.username)
			assert.Equal(t, tc.wantErr, v.Errors["username"])
		})
	}
}

func TestValidateEmail(t *testing.T) {
	testCases := []struct {
		email string
		valid bool
	}{
		{email: "", valid: false},
		{email: "editor@", valid: false},
		{email: "editor@acme", valid: false},
		{email: "editor@acme.c", valid: false},
		{email: "editor@acme.com", valid: true},
		{email: "first.last+blog@initech.co.uk", valid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.email, func(t *testing.T) {
			v := common.NewValidator()
			validateEmail(v, tc.email)
			assert.Equal(t, tc.valid, v.Valid(), v.Errors)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "empty", password: "", valid: false},
		{name: "too short", password: "Pa!2", valid: false},
		{name: "no symbol", password: "Password123", valid: false},
		{name: "no uppercase", password: "password!23", valid: false},
		{name: "no digit", password: "Password!!", valid: false},
		{name: "longer than bcrypt accepts", password: "Password!23" + string(make([]byte, 62)), valid: false},
		{name: "valid", password: "Password!23", valid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validatePassword(v, tc.password)
			assert.Equal(t, tc.valid, v.Valid(), v.Errors)
		})
	}
}

func TestValidateCompanyID(t *testing.T) {
	testCases := []struct {
		name  string
		id    *int
		valid bool
	}{
		{name: "no company", id: nil, valid: true},
		{name: "zero", id: intptr(0), valid: false},
		{name: "negative", id: intptr(-3), valid: false},
		{name: "company", id: intptr(3), valid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validateCompanyID(v, tc.id)
			assert.Equal(t, tc.valid, v.Valid())
		})
	}
}

func TestAssignedCompany(t *testing.T) {
	admin := &User{ID: 1, Permissions: Permissions{PermissionAdminUser}}
	reader := &User{ID: 2}
	tenantAdmin := &User{ID: 3, Company: &companyservice.Company{ID: 9}, Permissions: Permissions{PermissionAdminUser}}

	testCases := []struct {
		name      string
		requested *int
		creator   *User
		want      *int
		wantErr   string
	}{
		{name: "public registration without company", requested: nil, creator: nil, want: nil},
		{name: "public registration cannot pick a company", requested: intptr(5), creator: nil, wantErr: "can only be set by an administrator"},
		{name: "reader cannot pick a company", requested: intptr(5), creator: reader, wantErr: "can only be set by an administrator"},
		{name: "administrator picks the company", requested: intptr(5), creator: admin, want: intptr(5)},
		{name: "administrator sends an invalid id", requested: intptr(0), creator: admin, wantErr: "must be greater than zero"},
		{name: "company creator pins its company", requested: intptr(5), creator: tenantAdmin, want: intptr(9)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			got := assignedCompany(v, tc.requested, tc.creator)

			assert.Equal(t, tc.wantErr, v.Errors["company_id"])
			if tc.wantErr == "" {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestValidatePermissions(t *testing.T) {
	tenantAdmin := &User{Permissions: Permissions{PermissionWriteBlog, PermissionAdminUser}}

	testCases := []struct {
		name        string
		permissions Permissions
		wantErr     string
	}{
		{name: "none", permissions: nil},
		{name: "held permissions", permissions: Permissions{PermissionWriteBlog, PermissionAdminUser}},
		{name: "unknown", permissions: Permissions{"blog:delete"}, wantErr: "unknown permission blog:delete"},
		{name: "escalation", permissions: Permissions{PermissionWriteCompany}, wantErr: "cannot grant company:write without holding it"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validatePermissions(v, tc.permissions, tenantAdmin)
			assert.Equal(t, tc.wantErr, v.Errors["permissions"])
		})
	}
}
