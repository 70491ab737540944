package echoapi

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/authz"
)

func TestGuard(t *testing.T) {
	f := setup(t)

	tests := []httpTest{
		{
			name:     "anonymous home",
			method:   http.MethodGet,
			path:     "/",
			wantCode: http.StatusFound,
			wantLoc:  authz.LoginPath,
		},
		{
			name:     "anonymous dashboard section",
			method:   http.MethodGet,
			path:     "/dashboard/admin",
			wantCode: http.StatusFound,
			wantLoc:  authz.LoginPath,
		},
		{
			name:     "legacy login",
			method:   http.MethodGet,
			path:     authz.LegacyLoginPath,
			wantCode: http.StatusFound,
			wantLoc:  authz.LoginPath,
		},
		{
			name:     "anonymous login page",
			method:   http.MethodGet,
			path:     authz.LoginPath,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]string{"title": "Kirish", "action": SignInPath}),
		},
		{
			name:     "signed in admin on login",
			method:   http.MethodGet,
			path:     authz.LoginPath,
			token:    f.adminToken,
			role:     authz.RoleAdmin,
			wantCode: http.StatusFound,
			wantLoc:  authz.DashboardPath,
		},
		{
			name:     "signed in teacher on login",
			method:   http.MethodGet,
			path:     authz.LoginPath,
			token:    f.teacherToken,
			role:     authz.RoleTeacher,
			wantCode: http.StatusFound,
			wantLoc:  authz.HomePath,
		},
		{
			name:     "teacher on admins",
			method:   http.MethodGet,
			path:     "/dashboard/admin",
			token:    f.teacherToken,
			role:     authz.RoleTeacher,
			wantCode: http.StatusFound,
			wantLoc:  authz.HomePath,
		},
		{
			name:     "trailing slash",
			method:   http.MethodGet,
			path:     "/dashboard/admin/",
			token:    f.teacherToken,
			role:     authz.RoleTeacher,
			wantCode: http.StatusFound,
			wantLoc:  authz.HomePath,
		},
		{
			name:     "anonymous write",
			method:   http.MethodPost,
			path:     "/dashboard/admin",
			body:     []byte(`{}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: core.ErrUnauthenticated.Error(), Relogin: true}),
		},
		{
			name:     "teacher write on admins",
			method:   http.MethodPost,
			path:     "/dashboard/admin",
			body:     []byte(`{}`),
			token:    f.teacherToken,
			role:     authz.RoleTeacher,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "Bu bo'limga ruxsatingiz yo'q"}),
		},
		{
			name:     "health is public",
			method:   http.MethodGet,
			path:     "/healthz",
			wantCode: http.StatusOK,
			wantData: []byte(`{"status":"ok"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, f.serve(tt))
		})
	}
}

func TestGuard_developer(t *testing.T) {
	f := setup(t)
	token := f.backend.AddAccount("dev@crm.uz", "secret3", authz.RoleDeveloper)

	// developers open every dashboard section, listed for them or not
	req, rec := newAuthRequest(http.MethodGet, "/dashboard/kurslar", token, authz.RoleDeveloper)
	f.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDocs(t *testing.T) {
	f := setup(t)

	req, rec := newRequest(http.MethodGet, openAPIPath)
	f.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "openapi: 3.0.3"))

	req, rec = newRequest(http.MethodGet, docsPath)
	f.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "openapi.yaml")
}

func TestErrorHandler_backendDown(t *testing.T) {
	f := setup(t)
	f.backend.Close()

	rec := f.asAdmin(http.MethodGet, "/dashboard/admin")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	var body httpErr
	unmarshal(t, rec, &body)
	assert.NotEmpty(t, body.Error)
	assert.False(t, body.Relogin)
}
