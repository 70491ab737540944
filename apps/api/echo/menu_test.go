package echoapi

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markaz/core/authz"
	"github.com/trezcool/markaz/core/profile"
	"github.com/trezcool/markaz/core/query"
)

func sectionKeys(sections []authz.Section) []string {
	keys := make([]string, 0, len(sections))
	for _, s := range sections {
		keys = append(keys, s.Key)
	}
	return keys
}

func TestMenu_home(t *testing.T) {
	f := setup(t)
	devToken := f.backend.AddAccount("dev@crm.uz", "secret3", authz.RoleDeveloper)

	tests := []struct {
		name  string
		token string
		role  string
		want  []string
	}{
		{"admin", f.adminToken, authz.RoleAdmin, []string{"managers", "admins", "teachers", "students", "groups", "courses", "payments", "settings", "profile"}},
		{"teacher", f.teacherToken, authz.RoleTeacher, []string{"students", "groups", "profile"}},
		{"developer", devToken, authz.RoleDeveloper, []string{"managers", "admins", "settings", "profile"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, authz.HomePath, tt.token, tt.role)
			f.srv.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)

			var res struct {
				Shortcuts []authz.Section `json:"shortcuts"`
			}
			unmarshal(t, rec, &res)
			assert.Equal(t, tt.want, sectionKeys(res.Shortcuts))
		})
	}
}

func TestMenu_dashboard(t *testing.T) {
	f := setup(t)

	rec := f.asAdmin(http.MethodGet, authz.DashboardPath)
	require.Equal(t, http.StatusOK, rec.Code)

	var res dashboardResponse
	unmarshal(t, rec, &res)
	assert.Equal(t,
		[]string{"dashboard", "managers", "admins", "teachers", "students", "groups", "courses", "payments"},
		sectionKeys(res.Sidebar.Main),
	)
	assert.Equal(t, []string{"settings", "profile", "logout"}, sectionKeys(res.Sidebar.Other))
	assert.Len(t, res.Shortcuts, 9)
	assert.Equal(t, authz.RoleAdmin, res.Profile.Role)
}

func TestSettings(t *testing.T) {
	f := setup(t)
	seedAdmins(f)

	require.Equal(t, http.StatusOK, f.asAdmin(http.MethodGet, "/dashboard/admin").Code)

	rec := f.asAdmin(http.MethodGet, "/dashboard/sozlamalar")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Role   string `json:"role"`
		Caches []struct {
			Key    string `json:"key"`
			Status string `json:"status"`
		} `json:"caches"`
	}
	unmarshal(t, rec, &res)
	assert.Equal(t, authz.RoleAdmin, res.Role)
	require.Len(t, res.Caches, 1)
	assert.Equal(t, "admins", res.Caches[0].Key)
	assert.Equal(t, query.Fresh.String(), res.Caches[0].Status)
}

func TestProfileAPI_edit(t *testing.T) {
	f := setup(t)

	tests := []httpTest{
		{
			name:     "ok",
			method:   http.MethodPut,
			path:     "/dashboard/profile",
			body:     []byte(`{"first_name":" Aziz ","last_name":"Karimov","email":"AZIZ@crm.uz"}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"first_name":"Aziz","last_name":"Karimov","email":"aziz@crm.uz","role":"admin","image":""}`),
		},
		{
			name:     "missing names",
			method:   http.MethodPut,
			path:     "/dashboard/profile",
			body:     []byte(`{"email":"aziz@crm.uz"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"first_name":"first_name maydoni majburiy","last_name":"last_name maydoni majburiy"}`),
		},
		{
			name:     "password",
			method:   http.MethodPost,
			path:     "/dashboard/profile/password",
			body:     []byte(`{"current_password":"secret1","new_password":"secret22"}`),
			wantCode: http.StatusNoContent,
		},
		{
			name:     "wrong current password",
			method:   http.MethodPost,
			path:     "/dashboard/profile/password",
			body:     []byte(`{"current_password":"nope","new_password":"secret33"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Joriy parol noto'g'ri"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.token, tt.role = f.adminToken, authz.RoleAdmin
			checkCodeAndData(t, tt, f.serve(tt))
		})
	}
	assert.Equal(t, 1, f.backend.Hits("/api/auth/edit-profile"))
}

func newImageRequest(t *testing.T, f *fixture, filename string, withFile bool) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if withFile {
		img := image.NewRGBA(image.Rect(0, 0, 800, 600))
		img.Set(1, 1, color.RGBA{R: 255, A: 255})
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		require.NoError(t, png.Encode(fw, img))
	}
	require.NoError(t, mw.Close())

	req, rec := newAuthRequest(http.MethodPost, "/dashboard/profile/image", f.adminToken, authz.RoleAdmin, body.Bytes())
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, rec
}

func TestProfileAPI_image(t *testing.T) {
	f := setup(t)

	req, rec := newImageRequest(t, f, "me.png", true)
	f.srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var p profile.Profile
	unmarshal(t, rec, &p)
	assert.Equal(t, "https://cdn.test/me.jpg", p.Image)

	sent := f.backend.Requests("/api/auth/edit-profile-img")
	require.Len(t, sent, 1)
	assert.Greater(t, sent[0].Files["image"], 0)
}

func TestProfileAPI_imageMissing(t *testing.T) {
	f := setup(t)

	req, rec := newImageRequest(t, f, "", false)
	f.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ok, err := jsonBytesEqual(rec.Body.Bytes(), []byte(`{"image":"Rasm tanlanmagan"}`))
	require.NoError(t, err)
	assert.True(t, ok, rec.Body.String())
	assert.Equal(t, 0, f.backend.Hits("/api/auth/edit-profile-img"))
}
