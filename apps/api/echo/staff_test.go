package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/staff"
	"github.com/trezcool/markaz/services/backend/backendtest"
)

type staffList struct {
	Rows    []staff.Member `json:"rows"`
	Total   int            `json:"total"`
	Search  string         `json:"search"`
	Status  string         `json:"status"`
	Pending []string       `json:"pending"`
	Stale   bool           `json:"stale"`
	Error   string         `json:"error"`
}

const adminsPath = "/api/staff/all-admins"

func seedAdmins(f *fixture) {
	f.backend.Seed("admins",
		backendtest.Record{"first_name": "Ali", "last_name": "Valiyev", "email": "ali@crm.uz", "status": staff.StatusActive},
		backendtest.Record{"first_name": "Zarina", "last_name": "Karimova", "email": "zarina@crm.uz", "status": staff.StatusOnLeave},
	)
}

func TestStaffAPI_query(t *testing.T) {
	f := setup(t)
	seedAdmins(f)

	tests := []struct {
		name       string
		path       string
		wantNames  []string
		wantStatus string
	}{
		{"all", "/dashboard/admin", []string{"Ali", "Zarina"}, staff.AllStatuses},
		{"search", "/dashboard/admin?search=VALI", []string{"Ali"}, staff.AllStatuses},
		{"status", "/dashboard/admin?status=ta%27tilda", []string{"Zarina"}, staff.StatusOnLeave},
		{"none", "/dashboard/admin?search=nobody", nil, staff.AllStatuses},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.asAdmin(http.MethodGet, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)

			var res staffList
			unmarshal(t, rec, &res)
			var names []string
			for _, m := range res.Rows {
				names = append(names, m.FirstName)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, len(tt.wantNames), res.Total)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Empty(t, res.Pending)
			assert.False(t, res.Stale)
		})
	}

	// every filter above was served from one fetch
	assert.Equal(t, 1, f.backend.Hits(adminsPath))
}

func TestStaffAPI_createRefreshesList(t *testing.T) {
	f := setup(t)
	seedAdmins(f)

	rec := f.asAdmin(http.MethodGet, "/dashboard/admin")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.asAdmin(http.MethodPost, "/dashboard/admin", marchallObj(t, map[string]string{
		"first_name": "Olim",
		"last_name":  "Rahimov",
		"email":      "olim@crm.uz",
		"password":   "secret1",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created staff.Member
	unmarshal(t, rec, &created)
	assert.Equal(t, "Olim", created.FirstName)
	assert.NotEmpty(t, created.Key())

	sent := f.backend.Requests("/api/staff/create-admin")
	require.Len(t, sent, 1)
	assert.Equal(t, "admin", sent[0].Body["role"])
	assert.Equal(t, staff.StatusActive, sent[0].Body["status"])

	rec = f.asAdmin(http.MethodGet, "/dashboard/admin")
	var res staffList
	unmarshal(t, rec, &res)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, f.backend.Hits(adminsPath))
}

func TestStaffAPI_validation(t *testing.T) {
	f := setup(t)

	tests := []httpTest{
		{
			name:     "missing names",
			method:   http.MethodPost,
			path:     "/dashboard/admin",
			body:     []byte(`{"email":"olim@crm.uz","password":"secret1"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"first_name":"first_name maydoni majburiy","last_name":"last_name maydoni majburiy"}`),
		},
		{
			name:     "short password",
			method:   http.MethodPost,
			path:     "/dashboard/admin",
			body:     []byte(`{"first_name":"Olim","last_name":"Rahimov","email":"olim@crm.uz","password":"123"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"password":"password kamida 6 ta belgidan iborat bo'lishi kerak"}`),
		},
		{
			name:     "bad json",
			method:   http.MethodPost,
			path:     "/dashboard/admin",
			body:     []byte(`{"first_name":`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.token, tt.role = f.adminToken, "admin"
			checkCodeAndData(t, tt, f.serve(tt))
		})
	}
	assert.Equal(t, 0, f.backend.Hits("/api/staff/create-admin"))
}

func TestStaffAPI_managersCannotBeCreated(t *testing.T) {
	f := setup(t)

	rec := f.asAdmin(http.MethodPost, "/dashboard/manager", []byte(`{}`))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStaffAPI_leaveAndReturn(t *testing.T) {
	f := setup(t)
	seedAdmins(f)
	id := f.backend.Records("admins")[0]["_id"].(string)

	rec := f.asAdmin(http.MethodPost, "/dashboard/admin/"+id+"/leave", marchallObj(t, core.Leave{
		StartDate: "2025-06-01",
		EndDate:   "2025-06-10",
		Reason:    "Oilaviy sabab",
	}))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, staff.StatusOnLeave, f.backend.Records("admins")[0]["status"])

	rec = f.asAdmin(http.MethodPost, "/dashboard/admin/"+id+"/return")
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, staff.StatusActive, f.backend.Records("admins")[0]["status"])
}

func TestStaffAPI_leaveAndReturnAfterListing(t *testing.T) {
	f := setup(t)
	seedAdmins(f)
	id := f.backend.Records("admins")[0]["_id"].(string)

	require.Equal(t, http.StatusOK, f.asAdmin(http.MethodGet, "/dashboard/admin").Code)

	rec := f.asAdmin(http.MethodPost, "/dashboard/admin/"+id+"/leave", marchallObj(t, core.Leave{
		StartDate: "2025-06-01",
		EndDate:   "2025-06-10",
		Reason:    "Oilaviy sabab",
	}))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = f.asAdmin(http.MethodPost, "/dashboard/admin/"+id+"/return")
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, staff.StatusActive, f.backend.Records("admins")[0]["status"])
	assert.Equal(t, 2, f.backend.Hits(adminsPath))
}

func TestStaffAPI_keepsRowsWhenBackendFails(t *testing.T) {
	f := setup(t, func(conf *core.Config) {
		conf.Cache.StaleTime = time.Nanosecond
	})
	seedAdmins(f)

	rec := f.asAdmin(http.MethodGet, "/dashboard/admin")
	require.Equal(t, http.StatusOK, rec.Code)

	f.backend.Fail(adminsPath, http.StatusInternalServerError, "")
	rec = f.asAdmin(http.MethodGet, "/dashboard/admin")
	require.Equal(t, http.StatusOK, rec.Code)

	var res staffList
	unmarshal(t, rec, &res)
	assert.Equal(t, 2, res.Total)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, 2, f.backend.Hits(adminsPath))
}

func TestStaffAPI_relogin(t *testing.T) {
	f := setup(t)
	f.backend.Fail(adminsPath, http.StatusUnauthorized, "")

	tt := httpTest{
		method:   http.MethodGet,
		path:     "/dashboard/admin",
		token:    f.adminToken,
		role:     "admin",
		wantCode: http.StatusUnauthorized,
		wantData: marchallObj(t, httpErr{Error: "Ruxsat berilmadi. Iltimos, qayta login qiling.", Relogin: true}),
	}
	checkCodeAndData(t, tt, f.serve(tt))
}

func TestCourseAPI_badFreezeFilter(t *testing.T) {
	f := setup(t)

	tt := httpTest{
		method:   http.MethodGet,
		path:     "/dashboard/kurslar?is_freeze=maybe",
		token:    f.adminToken,
		role:     "admin",
		wantCode: http.StatusBadRequest,
		wantData: []byte(`{"is_freeze":"true yoki false bo'lishi kerak"}`),
	}
	checkCodeAndData(t, tt, f.serve(tt))
}
