package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/auth"
	"github.com/trezcool/markaz/core/authz"
	"github.com/trezcool/markaz/core/course"
	"github.com/trezcool/markaz/core/group"
	"github.com/trezcool/markaz/core/payment"
	"github.com/trezcool/markaz/core/profile"
	"github.com/trezcool/markaz/core/query"
	"github.com/trezcool/markaz/core/session"
	"github.com/trezcool/markaz/core/staff"
	"github.com/trezcool/markaz/core/student"
	"github.com/trezcool/markaz/services/backend"
	"github.com/trezcool/markaz/services/backend/backendtest"
	logsvc "github.com/trezcool/markaz/services/logger"
)

const (
	adminEmail    = "admin@crm.uz"
	adminPassword = "secret1"
)

type fixture struct {
	srv     Server
	backend *backendtest.Server
	caches  *query.Registry

	adminToken   string
	teacherToken string
}

func newTestConfig(backendURL string) *core.Config {
	return &core.Config{
		AppName:  "Markaz",
		Env:      "TEST",
		TestMode: true,
		Server: core.ServerConfig{
			DisableReqLogs: true,
			SignInRate:     100,
			SignInBurst:    100,
		},
		Backend: core.BackendConfig{BaseURL: backendURL, Timeout: 5 * time.Second},
		Session: core.SessionConfig{
			SecretKey: "0123456789abcdef0123456789abcdef",
			StoreName: "markaz_test",
			MaxAge:    time.Hour,
		},
		Cache: core.CacheConfig{StaleTime: query.DefaultStaleTime, GCTime: 10 * time.Minute},
	}
}

func setup(t *testing.T, configure ...func(conf *core.Config)) *fixture {
	t.Helper()

	bk := backendtest.NewServer()
	t.Cleanup(bk.Close)

	conf := newTestConfig(bk.URL())
	for _, fn := range configure {
		fn(conf)
	}

	lgr := logsvc.NewConsoleLoggerMock()
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	staff.InitValidators(validate, translator)

	client := backend.NewClient(conf.Backend.BaseURL, conf.Backend.Timeout)
	authRepo := backend.NewAuth(client)
	caches := query.NewRegistry(query.WithStaleTime(conf.Cache.StaleTime))

	srv := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     lgr,
		Translator: translator,
		Sessions:   session.NewCookieStore(conf, lgr),
		Caches:     caches,
		Guard:      authz.NewGuard(authz.Sections),
		AuthSvc:    auth.NewService(authRepo, validate),
		ProfileSvc: profile.NewService(authRepo, validate),
		AdminSvc:   staff.NewService(staff.Admin, backend.NewStaff(client, staff.Admin), validate),
		ManagerSvc: staff.NewService(staff.Manager, backend.NewStaff(client, staff.Manager), validate),
		TeacherSvc: staff.NewService(staff.Teacher, backend.NewStaff(client, staff.Teacher), validate),
		StudentSvc: student.NewService(backend.NewStudents(client), validate),
		GroupSvc:   group.NewService(backend.NewGroups(client), validate),
		CourseSvc:  course.NewService(backend.NewCourses(client), validate),
		PaymentSvc: payment.NewService(backend.NewPayments(client), validate),
	})

	return &fixture{
		srv:          srv,
		backend:      bk,
		caches:       caches,
		adminToken:   bk.AddAccount(adminEmail, adminPassword, authz.RoleAdmin),
		teacherToken: bk.AddAccount("ustoz@crm.uz", "secret2", authz.RoleTeacher),
	}
}

type httpErr struct {
	Error   string `json:"error"`
	Relogin bool   `json:"relogin,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	role     string
	wantCode int
	wantData []byte
	wantLoc  string
}

// newAuthRequest signs the request in with the session cookies when token is set.
func newAuthRequest(method, path, token, role string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.TokenCookie, Value: token})
		req.AddCookie(&http.Cookie{Name: session.RoleCookie, Value: role})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", "", data...)
}

func (f *fixture) serve(tt httpTest) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.role, tt.body)
	f.srv.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) asAdmin(method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, f.adminToken, authz.RoleAdmin, data...)
	f.srv.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantLoc != "" {
		assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
