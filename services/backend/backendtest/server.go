// Package backendtest runs an in-memory stand-in for the CRM backend.
package backendtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type (
	// Record is one stored entity, as JSON fields.
	Record = map[string]interface{}

	// Request is a call the server received.
	Request struct {
		Method string
		Path   string
		Query  string
		Auth   string
		Body   Record
		Files  map[string]int // multipart field → size
	}

	account struct {
		email    string
		password string
		role     string
		token    string
	}

	failure struct {
		status  int
		message string
	}

	Server struct {
		srv *httptest.Server

		mu       sync.Mutex
		accounts map[string]*account // by email
		tokens   map[string]*account
		data     map[string][]Record // by resource: admins, managers, teachers, students, groups, courses, payments, categories
		requests []Request
		failures map[string]failure
	}
)

// AlreadyWorking is what the backend says when returning someone who is active.
const AlreadyWorking = "Xodim allaqachon ishlamoqda"

func NewServer() *Server {
	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]*account),
		data:     make(map[string][]Record),
		failures: make(map[string]failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/sign-in", s.signIn)
	mux.HandleFunc("POST /api/auth/edit-profile", s.authed(s.editProfile))
	mux.HandleFunc("POST /api/auth/edit-password", s.authed(s.editPassword))
	mux.HandleFunc("POST /api/auth/edit-profile-img", s.authed(s.editImage))

	mux.HandleFunc("GET /api/staff/all-admins", s.authed(s.list("admins", wrapData)))
	mux.HandleFunc("POST /api/staff/create-admin", s.authed(s.create("admins")))
	mux.HandleFunc("POST /api/staff/edited-admin", s.authed(s.update("admins")))
	mux.HandleFunc("DELETE /api/staff/deleted-admin", s.authed(s.remove("admins")))
	mux.HandleFunc("GET /api/staff/all-managers", s.authed(s.list("managers", bare)))
	mux.HandleFunc("POST /api/staff/edited-manager", s.authed(s.update("managers")))
	mux.HandleFunc("DELETE /api/staff/{id}", s.authed(s.removeByPath("managers")))
	mux.HandleFunc("POST /api/staff/leave-staff", s.authed(s.setStatus("ta'tilda", false, "admins", "managers")))
	mux.HandleFunc("POST /api/staff/leave-exit-staff", s.authed(s.setStatus("faol", true, "admins", "managers")))

	mux.HandleFunc("GET /api/teacher/get-all-teachers", s.authed(s.list("teachers", wrapData)))
	mux.HandleFunc("POST /api/teacher/create-teacher", s.authed(s.create("teachers")))
	mux.HandleFunc("DELETE /api/teacher/fire-teacher", s.authed(s.setStatus("ishdan bo'shatilgan", false, "teachers")))
	mux.HandleFunc("POST /api/teacher/return-teacher", s.authed(s.setStatus("faol", true, "teachers")))

	mux.HandleFunc("GET /api/student/get-all-students", s.authed(s.list("students", wrapKey("students"))))
	mux.HandleFunc("POST /api/student/create-student", s.authed(s.create("students")))
	mux.HandleFunc("POST /api/student/leave-student", s.authed(s.setStatus("ta'tilda", false, "students")))
	mux.HandleFunc("POST /api/student/return-student", s.authed(s.setStatus("faol", true, "students")))
	mux.HandleFunc("DELETE /api/student/delete-student", s.authed(s.remove("students")))

	mux.HandleFunc("GET /api/group/get-all-group", s.authed(s.list("groups", bare)))
	mux.HandleFunc("POST /api/group/create-group", s.authed(s.create("groups")))
	mux.HandleFunc("PUT /api/group/edit-end-group", s.authed(s.endGroup))
	mux.HandleFunc("GET /api/group/search-course", s.authed(s.list("courses", wrapData)))

	mux.HandleFunc("GET /api/course/get-courses", s.authed(s.listCourses))
	mux.HandleFunc("POST /api/course/create-course", s.authed(s.create("courses")))
	mux.HandleFunc("POST /api/course/create-category", s.authed(s.create("categories")))
	mux.HandleFunc("POST /api/course/edit-course", s.authed(s.editCourse))
	mux.HandleFunc("PUT /api/course/freeze-course", s.authed(s.freezeCourse(true)))
	mux.HandleFunc("PUT /api/course/unfreeze-course", s.authed(s.freezeCourse(false)))
	mux.HandleFunc("DELETE /api/course/delete-course", s.authed(s.removeCourse))

	mux.HandleFunc("POST /api/payment/payment-student", s.authed(s.create("payments")))

	s.srv = httptest.NewServer(s.record(mux))
	return s
}

func (s *Server) URL() string {
	return s.srv.URL
}

func (s *Server) Close() {
	s.srv.Close()
}

// AddAccount registers a staff login and returns its token.
func (s *Server) AddAccount(email, password, role string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := &account{email: email, password: password, role: role, token: "tok-" + primitive.NewObjectID().Hex()}
	s.accounts[email] = acc
	s.tokens[acc.token] = acc
	return acc.token
}

// Seed appends records to resource, giving each an _id when it has none.
func (s *Server) Seed(resource string, records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		if _, ok := rec["_id"]; !ok {
			rec["_id"] = primitive.NewObjectID().Hex()
		}
		s.data[resource] = append(s.data[resource], rec)
	}
}

// Records returns a copy of resource.
func (s *Server) Records(resource string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, rec := range s.data[resource] {
		cp := make(Record, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out
}

// Requests returns the calls received on path (all calls when path is empty).
func (s *Server) Requests(path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, req := range s.requests {
		if path == "" || req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

// Hits counts the calls received on path.
func (s *Server) Hits(path string) int {
	return len(s.Requests(path))
}

// Fail makes every call on path answer status with message (no message when empty).
func (s *Server) Fail(path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{status: status, message: message}
}

// Recover undoes Fail.
func (s *Server) Recover(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, path)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func message(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Record{"message": msg})
}

// record logs the request and applies configured failures.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Auth: r.Header.Get("Authorization")}

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			if err := r.ParseMultipartForm(8 << 20); err == nil {
				req.Files = make(map[string]int)
				for field, fhs := range r.MultipartForm.File {
					for _, fh := range fhs {
						req.Files[field] += int(fh.Size)
					}
				}
			}
		} else if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &req.Body)
			r.Body = io.NopCloser(strings.NewReader(string(raw)))
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		f, failing := s.failures[r.URL.Path]
		s.mu.Unlock()

		if failing {
			if f.message == "" {
				writeJSON(w, f.status, Record{})
				return
			}
			message(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authed rejects calls without a known bearer token.
func (s *Server) authed(h func(w http.ResponseWriter, r *http.Request, acc *account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		acc, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			message(w, http.StatusUnauthorized, "Token yaroqsiz")
			return
		}
		h(w, r, acc)
	}
}

func body(r *http.Request) Record {
	var rec Record
	_ = json.NewDecoder(r.Body).Decode(&rec)
	if rec == nil {
		rec = Record{}
	}
	return rec
}

// envelopes the list endpoints answer with
type envelope func(records []Record) interface{}

func wrapData(records []Record) interface{} { return Record{"data": records} }

func bare(records []Record) interface{} { return records }

func wrapKey(key string) envelope {
	return func(records []Record) interface{} { return Record{key: records} }
}

func (s *Server) list(resource string, env envelope) func(http.ResponseWriter, *http.Request, *account) {
	return func(w http.ResponseWriter, r *http.Request, _ *account) {
		records := s.Records(resource)
		if records == nil {
			records = []Record{}
		}
		writeJSON(w, http.StatusOK, env(records))
	}
}

func (s *Server) create(resource string) func(http.ResponseWriter, *http.Request, *account) {
	return func(w http.ResponseWriter, r *http.Request, _ *account) {
		rec := body(r)
		delete(rec, "password")
		if _, ok := rec["status"]; !ok && resource != "payments" && resource != "categories" {
			rec["status"] = "faol"
		}
		rec["_id"] = primitive.NewObjectID().Hex()
		out := make(Record, len(rec))
		for k, v := range rec {
			out[k] = v
		}
		s.Seed(resource, rec)
		writeJSON(w, http.StatusCreated, Record{"data": out})
	}
}

// find returns the index of the record with id in resource. s.mu must be held.
func (s *Server) find(resource, id string) int {
	for i, rec := range s.data[resource] {
		if rec["_id"] == id {
			return i
		}
	}
	return -1
}

func (s *Server) update(resource string) func(http.ResponseWriter, *http.Request, *account) {
	return func(w http.ResponseWriter, r *http.Request, _ *account) {
		in := body(r)
		id, _ := in["_id"].(string)

		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.find(resource, id)
		if i < 0 {
			message(w, http.StatusNotFound, "Xodim topilmadi")
			return
		}
		for k, v := range in {
			s.data[resource][i][k] = v
		}
		writeJSON(w, http.StatusOK, Record{"data": s.data[resource][i]})
	}
}

func (s *Server) removeID(w http.ResponseWriter, resource, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(resource, id)
	if i < 0 {
		message(w, http.StatusNotFound, "Topilmadi")
		return
	}
	s.data[resource] = append(s.data[resource][:i], s.data[resource][i+1:]...)
	message(w, http.StatusOK, "O'chirildi")
}

func (s *Server) remove(resource string) func(http.ResponseWriter, *http.Request, *account) {
	return func(w http.ResponseWriter, r *http.Request, _ *account) {
		id, _ := body(r)["_id"].(string)
		s.removeID(w, resource, id)
	}
}

func (s *Server) removeByPath(resource string) func(http.ResponseWriter, *http.Request, *account) {
	return func(w http.ResponseWriter, r *http.Request, _ *account) {
		s.removeID(w, resource, r.PathValue("id"))
	}
}

// setStatus moves the record named by `_id` to status, looking in each of resources.
// Returning someone already active fails the way the real backend does.
func (s *Server) setStatus(status string, isReturn bool, resources ...string) func(http.ResponseWriter, *http.Request, *account) {
	return func(w http.ResponseWriter, r *http.Request, _ *account) {
		in := body(r)
		id, _ := in["_id"].(string)

		s.mu.Lock()
		defer s.mu.Unlock()
		for _, resource := range resources {
			i := s.find(resource, id)
			if i < 0 {
				continue
			}
			rec := s.data[resource][i]
			if isReturn && rec["status"] == "faol" {
				message(w, http.StatusBadRequest, AlreadyWorking)
				return
			}
			rec["status"] = status
			if reason, ok := in["reason"]; ok {
				rec["leave_reason"] = reason
			}
			message(w, http.StatusOK, "Saqlandi")
			return
		}
		message(w, http.StatusNotFound, "Topilmadi")
	}
}

func (s *Server) endGroup(w http.ResponseWriter, r *http.Request, _ *account) {
	in := body(r)
	id, _ := in["_id"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find("groups", id)
	if i < 0 {
		message(w, http.StatusNotFound, "Guruh topilmadi")
		return
	}
	s.data["groups"][i]["end_group"] = in["date"]
	message(w, http.StatusOK, "Saqlandi")
}

func (s *Server) listCourses(w http.ResponseWriter, r *http.Request, _ *account) {
	records := []Record{}
	want := r.URL.Query().Get("is_freeze")
	for _, rec := range s.Records("courses") {
		frozen, _ := rec["is_freeze"].(bool)
		if want != "" && (want == "true") != frozen {
			continue
		}
		records = append(records, rec)
	}
	writeJSON(w, http.StatusOK, Record{"courses": records})
}

func (s *Server) courseIndex(w http.ResponseWriter, in Record) int {
	id, _ := in["course_id"].(string)
	i := s.find("courses", id)
	if i < 0 {
		message(w, http.StatusNotFound, "Kurs topilmadi")
	}
	return i
}

func (s *Server) editCourse(w http.ResponseWriter, r *http.Request, _ *account) {
	in := body(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.courseIndex(w, in); i >= 0 {
		s.data["courses"][i]["duration"] = in["duration"]
		s.data["courses"][i]["price"] = in["price"]
		message(w, http.StatusOK, "Saqlandi")
	}
}

func (s *Server) freezeCourse(frozen bool) func(http.ResponseWriter, *http.Request, *account) {
	return func(w http.ResponseWriter, r *http.Request, _ *account) {
		in := body(r)
		s.mu.Lock()
		defer s.mu.Unlock()
		if i := s.courseIndex(w, in); i >= 0 {
			s.data["courses"][i]["is_freeze"] = frozen
			message(w, http.StatusOK, "Saqlandi")
		}
	}
}

func (s *Server) removeCourse(w http.ResponseWriter, r *http.Request, _ *account) {
	id, _ := body(r)["course_id"].(string)
	s.removeID(w, "courses", id)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	in := body(r)
	email, _ := in["email"].(string)
	password, _ := in["password"].(string)

	s.mu.Lock()
	acc, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok || acc.password != password {
		message(w, http.StatusBadRequest, "Email yoki parol xato")
		return
	}
	writeJSON(w, http.StatusOK, Record{"message": "Xush kelibsiz", "data": Record{"token": acc.token, "role": acc.role}})
}

func (s *Server) editProfile(w http.ResponseWriter, r *http.Request, _ *account) {
	message(w, http.StatusOK, "Profil yangilandi")
}

func (s *Server) editPassword(w http.ResponseWriter, r *http.Request, acc *account) {
	in := body(r)
	current, _ := in["current_password"].(string)
	next, _ := in["new_password"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	if current != acc.password {
		message(w, http.StatusBadRequest, "Joriy parol noto'g'ri")
		return
	}
	acc.password = next
	message(w, http.StatusOK, "Parol yangilandi")
}

func (s *Server) editImage(w http.ResponseWriter, r *http.Request, _ *account) {
	if r.MultipartForm == nil || len(r.MultipartForm.File["image"]) == 0 {
		message(w, http.StatusBadRequest, "Rasm topilmadi")
		return
	}
	name := r.MultipartForm.File["image"][0].Filename
	writeJSON(w, http.StatusOK, Record{"data": Record{"image": "https://cdn.test/" + name}})
}
