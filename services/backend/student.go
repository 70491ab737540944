package backend

import (
	"context"
	"net/http"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/student"
)

// Students implements student.Repository.
type Students struct {
	c *Client
}

func NewStudents(c *Client) *Students {
	return &Students{c: c}
}

func (s *Students) List(ctx context.Context) ([]student.Student, error) {
	body, err := s.c.do(ctx, call{method: http.MethodGet, path: "/api/student/get-all-students", fallback: listFallback})
	if err != nil {
		return nil, err
	}
	return decodeList[student.Student](body, "students"), nil
}

func (s *Students) Create(ctx context.Context, ns student.NewStudent) (student.Student, error) {
	body, err := s.c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/student/create-student",
		body:     ns,
		fallback: "Qo'shishda xatolik!",
	})
	if err != nil {
		return student.Student{}, err
	}
	return decodeOne[student.Student](body), nil
}

func (s *Students) Leave(ctx context.Context, l core.Leave) error {
	return s.c.exec(ctx, call{
		method:   http.MethodPost,
		path:     "/api/student/leave-student",
		body:     l,
		fallback: "Ta'tilga chiqarish xatosi!",
	})
}

func (s *Students) Return(ctx context.Context, id string) error {
	return s.c.exec(ctx, call{
		method:   http.MethodPost,
		path:     "/api/student/return-student",
		body:     idBody{ID: id},
		fallback: "Qaytarish xatosi!",
		rewrite:  map[string]string{alreadyWorkingMsg: "Bu student allaqachon faol holatda!"},
	})
}

func (s *Students) Remove(ctx context.Context, id string) error {
	return s.c.exec(ctx, call{method: http.MethodDelete, path: "/api/student/delete-student", body: idBody{ID: id}})
}
