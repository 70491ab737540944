package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/trezcool/markaz/core/course"
)

// Courses implements course.Repository.
type Courses struct {
	c *Client
}

func NewCourses(c *Client) *Courses {
	return &Courses{c: c}
}

func (cs *Courses) List(ctx context.Context, frozen *bool) ([]course.Course, error) {
	cl := call{method: http.MethodGet, path: "/api/course/get-courses", fallback: "Xatolik yuz berdi"}
	if frozen != nil {
		cl.query = map[string]string{"is_freeze": strconv.FormatBool(*frozen)}
	}
	body, err := cs.c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	return decodeList[course.Course](body, "courses", "results"), nil
}

func (cs *Courses) Options(ctx context.Context) ([]course.Course, error) {
	body, err := cs.c.do(ctx, call{method: http.MethodGet, path: "/api/group/search-course", fallback: listFallback})
	if err != nil {
		return nil, err
	}
	return decodeList[course.Course](body, "courses"), nil
}

func (cs *Courses) Create(ctx context.Context, nc course.NewCourse) error {
	return cs.c.exec(ctx, call{method: http.MethodPost, path: "/api/course/create-course", body: nc, fallback: "Kurs yaratishda xatolik"})
}

func (cs *Courses) CreateCategory(ctx context.Context, nc course.NewCategory) error {
	return cs.c.exec(ctx, call{method: http.MethodPost, path: "/api/course/create-category", body: nc, fallback: "Kategoriya yaratishda xatolik"})
}

func (cs *Courses) Edit(ctx context.Context, ec course.EditCourse) error {
	return cs.c.exec(ctx, call{method: http.MethodPost, path: "/api/course/edit-course", body: ec, fallback: "Kursni tahrirlashda xatolik"})
}

func (cs *Courses) Freeze(ctx context.Context, ref course.Ref) error {
	return cs.c.exec(ctx, call{method: http.MethodPut, path: "/api/course/freeze-course", body: ref, fallback: "Kursni muzlatishda xatolik"})
}

func (cs *Courses) Unfreeze(ctx context.Context, ref course.Ref) error {
	return cs.c.exec(ctx, call{method: http.MethodPut, path: "/api/course/unfreeze-course", body: ref, fallback: "Kursni eritishda xatolik"})
}

func (cs *Courses) Remove(ctx context.Context, ref course.Ref) error {
	return cs.c.exec(ctx, call{method: http.MethodDelete, path: "/api/course/delete-course", body: ref, fallback: "Kursni o'chirishda xatolik"})
}
