package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/staff"
)

const listFallback = "Ma'lumotlarni olishda xatolik"

// staffEndpoints are the paths of one staff kind; an empty path means no endpoint.
type staffEndpoints struct {
	list, create, update, leave, ret, remove string

	// removeByPath deletes at remove+"/"+id instead of sending {_id}
	removeByPath bool

	createFallback, updateFallback, leaveFallback, returnFallback, removeFallback string

	returnRewrite map[string]string
}

var (
	adminEndpoints = staffEndpoints{
		list:           "/api/staff/all-admins",
		create:         "/api/staff/create-admin",
		update:         "/api/staff/edited-admin",
		leave:          "/api/staff/leave-staff",
		ret:            "/api/staff/leave-exit-staff",
		remove:         "/api/staff/deleted-admin",
		createFallback: "Admin qo'shishda xatolik!",
		updateFallback: "Tahrirlash xatosi!",
		leaveFallback:  "Ta'tilga chiqarish xatosi!",
		returnFallback: "Ishga qaytarish xatosi!",
		removeFallback: "O'chirish xatosi!",
	}

	managerEndpoints = staffEndpoints{
		list:           "/api/staff/all-managers",
		update:         "/api/staff/edited-manager",
		leave:          "/api/staff/leave-staff",
		ret:            "/api/staff/leave-exit-staff",
		remove:         "/api/staff",
		removeByPath:   true,
		updateFallback: "Tahrirlash uchun huquqingiz yetarli emas!",
		leaveFallback:  "Ta'tilga chiqarish xatosi!",
		returnFallback: "Ishga qaytarish xatosi!",
		removeFallback: "O'chirish uchun huquqingiz yetarli emas!",
	}

	teacherEndpoints = staffEndpoints{
		list:           "/api/teacher/get-all-teachers",
		create:         "/api/teacher/create-teacher",
		ret:            "/api/teacher/return-teacher",
		remove:         "/api/teacher/fire-teacher",
		createFallback: "Qo'shishda xatolik!",
		returnFallback: "Ishga qaytarish xatosi!",
		returnRewrite:  map[string]string{alreadyWorkingMsg: "Bu ustoz allaqachon faol holatda!"},
	}
)

// alreadyWorkingMsg is what the backend answers when returning someone already active.
const alreadyWorkingMsg = "Xodim allaqachon ishlamoqda"

// Staff is the resource of one staff kind. It implements staff.Repository.
type Staff struct {
	c    *Client
	kind staff.Kind
	ep   staffEndpoints
}

func NewStaff(c *Client, kind staff.Kind) *Staff {
	s := &Staff{c: c, kind: kind}
	switch kind {
	case staff.Admin:
		s.ep = adminEndpoints
	case staff.Manager:
		s.ep = managerEndpoints
	case staff.Teacher:
		s.ep = teacherEndpoints
	}
	return s
}

func (s *Staff) List(ctx context.Context) ([]staff.Member, error) {
	if s.ep.list == "" {
		return nil, core.ErrUnsupported
	}
	body, err := s.c.do(ctx, call{method: http.MethodGet, path: s.ep.list, fallback: listFallback})
	if err != nil {
		return nil, err
	}
	return decodeList[staff.Member](body, s.kind.Key()), nil
}

func (s *Staff) Create(ctx context.Context, nm staff.NewMember) (staff.Member, error) {
	if s.ep.create == "" {
		return staff.Member{}, core.ErrUnsupported
	}
	body, err := s.c.do(ctx, call{method: http.MethodPost, path: s.ep.create, body: nm, fallback: s.ep.createFallback})
	if err != nil {
		return staff.Member{}, err
	}
	return decodeOne[staff.Member](body), nil
}

func (s *Staff) Update(ctx context.Context, um staff.UpdateMember) (staff.Member, error) {
	if s.ep.update == "" {
		return staff.Member{}, core.ErrUnsupported
	}
	body, err := s.c.do(ctx, call{method: http.MethodPost, path: s.ep.update, body: um, fallback: s.ep.updateFallback})
	if err != nil {
		return staff.Member{}, err
	}
	return decodeOne[staff.Member](body), nil
}

func (s *Staff) Leave(ctx context.Context, l core.Leave) error {
	if s.ep.leave == "" {
		return core.ErrUnsupported
	}
	return s.c.exec(ctx, call{method: http.MethodPost, path: s.ep.leave, body: l, fallback: s.ep.leaveFallback})
}

func (s *Staff) Return(ctx context.Context, id string) error {
	if s.ep.ret == "" {
		return core.ErrUnsupported
	}
	return s.c.exec(ctx, call{
		method:   http.MethodPost,
		path:     s.ep.ret,
		body:     idBody{ID: id},
		fallback: s.ep.returnFallback,
		rewrite:  s.ep.returnRewrite,
	})
}

func (s *Staff) Remove(ctx context.Context, id string) error {
	if s.ep.remove == "" {
		return core.ErrUnsupported
	}
	cl := call{method: http.MethodDelete, path: s.ep.remove, fallback: s.ep.removeFallback}
	if s.ep.removeByPath {
		cl.path += "/" + url.PathEscape(id)
	} else {
		cl.body = idBody{ID: id}
	}
	return s.c.exec(ctx, cl)
}
