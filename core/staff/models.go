package staff

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core"
)

// Kind tells admins, managers and teachers apart.
type Kind string

const (
	Admin   Kind = "admin"
	Manager Kind = "manager"
	Teacher Kind = "teacher"
)

// Key is the cache key of the kind's list.
func (k Kind) Key() string {
	return string(k) + "s"
}

// Affects lists the cache keys a write to this kind leaves stale.
// Teachers show up inside groups, so their writes reach groups too.
func (k Kind) Affects() []string {
	if k == Teacher {
		return []string{k.Key(), "groups"}
	}
	return []string{k.Key()}
}

const (
	StatusActive  = "faol"
	StatusOnLeave = "ta'tilda"
	StatusFired   = "ishdan bo'shatilgan"
)

// Statuses lists every staff status, in display order.
var Statuses = []string{StatusActive, StatusOnLeave, StatusFired}

// transitions maps a status to the statuses it may move to.
var transitions = map[string][]string{
	StatusActive:  {StatusOnLeave, StatusFired},
	StatusOnLeave: {StatusActive},
	StatusFired:   {StatusActive},
}

// CanTransition reports whether a member may go from one status to the other.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type (
	// Member is an admin, a manager or a teacher; the three are shaped the same.
	Member struct {
		MongoID   string          `json:"_id,omitempty"`
		LegacyID  core.FlexString `json:"id,omitempty"`
		FirstName string          `json:"first_name"`
		LastName  string          `json:"last_name"`
		Email     string          `json:"email"`
		Role      string          `json:"role,omitempty"`
		Status    string          `json:"status"`
		Phone     string          `json:"phone,omitempty"`
		WorkDate  string          `json:"work_date,omitempty"`
	}

	NewMember struct {
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,password"`
		Role      string `json:"role,omitempty" validate:"omitempty,oneof=admin manager teacher developer"`
		Status    string `json:"status,omitempty" validate:"omitempty,staff_status"`
		Phone     string `json:"phone,omitempty"`
		CourseID  string `json:"course_id,omitempty" validate:"omitempty,objectid"`
		WorkDate  string `json:"work_date"`
		IsDeleted bool   `json:"is_deleted"`

		Kind Kind `json:"-"`
	}

	UpdateMember struct {
		ID        string `json:"_id" validate:"required"`
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
		Status    string `json:"status,omitempty" validate:"omitempty,staff_status"`
	}

	// QueryFilter narrows a list on the screen side; the backend has no filtering.
	QueryFilter struct {
		Search string `query:"search"`
		Status string `query:"status"`
	}
)

// Key is the member's identifier, whichever form the backend used.
func (m Member) Key() string {
	if m.MongoID != "" {
		return m.MongoID
	}
	return m.LegacyID.String()
}

func (m Member) FullName() string {
	return core.CleanString(m.FirstName + " " + m.LastName)
}

func (nm *NewMember) Clean() {
	nm.FirstName = core.CleanString(nm.FirstName)
	nm.LastName = core.CleanString(nm.LastName)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Role = core.CleanString(nm.Role, true /* lower */)
	nm.Phone = core.CleanString(nm.Phone)
	nm.CourseID = core.CleanString(nm.CourseID)
}

func (nm NewMember) Validate(validate *validator.Validate) error {
	return validate.Struct(nm)
}

func (um *UpdateMember) Clean() {
	um.ID = core.CleanString(um.ID)
	um.FirstName = core.CleanString(um.FirstName)
	um.LastName = core.CleanString(um.LastName)
	um.Email = core.CleanString(um.Email, true /* lower */)
}

func (um UpdateMember) Validate(validate *validator.Validate) error {
	return validate.Struct(um)
}

// Clean drops the "all" placeholder the screens send.
func (f *QueryFilter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Status = core.CleanString(f.Status)
	if f.Status == AllStatuses {
		f.Status = ""
	}
}

// AllStatuses is the status filter value meaning "no filter".
const AllStatuses = "Hammasi"

// Filter applies f to members.
func Filter(members []Member, f QueryFilter) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if !core.MatchSearch(f.Search, m.FirstName, m.LastName, m.FullName(), m.Email, m.Phone) {
			continue
		}
		out = append(out, m)
	}
	return out
}
