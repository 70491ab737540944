package student

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core"
)

const (
	StatusActive   = "faol"
	StatusOnLeave  = "ta'tilda"
	StatusFinished = "yakunladi"

	// AllStatuses is the status filter value meaning "no filter".
	AllStatuses = "Hammasi"

	// CacheKey is the cache key of the student list.
	CacheKey = "students"
)

var (
	Statuses = []string{StatusActive, StatusOnLeave, StatusFinished}

	// students are counted inside groups
	affects = []string{CacheKey, "groups"}
)

type (
	Student struct {
		MongoID     string          `json:"_id,omitempty"`
		LegacyID    core.FlexString `json:"id,omitempty"`
		FirstName   string          `json:"first_name"`
		LastName    string          `json:"last_name"`
		Email       string          `json:"email,omitempty"`
		Phone       string          `json:"phone,omitempty"`
		Status      string          `json:"status"`
		GroupsCount int             `json:"groups_count"`
	}

	// GroupRef links a new student to a group.
	GroupRef struct {
		Group string `json:"group" validate:"required,objectid"`
	}

	NewStudent struct {
		FirstName string     `json:"first_name" validate:"required"`
		LastName  string     `json:"last_name" validate:"required"`
		Phone     string     `json:"phone" validate:"required"`
		Groups    []GroupRef `json:"groups" validate:"required,min=1,dive"`
	}

	QueryFilter struct {
		Search string `query:"search"`
		Status string `query:"status"`
	}
)

func (s Student) Key() string {
	if s.MongoID != "" {
		return s.MongoID
	}
	return s.LegacyID.String()
}

func (s Student) FullName() string {
	return core.CleanString(s.FirstName + " " + s.LastName)
}

func (ns *NewStudent) Clean() {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Phone = core.CleanString(ns.Phone)
	groups := ns.Groups[:0]
	for _, g := range ns.Groups {
		if g.Group = core.CleanString(g.Group); g.Group != "" {
			groups = append(groups, g)
		}
	}
	ns.Groups = groups
}

func (ns NewStudent) Validate(validate *validator.Validate) error {
	return validate.Struct(ns)
}

func (f *QueryFilter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Status = core.CleanString(f.Status)
	if f.Status == AllStatuses {
		f.Status = ""
	}
}

// Filter applies f to students.
func Filter(students []Student, f QueryFilter) []Student {
	out := make([]Student, 0, len(students))
	for _, s := range students {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if !core.MatchSearch(f.Search, s.FirstName, s.LastName, s.FullName(), s.Email, s.Phone) {
			continue
		}
		out = append(out, s)
	}
	return out
}
