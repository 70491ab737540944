package group

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core"
)

const (
	CacheKey = "groups"

	// status filter values
	FilterOngoing = "ongoing"
	FilterEnded   = "ended"
)

// group writes change student counts
var affects = []string{CacheKey, "students"}

type (
	Group struct {
		MongoID       string          `json:"_id,omitempty"`
		LegacyID      core.FlexString `json:"id,omitempty"`
		Name          string          `json:"name"`
		Teacher       core.Ref        `json:"teacher"`
		StudentsCount int             `json:"students_count"`
		StartedGroup  string          `json:"started_group,omitempty"`
		EndGroup      string          `json:"end_group,omitempty"`
		Course        core.Ref        `json:"course"`
		Price         float64         `json:"price,omitempty"`
	}

	NewGroup struct {
		Teacher      string `json:"teacher" validate:"required,objectid"`
		StartedGroup string `json:"started_group" validate:"required,isodate"`
		CourseID     string `json:"course_id" validate:"required,objectid"`
	}

	// EndGroup sets the day a group ends.
	EndGroup struct {
		ID   string `json:"_id" validate:"required"`
		Date string `json:"date" validate:"required,isodate"`
	}

	QueryFilter struct {
		Search string `query:"search"`
		Status string `query:"status"`
	}
)

func (g Group) Key() string {
	if g.MongoID != "" {
		return g.MongoID
	}
	return g.LegacyID.String()
}

// Ongoing reports whether the group has no end date yet.
func (g Group) Ongoing() bool {
	return g.EndGroup == ""
}

func (ng *NewGroup) Clean() {
	ng.Teacher = core.CleanString(ng.Teacher)
	ng.StartedGroup = core.CleanString(ng.StartedGroup)
	ng.CourseID = core.CleanString(ng.CourseID)
}

func (ng NewGroup) Validate(validate *validator.Validate) error {
	return validate.Struct(ng)
}

func (eg *EndGroup) Clean() {
	eg.ID = core.CleanString(eg.ID)
	eg.Date = core.CleanString(eg.Date)
}

func (eg EndGroup) Validate(validate *validator.Validate) error {
	return validate.Struct(eg)
}

func (f *QueryFilter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Status = core.CleanString(f.Status, true /* lower */)
	if f.Status != FilterOngoing && f.Status != FilterEnded {
		f.Status = ""
	}
}

// Filter matches the group name, teacher and course against the search term.
func Filter(groups []Group, f QueryFilter) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		switch {
		case f.Status == FilterOngoing && !g.Ongoing(),
			f.Status == FilterEnded && g.Ongoing():
			continue
		}
		if !core.MatchSearch(f.Search, g.Name, g.Teacher.Label(), g.Course.Label()) {
			continue
		}
		out = append(out, g)
	}
	return out
}
