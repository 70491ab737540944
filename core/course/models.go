package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/query"
)

const (
	// CacheKey is the cache key of the unfiltered list; the filtered lists and the
	// course options used by other forms live below it.
	CacheKey   = "courses"
	FrozenKey  = CacheKey + query.KeySep + "frozen"
	ActiveKey  = CacheKey + query.KeySep + "active"
	OptionsKey = CacheKey + query.KeySep + "options"

	// defaults of the quick-create form
	DefaultDescription = "Yangi kurs"
	DefaultDuration    = "2 yil"
	DefaultPrice       = 1000000
)

type (
	Course struct {
		MongoID       string          `json:"_id,omitempty"`
		Name          core.Ref        `json:"name"`
		Price         float64         `json:"price"`
		Duration      core.FlexString `json:"duration,omitempty"`
		Description   string          `json:"description,omitempty"`
		StudentsCount int             `json:"students_count"`
		IsFreeze      bool            `json:"is_freeze"`
	}

	NewCourse struct {
		Name        string   `json:"name" validate:"required"`
		Description string   `json:"description,omitempty"`
		Duration    string   `json:"duration,omitempty"`
		Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	}

	NewCategory struct {
		Name string `json:"name" validate:"required"`
	}

	EditCourse struct {
		CourseID string  `json:"course_id" validate:"required"`
		Duration string  `json:"duration" validate:"required"`
		Price    float64 `json:"price" validate:"gt=0"`
	}

	// Ref addresses one course in freeze, unfreeze and delete calls.
	Ref struct {
		CourseID string `json:"course_id" validate:"required"`
	}

	QueryFilter struct {
		Search   string `query:"search"`
		IsFreeze *bool  `query:"is_freeze"`
	}
)

// Title is the course name, whichever shape the backend sent.
func (c Course) Title() string {
	return c.Name.Label()
}

func (nc *NewCourse) Clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.Duration = core.CleanString(nc.Duration)
	if nc.Description == "" {
		nc.Description = DefaultDescription
	}
	if nc.Duration == "" {
		nc.Duration = DefaultDuration
	}
	if nc.Price == nil {
		price := float64(DefaultPrice)
		nc.Price = &price
	}
}

func (nc NewCourse) Validate(validate *validator.Validate) error {
	return validate.Struct(nc)
}

func (nc *NewCategory) Clean() {
	nc.Name = core.CleanString(nc.Name)
}

func (nc NewCategory) Validate(validate *validator.Validate) error {
	return validate.Struct(nc)
}

func (ec *EditCourse) Clean() {
	ec.CourseID = core.CleanString(ec.CourseID)
	ec.Duration = core.CleanString(ec.Duration)
}

func (ec EditCourse) Validate(validate *validator.Validate) error {
	return validate.Struct(ec)
}

// Key is the cache key of the list matching the freeze filter.
func Key(frozen *bool) string {
	switch {
	case frozen == nil:
		return CacheKey
	case *frozen:
		return FrozenKey
	default:
		return ActiveKey
	}
}

// Filter matches the search term against the course name and description.
func Filter(courses []Course, f QueryFilter) []Course {
	term := core.CleanString(f.Search)
	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		if core.MatchSearch(term, c.Title(), c.Description) {
			out = append(out, c)
		}
	}
	return out
}
