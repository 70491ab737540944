package echoapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/staff"
	"github.com/trezcool/markaz/core/student"
)

var orderingParam = "ordering"

type (
	orderField struct {
		Field     string
		Ascending bool
	}

	// Ordering is the `ordering` query param: comma separated fields, `-` prefixed for descending.
	Ordering struct {
		Fields []orderField
	}

	// sortKeys maps the orderable fields of a row type to the value they sort by.
	sortKeys[T any] map[string]func(T) string
)

var (
	staffSortKeys = sortKeys[staff.Member]{
		"first_name": func(m staff.Member) string { return m.FirstName },
		"last_name":  func(m staff.Member) string { return m.LastName },
		"email":      func(m staff.Member) string { return m.Email },
		"status":     func(m staff.Member) string { return m.Status },
		"work_date":  func(m staff.Member) string { return m.WorkDate },
	}

	studentSortKeys = sortKeys[student.Student]{
		"first_name":   func(s student.Student) string { return s.FirstName },
		"last_name":    func(s student.Student) string { return s.LastName },
		"status":       func(s student.Student) string { return s.Status },
		"groups_count": func(s student.Student) string { return fmt.Sprintf("%09d", s.GroupsCount) },
	}
)

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Fields = append(ord.Fields, orderField{Field: field, Ascending: !descending})
	}
}

// orderRows sorts rows in place, stable, by the bound fields. Values compare case-insensitively.
func orderRows[T any](rows []T, ord Ordering, keys sortKeys[T]) error {
	for _, f := range ord.Fields {
		if _, ok := keys[f.Field]; !ok {
			msg := fmt.Sprintf("%q bo'yicha saralab bo'lmaydi", f.Field)
			return core.NewValidationError(nil, core.FieldError{Field: orderingParam, Error: msg})
		}
	}
	if len(ord.Fields) == 0 {
		return nil
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, f := range ord.Fields {
			a := strings.ToLower(keys[f.Field](rows[i]))
			b := strings.ToLower(keys[f.Field](rows[j]))
			if a == b {
				continue
			}
			if f.Ascending {
				return a < b
			}
			return a > b
		}
		return false
	})
	return nil
}
