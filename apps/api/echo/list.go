package echoapi

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/query"
)

// listResponse is what every list screen gets.
type listResponse struct {
	Rows    interface{} `json:"rows"`
	Total   int         `json:"total"`
	Search  string      `json:"search"`
	Status  string      `json:"status"`
	Pending []string    `json:"pending"`
	Stale   bool        `json:"stale"`
	Error   string      `json:"error,omitempty"`
}

// loadList runs load. When it fails with anything but an auth error and the cache still
// holds rows under key, those rows are returned along with the failure message.
func loadList[T any](ctx context.Context, key string, load func(ctx context.Context) ([]T, error)) ([]T, string, error) {
	rows, err := load(ctx)
	if err == nil {
		return rows, "", nil
	}
	if core.IsAuthError(err) {
		return nil, "", err
	}
	if qc := query.FromContext(ctx); qc != nil {
		if e, ok := qc.Peek(key); ok {
			if cached, ok := e.Data.([]T); ok {
				return cached, err.Error(), nil
			}
		}
	}
	return nil, "", err
}

// newListResponse fills the cache flags of key for the rows already filtered.
func newListResponse[T any](ctx context.Context, key string, rows []T, search, status, errMsg string, mutations ...string) listResponse {
	if rows == nil {
		rows = []T{}
	}
	res := listResponse{
		Rows:    rows,
		Total:   len(rows),
		Search:  search,
		Status:  status,
		Pending: []string{},
		Error:   errMsg,
	}
	if qc := query.FromContext(ctx); qc != nil {
		if e, ok := qc.Peek(key); ok {
			res.Stale = e.Status == query.Stale
		}
		for _, name := range mutations {
			if qc.Pending(name) {
				res.Pending = append(res.Pending, name)
			}
		}
	}
	return res
}

// bindID copies the `:id` path param into dst after binding the body.
func bindID(ctx echo.Context, dst *string) {
	if id := ctx.Param("id"); id != "" {
		*dst = id
	}
}
