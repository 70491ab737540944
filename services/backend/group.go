package backend

import (
	"context"
	"net/http"

	"github.com/trezcool/markaz/core/group"
)

// Groups implements group.Repository.
type Groups struct {
	c *Client
}

func NewGroups(c *Client) *Groups {
	return &Groups{c: c}
}

func (g *Groups) List(ctx context.Context) ([]group.Group, error) {
	body, err := g.c.do(ctx, call{method: http.MethodGet, path: "/api/group/get-all-group", fallback: listFallback})
	if err != nil {
		return nil, err
	}
	return decodeList[group.Group](body, "groups"), nil
}

func (g *Groups) Create(ctx context.Context, ng group.NewGroup) (group.Group, error) {
	body, err := g.c.do(ctx, call{method: http.MethodPost, path: "/api/group/create-group", body: ng})
	if err != nil {
		return group.Group{}, err
	}
	return decodeOne[group.Group](body), nil
}

func (g *Groups) End(ctx context.Context, eg group.EndGroup) error {
	return g.c.exec(ctx, call{method: http.MethodPut, path: "/api/group/edit-end-group", body: eg})
}
