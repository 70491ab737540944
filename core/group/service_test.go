package group

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/query"
)

type repoMock struct {
	groups []Group
	ended  []EndGroup
}

func (r *repoMock) List(ctx context.Context) ([]Group, error) {
	return r.groups, nil
}

func (r *repoMock) Create(ctx context.Context, ng NewGroup) (Group, error) {
	g := Group{MongoID: "g1", Teacher: core.Ref{ID: ng.Teacher}, StartedGroup: ng.StartedGroup}
	r.groups = append(r.groups, g)
	return g, nil
}

func (r *repoMock) End(ctx context.Context, eg EndGroup) error {
	r.ended = append(r.ended, eg)
	return nil
}

func newTestService(repo Repository) *Service {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())
	return NewService(repo, validate)
}

func TestGroup_decode(t *testing.T) {
	body := `[
		{"_id": "g1", "name": "Frontend 12", "teacher": {"_id": "507f1f77bcf86cd799439011", "first_name": "Olim", "last_name": "Sodiqov"}, "students_count": 14, "started_group": "2025-01-10"},
		{"_id": "g2", "name": "Backend 3", "teacher": "507f1f77bcf86cd799439012", "end_group": "2025-05-01", "course": {"_id": "c1", "name": {"_id": "n1", "name": "Go"}}}
	]`
	var groups []Group
	require.NoError(t, json.Unmarshal([]byte(body), &groups))
	require.Len(t, groups, 2)

	assert.Equal(t, "Olim Sodiqov", groups[0].Teacher.Label())
	assert.Equal(t, "507f1f77bcf86cd799439011", groups[0].Teacher.ID)
	assert.True(t, groups[0].Ongoing())

	assert.Equal(t, "507f1f77bcf86cd799439012", groups[1].Teacher.ID)
	assert.Equal(t, "507f1f77bcf86cd799439012", groups[1].Teacher.Label())
	assert.Equal(t, "Go", groups[1].Course.Name)
	assert.False(t, groups[1].Ongoing())
}

func TestService_Create(t *testing.T) {
	repo := &repoMock{}
	svc := newTestService(repo)
	qc := query.NewClient()
	ctx := query.NewContext(context.Background(), qc)

	_, err := svc.QueryAll(ctx)
	require.NoError(t, err)

	_, err = svc.Create(ctx, NewGroup{Teacher: "507f1f77bcf86cd799439011", StartedGroup: "2025-06-01", CourseID: "nope"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "course_id", verrs[0].Field())

	e, _ := qc.Peek(CacheKey)
	assert.Equal(t, query.Fresh, e.Status, "a rejected form leaves the cache alone")

	_, err = svc.Create(ctx, NewGroup{Teacher: "507f1f77bcf86cd799439011", StartedGroup: "2025-06-01", CourseID: "507f1f77bcf86cd799439099"})
	require.NoError(t, err)
	e, _ = qc.Peek(CacheKey)
	assert.Equal(t, query.Stale, e.Status)
}

func TestService_End(t *testing.T) {
	repo := &repoMock{}
	svc := newTestService(repo)
	ctx := context.Background()

	err := svc.End(ctx, EndGroup{ID: "g1"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "date", verrs[0].Field())

	require.NoError(t, svc.End(ctx, EndGroup{ID: " g1 ", Date: "2025-07-01"}))
	assert.Equal(t, []EndGroup{{ID: "g1", Date: "2025-07-01"}}, repo.ended)
}

func TestFilter(t *testing.T) {
	groups := []Group{
		{MongoID: "1", Name: "Frontend 12", Teacher: core.Ref{FirstName: "Olim", LastName: "Sodiqov"}},
		{MongoID: "2", Name: "Backend 3", Teacher: core.Ref{FirstName: "Aziza"}, EndGroup: "2025-05-01"},
	}
	tests := []struct {
		filter QueryFilter
		want   []string
	}{
		{QueryFilter{}, []string{"1", "2"}},
		{QueryFilter{Status: "ONGOING"}, []string{"1"}},
		{QueryFilter{Status: FilterEnded}, []string{"2"}},
		{QueryFilter{Search: "olim"}, []string{"1"}},
		{QueryFilter{Search: "backend", Status: FilterOngoing}, nil},
	}
	for _, tc := range tests {
		f := tc.filter
		f.Clean()
		var got []string
		for _, g := range Filter(groups, f) {
			got = append(got, g.Key())
		}
		assert.Equal(t, tc.want, got, "%+v", tc.filter)
	}
}
