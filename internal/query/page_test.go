package query

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

var testSpec = PageSpec{
	DefaultSize: 4,
	DefaultSort: "id",
	Sortable:    Fields{"id": "id", "name": "name"},
	IDColumn:    "id",
}

func intPtr(v int) *int { return &v }

func TestResolveDefaults(t *testing.T) {
	p, err := testSpec.Resolve(PageRequest{})
	require.NoError(t, err)

	assert.Equal(t, 0, p.Page)
	assert.Equal(t, 4, p.Size)
	assert.Equal(t, "id", p.SortBy)
	assert.Equal(t, Asc, p.Direction)
	assert.Equal(t, "id ASC", p.OrderBy())
	assert.Equal(t, 0, p.Offset())
}

func TestResolveSortDirIsCaseInsensitive(t *testing.T) {
	p, err := testSpec.Resolve(PageRequest{Page: intPtr(2), Size: intPtr(5), SortBy: "name", SortDir: "DESC"})
	require.NoError(t, err)

	assert.Equal(t, Desc, p.Direction)
	assert.Equal(t, "name DESC, id DESC", p.OrderBy())
	assert.Equal(t, 10, p.Offset())
}

func TestResolveRejectsInvalidInput(t *testing.T) {
	cases := map[string]PageRequest{
		"negative page":                   {Page: intPtr(-1)},
		"zero size":                       {Size: intPtr(0)},
		"negative size":                   {Size: intPtr(-3)},
		"unknown sort":                    {SortBy: "salary"},
		"bad direction":                   {SortDir: "up"},
		"offset overflow":                 {Page: intPtr(math.MaxInt / 2), Size: intPtr(4)},
		"offset overflow at default size": {Page: intPtr(math.MaxInt/4 + 1)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := testSpec.Resolve(req)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidParameter))
		})
	}
}

func TestNewPageMetadata(t *testing.T) {
	p, err := testSpec.Resolve(PageRequest{Page: intPtr(2), Size: intPtr(4)})
	require.NoError(t, err)

	page := NewPage([]int{9, 10}, p, 10)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.Last)

	first := NewPage([]int{1, 2, 3, 4}, Pageable{Page: 0, Size: 4}, 10)
	assert.False(t, first.Last)

	empty := NewPage[int](nil, Pageable{Page: 0, Size: 4}, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.True(t, empty.Last)
	assert.NotNil(t, empty.Content)
}

func TestFetchSkipsBackendOnInvalidRequest(t *testing.T) {
	called := false
	_, err := Fetch(context.Background(), testSpec, PageRequest{SortBy: "nope"}, func(context.Context, Pageable) ([]int, int64, error) {
		called = true
		return nil, 0, nil
	})

	require.Error(t, err)
	assert.False(t, called)
}

func TestFetchAndMapPage(t *testing.T) {
	page, err := Fetch(context.Background(), testSpec, PageRequest{Size: intPtr(2)}, func(_ context.Context, p Pageable) ([]int, int64, error) {
		assert.Equal(t, 2, p.Size)
		return []int{1, 2}, 5, nil
	})
	require.NoError(t, err)

	mapped := MapPage(page, func(v int) string { return string(rune('a' + v - 1)) })
	assert.Equal(t, []string{"a", "b"}, mapped.Content)
	assert.Equal(t, int64(5), mapped.TotalElements)
	assert.Equal(t, 3, mapped.TotalPages)
	assert.False(t, mapped.Last)
}

func TestResolveAcceptsLargestSafePage(t *testing.T) {
	p, err := testSpec.Resolve(PageRequest{Page: intPtr(math.MaxInt / 4), Size: intPtr(4)})
	require.NoError(t, err)
	assert.Positive(t, p.Offset())
}
