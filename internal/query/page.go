package query

import (
	"context"
	"fmt"
	"math"
	"strings"

	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// PageRequest carries raw paging input. Nil or blank members take defaults.
type PageRequest struct {
	Page    *int
	Size    *int
	SortBy  string
	SortDir string
}

// PageSpec holds the per-aggregate paging defaults.
type PageSpec struct {
	DefaultSize int
	DefaultSort string
	// Sortable lists the fields accepted in sortBy with their columns.
	Sortable Fields
	// IDColumn is appended to every ordering as a tie-breaker.
	IDColumn string
}

// Pageable is a validated page window.
type Pageable struct {
	Page       int
	Size       int
	SortBy     string
	SortColumn string
	Direction  Direction
	idColumn   string
}

// Offset is the number of matching records skipped before the window.
func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// OrderBy renders the ORDER BY expression with the id tie-breaker in the same direction.
func (p Pageable) OrderBy() string {
	dir := strings.ToUpper(string(p.Direction))
	if p.idColumn == "" || p.SortColumn == p.idColumn {
		return fmt.Sprintf("%s %s", p.SortColumn, dir)
	}
	return fmt.Sprintf("%s %s, %s %s", p.SortColumn, dir, p.idColumn, dir)
}

// Resolve validates a request against the aggregate defaults.
func (s PageSpec) Resolve(req PageRequest) (Pageable, error) {
	page := 0
	if req.Page != nil {
		page = *req.Page
	}
	if page < 0 {
		return Pageable{}, apperrors.NewInvalidParameter("page", "must be zero or greater")
	}

	size := s.DefaultSize
	if req.Size != nil {
		size = *req.Size
	}
	if size < 1 {
		return Pageable{}, apperrors.NewInvalidParameter("size", "must be at least 1")
	}
	if page > math.MaxInt/size {
		return Pageable{}, apperrors.NewInvalidParameter("page", "offset page*size overflows")
	}

	sortBy := strings.TrimSpace(req.SortBy)
	if sortBy == "" {
		sortBy = s.DefaultSort
	}
	col, ok := s.Sortable.Column(sortBy)
	if !ok {
		return Pageable{}, apperrors.NewInvalidParameter("sortBy", fmt.Sprintf("unknown sort field %q", sortBy))
	}

	dir := Asc
	switch strings.ToLower(strings.TrimSpace(req.SortDir)) {
	case "", "asc":
	case "desc":
		dir = Desc
	default:
		return Pageable{}, apperrors.NewInvalidParameter("sortDir", "must be asc or desc")
	}

	return Pageable{
		Page:       page,
		Size:       size,
		SortBy:     sortBy,
		SortColumn: col,
		Direction:  dir,
		idColumn:   s.IDColumn,
	}, nil
}

// Page is the paginated envelope returned by listings.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// NewPage computes the pagination metadata for a fetched window.
func NewPage[T any](content []T, p Pageable, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return Page[T]{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          total == 0 || p.Page >= totalPages-1,
	}
}

// MapPage converts the content of a page and keeps its metadata.
func MapPage[T, R any](in Page[T], fn func(T) R) Page[R] {
	content := make([]R, 0, len(in.Content))
	for _, item := range in.Content {
		content = append(content, fn(item))
	}
	return Page[R]{
		Content:       content,
		Page:          in.Page,
		Size:          in.Size,
		TotalElements: in.TotalElements,
		TotalPages:    in.TotalPages,
		Last:          in.Last,
	}
}

// Fetcher loads one window and the total count of matching records.
type Fetcher[T any] func(ctx context.Context, p Pageable) ([]T, int64, error)

// Fetch resolves the request and runs the bounded fetch.
func Fetch[T any](ctx context.Context, spec PageSpec, req PageRequest, fetch Fetcher[T]) (Page[T], error) {
	p, err := spec.Resolve(req)
	if err != nil {
		return Page[T]{}, err
	}
	content, total, err := fetch(ctx, p)
	if err != nil {
		return Page[T]{}, err
	}
	return NewPage(content, p, total), nil
}
