// Package sqlite implements the repositories on an embedded SQLite database through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/repository"
)

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return err
}

// missingOrStale explains why a conditional write touched no rows.
func missingOrStale(ctx context.Context, db *gorm.DB, table string, id int64) error {
	var count int64
	if err := db.WithContext(ctx).Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return repository.ErrStaleVersion
	}
	return repository.ErrNotFound
}

// window applies the filter and page to base and returns the total match count.
func window(ctx context.Context, base func() *gorm.DB, fields query.Fields, criteria []query.Criterion, page query.Pageable) (*gorm.DB, int64, error) {
	where, args, err := query.Where(query.SQLite, fields, criteria, 0)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := base().WithContext(ctx).Where(where, args...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base().WithContext(ctx).Where(where, args...).
		Order(page.OrderBy()).
		Limit(page.Size).
		Offset(page.Offset())
	return q, total, nil
}
