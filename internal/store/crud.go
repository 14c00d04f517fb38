package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rxtech-lab/deployment-portal/internal/metrics"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no row matches the requested key.
var ErrNotFound = errors.New("record not found")

// notFound translates gorm's missing row error into ErrNotFound.
func notFound(err error, entity string, key any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", entity, key, ErrNotFound)
	}
	return err
}

// crud implements the key based operations every entity store shares.
type crud[T any, K comparable] struct {
	db     *gorm.DB
	key    string
	entity string
}

func newCrud[T any, K comparable](db *gorm.DB, key, entity string) crud[T, K] {
	return crud[T, K]{db: db, key: key, entity: entity}
}

// observe records the query duration and error count for method.
func (c crud[T, K]) observe(method string, start time.Time, err error) {
	label := c.entity + "." + method
	metrics.DBQueryDurationHistogram.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.DBQueryErrorCount.WithLabelValues(label).Inc()
	}
}

func (c crud[T, K]) Get(ctx context.Context, key K) (_ *T, err error) {
	defer func(start time.Time) { c.observe("Get", start, err) }(time.Now())

	var record T
	err = c.db.WithContext(ctx).Where(c.key+" = ?", key).First(&record).Error
	if err != nil {
		return nil, notFound(err, c.entity, key)
	}
	return &record, nil
}

func (c crud[T, K]) List(ctx context.Context) (_ []T, err error) {
	defer func(start time.Time) { c.observe("List", start, err) }(time.Now())

	var records []T
	err = c.db.WithContext(ctx).Order(c.key).Find(&records).Error
	return records, err
}

// Save inserts the record, or overwrites every column when the key already exists.
func (c crud[T, K]) Save(ctx context.Context, record *T) (err error) {
	defer func(start time.Time) { c.observe("Save", start, err) }(time.Now())

	return c.db.WithContext(ctx).Save(record).Error
}

func (c crud[T, K]) Delete(ctx context.Context, key K) (err error) {
	defer func(start time.Time) { c.observe("Delete", start, err) }(time.Now())

	result := c.db.WithContext(ctx).Where(c.key+" = ?", key).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %v: %w", c.entity, key, ErrNotFound)
	}
	return nil
}

func (c crud[T, K]) Exists(ctx context.Context, key K) (_ bool, err error) {
	defer func(start time.Time) { c.observe("Exists", start, err) }(time.Now())

	var count int64
	err = c.db.WithContext(ctx).Model(new(T)).Where(c.key+" = ?", key).Count(&count).Error
	return count > 0, err
}

func (c crud[T, K]) Count(ctx context.Context) (_ int64, err error) {
	defer func(start time.Time) { c.observe("Count", start, err) }(time.Now())

	var count int64
	err = c.db.WithContext(ctx).Model(new(T)).Count(&count).Error
	return count, err
}
