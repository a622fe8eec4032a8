package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-sales-api/repository"
	"github.com/uptrace/bun"
)

var _ repository.Repository[repository.Entity] = (*Repository[repository.Entity])(nil)

// ModelHandlers describes how one entity type is read and written.
type ModelHandlers[T repository.Entity] struct {
	// Name labels errors and logs, e.g. "customer".
	Name string
	// NewRecord returns an empty, addressable record to scan into.
	NewRecord func() T
	// SortColumns maps lower-cased public field names to column names.
	// Anything not listed is rejected with repository.ErrInvalidSortField.
	SortColumns map[string]string
	// Query decorates every select, typically with relations.
	Query func(q *bun.SelectQuery) *bun.SelectQuery

	AfterInsert  func(ctx context.Context, db bun.IDB, record T) error
	AfterUpdate  func(ctx context.Context, db bun.IDB, record T) error
	BeforeDelete func(ctx context.Context, db bun.IDB, record T) error
}

// Repository is a bun backed repository.Repository.
type Repository[T repository.Entity] struct {
	db       bun.IDB
	handlers ModelHandlers[T]
}

// NewRepository builds a repository for one entity type.
func NewRepository[T repository.Entity](db bun.IDB, handlers ModelHandlers[T]) *Repository[T] {
	return &Repository[T]{db: db, handlers: handlers}
}

// SortColumn resolves a public sort field to its column.
func (r *Repository[T]) SortColumn(field string) (string, error) {
	col, ok := r.handlers.SortColumns[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		return "", fmt.Errorf("%w: %q", repository.ErrInvalidSortField, field)
	}
	return col, nil
}

func (r *Repository[T]) ListPaged(ctx context.Context, opts repository.ListOptions) ([]T, int, error) {
	col, err := r.SortColumn(opts.SortBy)
	if err != nil {
		return nil, 0, repository.Wrap("list", r.handlers.Name, err)
	}

	direction := "ASC"
	if opts.Descending {
		direction = "DESC"
	}

	var records []T
	q := r.db.NewSelect().Model(&records)
	q = r.decorate(q).
		OrderExpr("?TableAlias.? "+direction, bun.Ident(col)).
		Offset(opts.Offset).
		Limit(opts.Limit)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, repository.Wrap("list", r.handlers.Name, err)
	}

	return records, total, nil
}

func (r *Repository[T]) FindByID(ctx context.Context, id int) (T, error) {
	var zero T

	record := r.handlers.NewRecord()
	q := r.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id)

	if err := r.decorate(q).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, repository.ErrNotFound
		}
		return zero, repository.Wrap("find", r.handlers.Name, err)
	}

	return record, nil
}

func (r *Repository[T]) Add(ctx context.Context, record T) error {
	return r.stage(ctx, "insert", func(ctx context.Context, tx bun.IDB) error {
		if _, err := tx.NewInsert().Model(record).Returning("id").Exec(ctx); err != nil {
			return err
		}
		if r.handlers.AfterInsert != nil {
			return r.handlers.AfterInsert(ctx, tx, record)
		}
		return nil
	})
}

func (r *Repository[T]) Update(ctx context.Context, record T) error {
	return r.stage(ctx, "update", func(ctx context.Context, tx bun.IDB) error {
		if _, err := tx.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
			return err
		}
		if r.handlers.AfterUpdate != nil {
			return r.handlers.AfterUpdate(ctx, tx, record)
		}
		return nil
	})
}

func (r *Repository[T]) Delete(ctx context.Context, record T) error {
	return r.stage(ctx, "delete", func(ctx context.Context, tx bun.IDB) error {
		if r.handlers.BeforeDelete != nil {
			if err := r.handlers.BeforeDelete(ctx, tx, record); err != nil {
				return err
			}
		}
		_, err := tx.NewDelete().Model(record).WherePK().Exec(ctx)
		return err
	})
}

func (r *Repository[T]) stage(ctx context.Context, op string, fn stagedFunc) error {
	set := changeSetFromContext(ctx)
	if set == nil {
		return repository.Wrap(op, r.handlers.Name, repository.ErrNoUnitOfWork)
	}
	set.add(stagedOp{op: op, entity: r.handlers.Name, run: fn})
	return nil
}

func (r *Repository[T]) decorate(q *bun.SelectQuery) *bun.SelectQuery {
	if r.handlers.Query != nil {
		return r.handlers.Query(q)
	}
	return q
}
