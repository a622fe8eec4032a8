package bunstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-sales-api/repository"
	"github.com/uptrace/bun"
)

type stagedFunc func(ctx context.Context, tx bun.IDB) error

type stagedOp struct {
	op     string
	entity string
	run    stagedFunc
}

type changeSet struct {
	mu  sync.Mutex
	ops []stagedOp
}

func (c *changeSet) add(op stagedOp) {
	c.mu.Lock()
	c.ops = append(c.ops, op)
	c.mu.Unlock()
}

func (c *changeSet) drain() []stagedOp {
	c.mu.Lock()
	defer c.mu.Unlock()
	ops := c.ops
	c.ops = nil
	return ops
}

type changeSetKey struct{}

func changeSetFromContext(ctx context.Context) *changeSet {
	if ctx == nil {
		return nil
	}
	set, _ := ctx.Value(changeSetKey{}).(*changeSet)
	return set
}

// UnitOfWork flushes staged repository writes inside one bun transaction.
type UnitOfWork struct {
	db *bun.DB
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork returns a unit of work bound to db.
func NewUnitOfWork(db *bun.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Begin attaches an empty change set to ctx.
func (u *UnitOfWork) Begin(ctx context.Context) context.Context {
	return context.WithValue(ctx, changeSetKey{}, &changeSet{})
}

// Complete runs every staged operation in order inside RunInTx. The change set
// is emptied whether or not the transaction commits.
func (u *UnitOfWork) Complete(ctx context.Context) error {
	set := changeSetFromContext(ctx)
	if set == nil {
		return &repository.Error{Op: "commit", Err: repository.ErrNoUnitOfWork}
	}

	ops := set.drain()
	if len(ops) == 0 {
		return nil
	}

	err := u.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, op := range ops {
			if err := op.run(ctx, tx); err != nil {
				return fmt.Errorf("%s %s: %w", op.op, op.entity, err)
			}
		}
		return nil
	})
	if err != nil {
		return &repository.Error{Op: "commit", Err: err}
	}
	return nil
}
