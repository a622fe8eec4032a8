package repository

import "context"

// Entity is anything persisted with a store-assigned integer identity.
// Zero means the record has not been persisted yet.
type Entity interface {
	GetID() int
}

// ListOptions describes one page of a sorted listing.
type ListOptions struct {
	SortBy     string
	Descending bool
	Offset     int
	Limit      int
}

// Repository is the entity store consumed by the CRUD services.
//
// Reads hit the database directly. Add, Update and Delete only stage the
// mutation on the unit of work carried by ctx; nothing is written until
// UnitOfWork.Complete runs.
type Repository[T Entity] interface {
	// ListPaged returns the requested page and the size of the unpaged set.
	ListPaged(ctx context.Context, opts ListOptions) ([]T, int, error)
	// FindByID returns ErrNotFound when no record has the given id.
	FindByID(ctx context.Context, id int) (T, error)
	Add(ctx context.Context, record T) error
	Update(ctx context.Context, record T) error
	Delete(ctx context.Context, record T) error
}

// UnitOfWork groups staged mutations into one atomic flush.
type UnitOfWork interface {
	// Begin returns a context carrying a fresh change set.
	Begin(ctx context.Context) context.Context
	// Complete writes every mutation staged on ctx in a single transaction.
	Complete(ctx context.Context) error
}
