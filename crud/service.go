package crud

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-sales-api/cache"
	"github.com/goliatone/go-sales-api/repository"
	"go.uber.org/zap"
)

const (
	msgListFailed   = "error listing data"
	msgFetchFailed  = "error fetching resource"
	msgAddFailed    = "error adding resource"
	msgUpdateFailed = "error updating resource"
	msgDeleteFailed = "error deleting resource"
	msgUnexpected   = "unexpected error processing the request"
)

// NotFoundMessage is the message of every NotFound response.
func NotFoundMessage(id int) string {
	return fmt.Sprintf("resource with id %d not found", id)
}

// MergeFunc copies the mutable fields of incoming onto existing.
type MergeFunc[T any] func(existing, incoming T)

// Service orchestrates cache-aside reads and unit-of-work writes for one entity type.
//
// Reads go through the cache when it is enabled. Every successful write drops
// the entity's whole cache namespace, plus any namespace added with
// WithInvalidates.
//
// Failures never escape as errors. Store errors become DatabaseError; anything
// else, panics included, becomes Unknown on writes and DatabaseError on reads.
type Service[T repository.Entity] struct {
	repo        repository.Repository[T]
	uow         repository.UnitOfWork
	cache       cache.CacheService
	keys        cache.KeySerializer
	logger      *zap.Logger
	name        string
	merge       MergeFunc[T]
	invalidates []string
}

// Option configures a Service.
type Option[T repository.Entity] func(*Service[T])

// WithMerge sets the hook Update uses to apply incoming fields. The default copies nothing.
func WithMerge[T repository.Entity](fn MergeFunc[T]) Option[T] {
	return func(s *Service[T]) {
		if fn != nil {
			s.merge = fn
		}
	}
}

// WithEntityName overrides the cache namespace derived from T.
func WithEntityName[T repository.Entity](name string) Option[T] {
	return func(s *Service[T]) {
		if name != "" {
			s.name = name
		}
	}
}

// WithKeySerializer replaces the default key serializer.
func WithKeySerializer[T repository.Entity](keys cache.KeySerializer) Option[T] {
	return func(s *Service[T]) {
		if keys != nil {
			s.keys = keys
		}
	}
}

// WithInvalidates lists other entity namespaces dropped after each write,
// for entities whose cached reads embed this one.
func WithInvalidates[T repository.Entity](names ...string) Option[T] {
	return func(s *Service[T]) {
		s.invalidates = append(s.invalidates, names...)
	}
}

// New creates a Service.
func New[T repository.Entity](repo repository.Repository[T], uow repository.UnitOfWork, cacheService cache.CacheService, logger *zap.Logger, opts ...Option[T]) *Service[T] {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service[T]{
		repo:  repo,
		uow:   uow,
		cache: cacheService,
		keys:  cache.NewDefaultKeySerializer(),
		name:  entityName[T](),
		merge: func(existing, incoming T) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.With(zap.String("entity", s.name))
	return s
}

// Name is the entity name used for cache keys.
func (s *Service[T]) Name() string {
	return s.name
}

// Namespace is the prefix shared by all cache keys of this entity.
func (s *Service[T]) Namespace() string {
	return s.keys.Namespace(s.name)
}

func (s *Service[T]) pagedKey(req PagedRequest) string {
	return s.keys.SerializeKey(s.name, "paged", req.Page, req.PageSize, req.SortBy, req.SortOrder)
}

func (s *Service[T]) entityKey(id int) string {
	return s.keys.SerializeKey(s.name, id)
}

// ListPaged returns one sorted page. The request is normalized, not validated;
// callers check ranges and the sort allow-list first.
func (s *Service[T]) ListPaged(ctx context.Context, req PagedRequest) (resp Response[PagedResult[T]]) {
	req = req.Normalize()
	defer s.recoverPanic(&resp, ErrorDatabase, msgListFailed)

	fetch := func(ctx context.Context) (Response[PagedResult[T]], error) {
		items, total, err := s.repo.ListPaged(ctx, repository.ListOptions{
			SortBy:     req.SortBy,
			Descending: req.Descending(),
			Offset:     req.Offset(),
			Limit:      req.PageSize,
		})
		if err != nil {
			return Response[PagedResult[T]]{}, err
		}
		if items == nil {
			items = []T{}
		}
		return Ok(PagedResult[T]{
			Data:       items,
			Page:       req.Page,
			PageSize:   req.PageSize,
			TotalCount: total,
		}), nil
	}

	out, err := readThrough(ctx, s.cache, s.pagedKey(req), fetch)
	if err != nil {
		s.logger.Error("list failed", zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("page_size", req.PageSize),
			zap.String("sort_by", req.SortBy),
			zap.String("sort_order", req.SortOrder),
		)
		return Fail[PagedResult[T]](ErrorDatabase, msgListFailed)
	}
	return out
}

// FindByID returns the entity or a NotFound response.
func (s *Service[T]) FindByID(ctx context.Context, id int) (resp Response[T]) {
	defer s.recoverPanic(&resp, ErrorDatabase, msgFetchFailed)

	fetch := func(ctx context.Context) (Response[T], error) {
		model, err := s.repo.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound[T](NotFoundMessage(id)), nil
		}
		if err != nil {
			return Response[T]{}, err
		}
		return Ok(model), nil
	}

	out, err := readThrough(ctx, s.cache, s.entityKey(id), fetch)
	if err != nil {
		s.logger.Error("find failed", zap.Int("id", id), zap.Error(err))
		return Fail[T](ErrorDatabase, msgFetchFailed)
	}
	return out
}

// Add stages model, commits, and returns the stored copy re-read by its new id.
func (s *Service[T]) Add(ctx context.Context, model T) (resp Response[T]) {
	defer s.recoverPanic(&resp, ErrorUnknown, msgUnexpected)

	ctx = s.uow.Begin(ctx)
	if err := s.repo.Add(ctx, model); err != nil {
		return s.writeFailure("add", 0, err, msgAddFailed)
	}
	if err := s.uow.Complete(ctx); err != nil {
		return s.writeFailure("add", 0, err, msgAddFailed)
	}

	created, err := s.repo.FindByID(ctx, model.GetID())
	if err != nil {
		return s.writeFailure("add", model.GetID(), err, msgAddFailed)
	}

	s.invalidate(ctx)
	return Ok(created)
}

// Update merges model into the stored entity with the given id.
func (s *Service[T]) Update(ctx context.Context, id int, model T) (resp Response[T]) {
	defer s.recoverPanic(&resp, ErrorUnknown, msgUnexpected)

	existing, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound[T](NotFoundMessage(id))
	}
	if err != nil {
		return s.writeFailure("update", id, err, msgUpdateFailed)
	}

	s.merge(existing, model)

	ctx = s.uow.Begin(ctx)
	if err := s.repo.Update(ctx, existing); err != nil {
		return s.writeFailure("update", id, err, msgUpdateFailed)
	}
	if err := s.uow.Complete(ctx); err != nil {
		return s.writeFailure("update", id, err, msgUpdateFailed)
	}

	s.invalidate(ctx)
	return Ok(existing)
}

// Delete removes the entity and returns its last known state.
func (s *Service[T]) Delete(ctx context.Context, id int) (resp Response[T]) {
	defer s.recoverPanic(&resp, ErrorUnknown, msgUnexpected)

	existing, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound[T](NotFoundMessage(id))
	}
	if err != nil {
		return s.writeFailure("delete", id, err, msgDeleteFailed)
	}

	ctx = s.uow.Begin(ctx)
	if err := s.repo.Delete(ctx, existing); err != nil {
		return s.writeFailure("delete", id, err, msgDeleteFailed)
	}
	if err := s.uow.Complete(ctx); err != nil {
		return s.writeFailure("delete", id, err, msgDeleteFailed)
	}

	s.invalidate(ctx)
	return Ok(existing)
}

// readThrough serves fetch through the cache when one is enabled.
func readThrough[R any](ctx context.Context, c cache.CacheService, key string, fetch func(context.Context) (R, error)) (R, error) {
	if c == nil || !c.IsEnabled() {
		return fetch(ctx)
	}
	return cache.GetOrSet[R](ctx, c, key, fetch, 0)
}

func (s *Service[T]) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.RemoveByPrefix(ctx, s.Namespace())
	for _, name := range s.invalidates {
		s.cache.RemoveByPrefix(ctx, s.keys.Namespace(name))
	}
}

// writeFailure classifies err by provenance.
func (s *Service[T]) writeFailure(op string, id int, err error, storeMessage string) Response[T] {
	if repository.IsStoreError(err) {
		s.logger.Error(op+" failed", zap.Int("id", id), zap.Error(err))
		return Fail[T](ErrorDatabase, storeMessage)
	}
	s.logger.Error(op+" failed unexpectedly", zap.Int("id", id), zap.Error(err))
	return Fail[T](ErrorUnknown, msgUnexpected)
}

func (s *Service[T]) recoverPanic(resp any, kind ErrorKind, message string) {
	r := recover()
	if r == nil {
		return
	}

	s.logger.Error("recovered panic", zap.Any("panic", r), zap.String("kind", string(kind)))

	switch out := resp.(type) {
	case *Response[T]:
		*out = Fail[T](kind, message)
	case *Response[PagedResult[T]]:
		*out = Fail[PagedResult[T]](kind, message)
	}
}
