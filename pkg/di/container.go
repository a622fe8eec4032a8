package di

import (
	"context"
	"fmt"

	"github.com/goliatone/go-sales-api/api"
	"github.com/goliatone/go-sales-api/cache"
	"github.com/goliatone/go-sales-api/config"
	"github.com/goliatone/go-sales-api/crud"
	"github.com/goliatone/go-sales-api/internal/bunstore"
	"github.com/goliatone/go-sales-api/repository"
	"github.com/goliatone/go-sales-api/sales"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Container owns the process-wide components: the database handle, the
// cache service, the unit of work and the entity services built on them.
// Everything is created once in NewContainer and shared by reference.
type Container struct {
	config        *config.Config
	logger        *zap.Logger
	db            *bun.DB
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	unitOfWork    *bunstore.UnitOfWork
	repositories  sales.Repositories
	images        *sales.ImageStore

	customers *sales.CustomerService
	products  *sales.ProductService
	sales     *sales.SaleService
}

// NewContainer opens the database, creates the schema when missing and wires
// the services. The caller must Close the container.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := bunstore.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := sales.CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	c, err := NewContainerWithDB(db, cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithDB wires the services over an already open database.
func NewContainerWithDB(db *bun.DB, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cacheService, err := cache.NewCacheService(cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("cache service: %w", err)
	}

	c := &Container{
		config:        cfg,
		logger:        logger,
		db:            db,
		cacheService:  cacheService,
		keySerializer: cache.NewDefaultKeySerializer(),
		unitOfWork:    bunstore.NewUnitOfWork(db),
		repositories:  sales.NewRepositories(db),
		images:        sales.NewImageStore(cfg.ImageDir, sales.DefaultMaxSide),
	}

	c.customers = sales.NewCustomerService(c.repositories.Customers, c.unitOfWork, c.cacheService, logger)
	c.products = sales.NewProductService(c.repositories.Products, c.unitOfWork, c.cacheService, logger)
	c.sales = sales.NewSaleService(c.repositories.Sales, c.unitOfWork, c.cacheService, logger)

	logger.Info("container ready",
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("cache_enabled", cacheService.IsEnabled()),
		zap.String("image_dir", cfg.ImageDir),
	)
	return c, nil
}

func (c *Container) Config() *config.Config { return c.config }

func (c *Container) Logger() *zap.Logger { return c.logger }

func (c *Container) DB() *bun.DB { return c.db }

// CacheService returns the shared cache service.
func (c *Container) CacheService() cache.CacheService { return c.cacheService }

func (c *Container) KeySerializer() cache.KeySerializer { return c.keySerializer }

func (c *Container) UnitOfWork() repository.UnitOfWork { return c.unitOfWork }

func (c *Container) Repositories() sales.Repositories { return c.repositories }

func (c *Container) Images() *sales.ImageStore { return c.images }

func (c *Container) Customers() *sales.CustomerService { return c.customers }

func (c *Container) Products() *sales.ProductService { return c.products }

func (c *Container) Sales() *sales.SaleService { return c.sales }

// APIDependencies returns what the HTTP routes need.
func (c *Container) APIDependencies() api.Dependencies {
	return api.Dependencies{
		Customers: c.customers,
		Products:  c.products,
		Sales:     c.sales,
		Images:    c.images,
		Logger:    c.logger,
		Ping:      c.db.PingContext,
	}
}

// Close releases the database handle.
func (c *Container) Close() error {
	return c.db.Close()
}

// NewCrudService builds a CRUD service for any entity over the container's
// cache and unit of work.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
// Example: NewCrudService[*Supplier](container, supplierRepository, crud.WithEntityName[*Supplier]("supplier"))
func NewCrudService[T repository.Entity](container *Container, repo repository.Repository[T], opts ...crud.Option[T]) *crud.Service[T] {
	opts = append([]crud.Option[T]{crud.WithKeySerializer[T](container.keySerializer)}, opts...)
	return crud.New(repo, container.unitOfWork, container.cacheService, container.logger, opts...)
}
