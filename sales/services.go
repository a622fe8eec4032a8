package sales

import (
	"github.com/goliatone/go-sales-api/cache"
	"github.com/goliatone/go-sales-api/crud"
	"github.com/goliatone/go-sales-api/repository"
	"go.uber.org/zap"
)

type (
	CustomerService = crud.Service[*Customer]
	ProductService  = crud.Service[*Product]
	SaleService     = crud.Service[*Sale]
)

// NewCustomerService builds the customer service. Sales embed the customer
// name, so customer writes also drop the sale namespace.
func NewCustomerService(repo repository.Repository[*Customer], uow repository.UnitOfWork, c cache.CacheService, logger *zap.Logger) *CustomerService {
	return crud.New(repo, uow, c, logger,
		crud.WithEntityName[*Customer](CustomerEntity),
		crud.WithMerge[*Customer](MergeCustomer),
		crud.WithInvalidates[*Customer](SaleEntity),
	)
}

// NewProductService builds the product service. Sale items embed the product
// name, so product writes also drop the sale namespace.
func NewProductService(repo repository.Repository[*Product], uow repository.UnitOfWork, c cache.CacheService, logger *zap.Logger) *ProductService {
	return crud.New(repo, uow, c, logger,
		crud.WithEntityName[*Product](ProductEntity),
		crud.WithMerge[*Product](MergeProduct),
		crud.WithInvalidates[*Product](SaleEntity),
	)
}

func NewSaleService(repo repository.Repository[*Sale], uow repository.UnitOfWork, c cache.CacheService, logger *zap.Logger) *SaleService {
	return crud.New(repo, uow, c, logger,
		crud.WithEntityName[*Sale](SaleEntity),
		crud.WithMerge[*Sale](MergeSale),
	)
}
