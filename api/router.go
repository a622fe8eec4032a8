package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-sales-api/sales"
	"go.uber.org/zap"
)

// Dependencies are the services the routes are served from.
type Dependencies struct {
	Customers *sales.CustomerService
	Products  *sales.ProductService
	Sales     *sales.SaleService
	Images    *sales.ImageStore
	Logger    *zap.Logger
	// Ping reports database health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// NewRouter builds an engine with panic recovery and access logging, and
// registers all routes.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	e := gin.New()
	e.Use(gin.Recovery(), AccessLog(deps.Logger))
	InitRoutes(e, deps)
	return e
}

// InitRoutes registers the customer, product and sale endpoints under /api,
// the image directory under /images and a health check.
func InitRoutes(e *gin.Engine, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	g := e.Group("/api")

	(&resource[*sales.Customer, sales.CustomerDTO]{
		path:       "/customers",
		service:    deps.Customers,
		sortFields: sales.CustomerSortFields,
		toDTO:      sales.NewCustomerDTO,
		bind:       bindCustomer,
		logger:     logger.Named("customers"),
	}).register(g)

	products := &resource[*sales.Product, sales.ProductDTO]{
		path:       "/products",
		service:    deps.Products,
		sortFields: sales.ProductSortFields,
		toDTO:      sales.NewProductDTO,
		bind:       bindProduct(deps.Images),
		logger:     logger.Named("products"),
	}
	if deps.Images != nil {
		products.discard = removeImage(deps.Images, logger)
		products.updated = replaceImage(deps.Images, logger)
		products.deleted = removeImage(deps.Images, logger)
		e.Static("/images", deps.Images.Dir())
	}
	products.register(g)

	(&resource[*sales.Sale, sales.SaleDTO]{
		path:       "/sales",
		service:    deps.Sales,
		sortFields: sales.SaleSortFields,
		toDTO:      sales.NewSaleDTO,
		bind:       bindSale,
		logger:     logger.Named("sales"),
	}).register(g)

	e.GET("/health", health(deps.Ping))
}

func bindCustomer(c *gin.Context) (*sales.Customer, error) {
	in, err := bindJSON[sales.SaveCustomer](c)
	if err != nil {
		return nil, err
	}
	return in.ToModel(), nil
}

func bindSale(c *gin.Context) (*sales.Sale, error) {
	in, err := bindJSON[sales.SaveSale](c)
	if err != nil {
		return nil, err
	}
	return in.ToModel(), nil
}

// bindProduct stores the uploaded picture and returns a product pointing at
// the stored file.
func bindProduct(images *sales.ImageStore) binder[*sales.Product] {
	return func(c *gin.Context) (*sales.Product, error) {
		in, err := bindJSON[sales.SaveProduct](c)
		if err != nil {
			return nil, err
		}
		if images == nil {
			return nil, errors.New("image store not configured")
		}

		name, err := images.Save(in.Image)
		if errors.Is(err, sales.ErrInvalidImage) {
			return nil, validationErrors("image", err)
		}
		if err != nil {
			return nil, err
		}
		return in.ToModel(name), nil
	}
}

func removeImage(images *sales.ImageStore, logger *zap.Logger) func(*sales.Product) {
	return func(p *sales.Product) {
		if p == nil {
			return
		}
		if err := images.Remove(p.Image); err != nil {
			logger.Warn("remove image failed", zap.String("image", p.Image), zap.Error(err))
		}
	}
}

// replaceImage removes the picture an update replaced.
func replaceImage(images *sales.ImageStore, logger *zap.Logger) func(before, after *sales.Product) {
	remove := removeImage(images, logger)
	return func(before, after *sales.Product) {
		if before == nil || after == nil || before.Image == after.Image {
			return
		}
		remove(before)
	}
}

func health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				problem(c, http.StatusServiceUnavailable, "", "database unavailable", nil)
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
