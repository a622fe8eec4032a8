package di

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-sales-api/cache"
	"github.com/goliatone/go-sales-api/config"
	"github.com/goliatone/go-sales-api/crud"
	"github.com/goliatone/go-sales-api/internal/bunstore"
	"github.com/goliatone/go-sales-api/pkg/testsupport"
	"github.com/goliatone/go-sales-api/sales"
)

func testConfig(t testing.TB) *config.Config {
	t.Helper()
	return &config.Config{
		Env:      config.EnvDevelopment,
		Addr:     ":0",
		LogLevel: "info",
		Database: bunstore.DatabaseConfig{Driver: bunstore.DriverSQLite, DSN: testsupport.TestDSN},
		Cache:    cache.DefaultConfig(),
		ImageDir: t.TempDir(),
	}
}

func newTestContainer(t testing.TB, cfg *config.Config) *Container {
	t.Helper()

	container, err := NewContainer(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	t.Cleanup(func() { container.Close() })
	return container
}

func TestNewContainer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Capacity = 500
	cfg.Cache.DefaultSlidingExpiration = time.Minute

	container := newTestContainer(t, cfg)

	if container.DB() == nil {
		t.Fatal("Container should have a database handle")
	}
	if container.CacheService() == nil || !container.CacheService().IsEnabled() {
		t.Error("Container should have an enabled cache service")
	}
	if container.KeySerializer() == nil {
		t.Error("Container should have a non-nil key serializer")
	}
	if container.UnitOfWork() == nil {
		t.Error("Container should have a unit of work")
	}
	if container.Customers() == nil || container.Products() == nil || container.Sales() == nil {
		t.Error("Container should build every entity service")
	}
	if container.Images().Dir() != cfg.ImageDir {
		t.Errorf("Expected image dir %q, got %q", cfg.ImageDir, container.Images().Dir())
	}

	if got := container.Config().Cache.Capacity; got != 500 {
		t.Errorf("Expected capacity 500, got %d", got)
	}
}

func TestNewContainer_CreatesSchema(t *testing.T) {
	container := newTestContainer(t, testConfig(t))

	resp := container.Customers().ListPaged(context.Background(), crud.PagedRequest{})
	if !resp.Success {
		t.Fatalf("Expected empty listing, got %s: %s", resp.Error, resp.Message)
	}
	if resp.Model.TotalCount != 0 {
		t.Errorf("Expected no customers, got %d", resp.Model.TotalCount)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"bad driver", func(c *config.Config) { c.Database.Driver = "oracle" }, "DB_DRIVER"},
		{"bad cache", func(c *config.Config) { c.Cache.NumShards = 0 }, "CACHE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)

			_, err := NewContainer(context.Background(), cfg, nil)

			var cfgErr *config.Error
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected *config.Error, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestContainerSingletonBehavior(t *testing.T) {
	container := newTestContainer(t, testConfig(t))

	if container.CacheService() != container.CacheService() {
		t.Error("CacheService() should return the same instance")
	}
	if container.Customers() != container.Customers() {
		t.Error("Customers() should return the same instance")
	}

	deps := container.APIDependencies()
	if deps.Customers != container.Customers() || deps.Sales != container.Sales() {
		t.Error("APIDependencies should share the container services")
	}
	if deps.Ping == nil {
		t.Fatal("APIDependencies should expose a database ping")
	}
	if err := deps.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
}

func TestKeySerializerIntegration(t *testing.T) {
	container := newTestContainer(t, testConfig(t))
	serializer := container.KeySerializer()

	key := serializer.SerializeKey(sales.CustomerEntity, 42)
	if key != "customer::42" {
		t.Errorf("Expected customer::42, got %s", key)
	}

	paged := serializer.SerializeKey(sales.SaleEntity, "paged", 1, 10, "id", "asc")
	if paged != "sale::paged::1::10::id::asc" {
		t.Errorf("Unexpected paged key %s", paged)
	}
}

func TestNewCrudService(t *testing.T) {
	container := newTestContainer(t, testConfig(t))
	testsupport.SeedCustomers(t, container.DB())

	svc := NewCrudService[*sales.Customer](container, container.Repositories().Customers,
		crud.WithEntityName[*sales.Customer]("client"),
	)

	if svc.Name() != "client" {
		t.Errorf("Expected entity name client, got %s", svc.Name())
	}

	resp := svc.FindByID(context.Background(), 2)
	if !resp.Success || resp.Model.Name != "Cliente 2" {
		t.Fatalf("Unexpected response %+v", resp)
	}

	if _, ok := container.CacheService().Get(context.Background(), "client::2"); !ok {
		t.Error("Expected the read to be cached under client::2")
	}
}

func TestClose(t *testing.T) {
	container, err := NewContainer(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	if err := container.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := container.DB().PingContext(context.Background()); err == nil {
		t.Error("Expected ping on a closed database to fail")
	}
}
