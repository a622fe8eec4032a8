package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-sales-api/internal/bunstore"
	"github.com/goliatone/go-sales-api/sales"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// TestDSN is a private in-memory sqlite database with foreign keys on.
const TestDSN = "file::memory:?_foreign_keys=on"

// NewTestDB opens an in-memory sqlite database with the sales schema. It is
// closed when the test ends.
func NewTestDB(t testing.TB) *bun.DB {
	t.Helper()

	ctx := context.Background()
	db, err := bunstore.Open(ctx, bunstore.DatabaseConfig{Driver: bunstore.DriverSQLite, DSN: TestDSN})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sales.CreateSchema(ctx, db); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

// SeedCustomers inserts "Cliente 1" and "Cliente 2" with ids 1 and 2.
func SeedCustomers(t testing.TB, db bun.IDB) []*sales.Customer {
	t.Helper()

	customers := []*sales.Customer{
		{Name: "Cliente 1", Phone: "11987654321", Company: "Empresa 1"},
		{Name: "Cliente 2", Phone: "11987654322", Company: "Empresa 2"},
	}
	insert(t, db, &customers)
	return customers
}

// SeedProducts inserts "Produto 1" (100) and "Produto 2" (200) with ids 1 and 2.
func SeedProducts(t testing.TB, db bun.IDB) []*sales.Product {
	t.Helper()

	products := []*sales.Product{
		{Name: "Produto 1", Price: decimal.NewFromInt(100), Image: "Imagem1.png"},
		{Name: "Produto 2", Price: decimal.NewFromInt(200), Image: "Imagem2.png"},
	}
	insert(t, db, &products)
	return products
}

// SeedSale inserts a sale for customerID with one item per product id.
func SeedSale(t testing.TB, db bun.IDB, customerID int, productIDs ...int) *sales.Sale {
	t.Helper()

	sale := &sales.Sale{
		Date:       time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Total:      decimal.Zero,
		CustomerID: customerID,
	}
	for _, pid := range productIDs {
		item := &sales.LineItem{Quantity: 1, UnitPrice: decimal.NewFromInt(10), ProductID: pid}
		sale.Items = append(sale.Items, item)
		sale.Total = sale.Total.Add(item.Total())
	}

	insert(t, db, sale)
	if len(sale.Items) > 0 {
		for _, it := range sale.Items {
			it.SaleID = sale.ID
		}
		insert(t, db, &sale.Items)
	}
	return sale
}

func insert(t testing.TB, db bun.IDB, model any) {
	t.Helper()
	if _, err := db.NewInsert().Model(model).Exec(context.Background()); err != nil {
		t.Fatalf("failed to seed %T: %v", model, err)
	}
}
