package sales

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-sales-api/internal/bunstore"
	"github.com/uptrace/bun"
)

// Sort allow-lists: public field name to column.
var (
	CustomerSortFields = map[string]string{
		"id":      "id",
		"name":    "nome",
		"phone":   "telefone",
		"company": "empresa",
	}
	ProductSortFields = map[string]string{
		"id":    "id",
		"name":  "nome",
		"price": "valor",
	}
	SaleSortFields = map[string]string{
		"id":         "id",
		"date":       "data",
		"total":      "valor_total",
		"customerid": "cliente_id",
	}
)

// SortFieldNames lists the keys of an allow-list in a stable order.
func SortFieldNames(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func CustomerHandlers() bunstore.ModelHandlers[*Customer] {
	return bunstore.ModelHandlers[*Customer]{
		Name:        CustomerEntity,
		NewRecord:   func() *Customer { return &Customer{} },
		SortColumns: CustomerSortFields,
	}
}

func ProductHandlers() bunstore.ModelHandlers[*Product] {
	return bunstore.ModelHandlers[*Product]{
		Name:        ProductEntity,
		NewRecord:   func() *Product { return &Product{} },
		SortColumns: ProductSortFields,
	}
}

// SaleHandlers loads the customer and item projections with every read and
// writes the items in the same transaction as the sale.
func SaleHandlers() bunstore.ModelHandlers[*Sale] {
	return bunstore.ModelHandlers[*Sale]{
		Name:        SaleEntity,
		NewRecord:   func() *Sale { return &Sale{} },
		SortColumns: SaleSortFields,
		Query:       withSaleRelations,
		AfterInsert: insertItems,
		AfterUpdate: func(ctx context.Context, db bun.IDB, sale *Sale) error {
			if err := deleteItems(ctx, db, sale); err != nil {
				return err
			}
			if err := insertItems(ctx, db, sale); err != nil {
				return err
			}
			return reloadSale(ctx, db, sale)
		},
		BeforeDelete: deleteItems,
	}
}

func withSaleRelations(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Customer").
		Relation("Items", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Relation("Product").OrderExpr("?TableAlias.id ASC")
		})
}

func insertItems(ctx context.Context, db bun.IDB, sale *Sale) error {
	if len(sale.Items) == 0 {
		return nil
	}
	for _, it := range sale.Items {
		it.ID = 0
		it.SaleID = sale.ID
	}
	if _, err := db.NewInsert().Model(&sale.Items).Exec(ctx); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

func deleteItems(ctx context.Context, db bun.IDB, sale *Sale) error {
	_, err := db.NewDelete().
		Model((*LineItem)(nil)).
		Where("venda_id = ?", sale.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	return nil
}

// reloadSale refreshes the projections after an update, inside the transaction.
func reloadSale(ctx context.Context, db bun.IDB, sale *Sale) error {
	fresh := &Sale{}
	err := withSaleRelations(db.NewSelect().Model(fresh)).
		Where("?TableAlias.id = ?", sale.ID).
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("reload sale: %w", err)
	}
	*sale = *fresh
	return nil
}

// Repositories groups the store for each entity.
type Repositories struct {
	Customers *bunstore.Repository[*Customer]
	Products  *bunstore.Repository[*Product]
	Sales     *bunstore.Repository[*Sale]
}

func NewRepositories(db bun.IDB) Repositories {
	return Repositories{
		Customers: bunstore.NewRepository(db, CustomerHandlers()),
		Products:  bunstore.NewRepository(db, ProductHandlers()),
		Sales:     bunstore.NewRepository(db, SaleHandlers()),
	}
}

// CreateSchema creates clientes, produtos, vendas and itens if missing.
// Items cascade with their sale.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	return bunstore.CreateTables(ctx, db,
		bunstore.Table{Model: (*Customer)(nil)},
		bunstore.Table{Model: (*Product)(nil)},
		bunstore.Table{
			Model:       (*Sale)(nil),
			ForeignKeys: []string{`("cliente_id") REFERENCES "clientes" ("id")`},
		},
		bunstore.Table{
			Model: (*LineItem)(nil),
			ForeignKeys: []string{
				`("produto_id") REFERENCES "produtos" ("id")`,
				`("venda_id") REFERENCES "vendas" ("id") ON DELETE CASCADE`,
			},
		},
	)
}
