package sales

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Entity names, used as cache namespaces.
const (
	CustomerEntity = "customer"
	ProductEntity  = "product"
	SaleEntity     = "sale"
)

type Customer struct {
	bun.BaseModel `bun:"table:clientes,alias:c"`

	ID      int    `bun:"id,pk,autoincrement" json:"id"`
	Name    string `bun:"nome,notnull,type:varchar(100)" json:"name"`
	Phone   string `bun:"telefone,notnull,type:varchar(45)" json:"phone"`
	Company string `bun:"empresa,notnull,type:varchar(100)" json:"company"`
}

func (c *Customer) GetID() int { return c.ID }

type Product struct {
	bun.BaseModel `bun:"table:produtos,alias:p"`

	ID    int             `bun:"id,pk,autoincrement" json:"id"`
	Name  string          `bun:"nome,notnull,type:varchar(100)" json:"name"`
	Image string          `bun:"imagem,type:varchar(255)" json:"image"`
	Price decimal.Decimal `bun:"valor,notnull,type:decimal(10,2)" json:"price"`
}

func (p *Product) GetID() int { return p.ID }

// Sale owns its line items. Customer and each item's Product are read-only
// projections loaded by the store; they are never written through the sale.
type Sale struct {
	bun.BaseModel `bun:"table:vendas,alias:v"`

	ID         int             `bun:"id,pk,autoincrement" json:"id"`
	Date       time.Time       `bun:"data,notnull" json:"date"`
	Total      decimal.Decimal `bun:"valor_total,notnull,type:decimal(10,2)" json:"total"`
	CustomerID int             `bun:"cliente_id,notnull" json:"customerId"`

	Customer *Customer  `bun:"rel:belongs-to,join:cliente_id=id" json:"customer,omitempty"`
	Items    []*LineItem `bun:"rel:has-many,join:id=venda_id" json:"items"`
}

func (s *Sale) GetID() int { return s.ID }

type LineItem struct {
	bun.BaseModel `bun:"table:itens,alias:i"`

	ID        int             `bun:"id,pk,autoincrement" json:"id"`
	Quantity  int             `bun:"quantidade,notnull" json:"quantity"`
	UnitPrice decimal.Decimal `bun:"unitario,notnull,type:decimal(10,2)" json:"unitPrice"`
	ProductID int             `bun:"produto_id,notnull" json:"productId"`
	SaleID    int             `bun:"venda_id,notnull" json:"saleId"`

	Product *Product `bun:"rel:belongs-to,join:produto_id=id" json:"product,omitempty"`
}

func (i *LineItem) GetID() int { return i.ID }

// Total is quantity times unit price.
func (i *LineItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
