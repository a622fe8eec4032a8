package sales

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// SaveCustomer is the create/update payload for a customer.
type SaveCustomer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

func (d SaveCustomer) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&d.Phone, validation.Required, validation.RuneLength(1, 45)),
		validation.Field(&d.Company, validation.Required, validation.RuneLength(1, 100)),
	)
}

func (d SaveCustomer) ToModel() *Customer {
	return &Customer{Name: d.Name, Phone: d.Phone, Company: d.Company}
}

type CustomerDTO struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

func NewCustomerDTO(c *Customer) CustomerDTO {
	if c == nil {
		return CustomerDTO{}
	}
	return CustomerDTO{ID: c.ID, Name: c.Name, Phone: c.Phone, Company: c.Company}
}

// SaveProduct is the create/update payload for a product. Image carries the
// picture as a base64 data URI; it is stored and replaced by a filename.
type SaveProduct struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

func (d SaveProduct) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&d.Price, validation.By(positiveDecimal)),
		validation.Field(&d.Image, validation.Required, validation.By(imageDataURI)),
	)
}

// ToModel builds the product with the filename returned by the image store.
func (d SaveProduct) ToModel(imageName string) *Product {
	return &Product{Name: d.Name, Price: d.Price, Image: imageName}
}

type ProductDTO struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

func NewProductDTO(p *Product) ProductDTO {
	if p == nil {
		return ProductDTO{}
	}
	return ProductDTO{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image}
}

type SaveLineItem struct {
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ProductID int             `json:"productId"`
}

func (d SaveLineItem) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&d.UnitPrice, validation.By(nonNegativeDecimal)),
		validation.Field(&d.ProductID, validation.Required, validation.Min(1)),
	)
}

// SaveSale is the create/update payload for a sale and its items.
type SaveSale struct {
	Date       time.Time       `json:"date"`
	Total      decimal.Decimal `json:"total"`
	CustomerID int             `json:"customerId"`
	Items      []SaveLineItem  `json:"items"`
}

func (d SaveSale) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Date, validation.Required),
		validation.Field(&d.Total, validation.By(nonNegativeDecimal)),
		validation.Field(&d.CustomerID, validation.Required, validation.Min(1)),
		validation.Field(&d.Items, validation.Required),
	)
}

func (d SaveSale) ToModel() *Sale {
	items := make([]*LineItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, &LineItem{
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			ProductID: it.ProductID,
		})
	}
	return &Sale{
		Date:       d.Date,
		Total:      d.Total,
		CustomerID: d.CustomerID,
		Items:      items,
	}
}

type LineItemDTO struct {
	ID          int             `json:"id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
	ProductID   int             `json:"productId"`
	ProductName string          `json:"productName"`
}

type SaleDTO struct {
	ID           int             `json:"id"`
	Date         time.Time       `json:"date"`
	Total        decimal.Decimal `json:"total"`
	CustomerID   int             `json:"customerId"`
	CustomerName string          `json:"customerName"`
	Items        []LineItemDTO   `json:"items"`
}

func NewSaleDTO(s *Sale) SaleDTO {
	if s == nil {
		return SaleDTO{}
	}

	dto := SaleDTO{
		ID:         s.ID,
		Date:       s.Date,
		Total:      s.Total,
		CustomerID: s.CustomerID,
		Items:      make([]LineItemDTO, 0, len(s.Items)),
	}
	if s.Customer != nil {
		dto.CustomerName = s.Customer.Name
	}

	for _, it := range s.Items {
		if it == nil {
			continue
		}
		item := LineItemDTO{
			ID:        it.ID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.Total(),
			ProductID: it.ProductID,
		}
		if it.Product != nil {
			item.ProductName = it.Product.Name
		}
		dto.Items = append(dto.Items, item)
	}
	return dto
}

// MapSlice applies fn to every element of in.
func MapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

func positiveDecimal(value any) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal")
	}
	if !d.IsPositive() {
		return errors.New("must be greater than 0")
	}
	return nil
}

func nonNegativeDecimal(value any) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal")
	}
	if d.IsNegative() {
		return errors.New("must be no less than 0")
	}
	return nil
}

func imageDataURI(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, _, err := ParseDataURI(s); err != nil {
		return errors.New("must be a base64 encoded image data URI")
	}
	return nil
}
