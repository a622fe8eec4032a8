package sales

// MergeCustomer copies the editable customer fields.
func MergeCustomer(existing, incoming *Customer) {
	existing.Name = incoming.Name
	existing.Phone = incoming.Phone
	existing.Company = incoming.Company
}

// MergeProduct copies the editable product fields.
func MergeProduct(existing, incoming *Product) {
	existing.Name = incoming.Name
	existing.Price = incoming.Price
	existing.Image = incoming.Image
}

// MergeSale copies the editable sale fields and replaces the whole item list.
// The store deletes the old items and inserts the new ones on commit, so
// repeated updates never accumulate duplicates.
func MergeSale(existing, incoming *Sale) {
	existing.Date = incoming.Date
	existing.Total = incoming.Total
	existing.CustomerID = incoming.CustomerID
	existing.Customer = nil

	items := make([]*LineItem, 0, len(incoming.Items))
	for _, it := range incoming.Items {
		if it == nil {
			continue
		}
		items = append(items, &LineItem{
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			ProductID: it.ProductID,
			SaleID:    existing.ID,
		})
	}
	existing.Items = items
}
