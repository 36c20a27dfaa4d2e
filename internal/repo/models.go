package repo

import "time"

// Item is a catalog item priced from its cost basis. CostBasis is expressed
// in the store's base currency; the sell price is derived at read time.
type Item struct {
	ID            string
	Name          string
	Slug          string
	Category      string
	CostBasis     float64
	MarkupPercent float64
	Stock         int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BundleContent is one entry of a bundle's content list.
type BundleContent struct {
	ItemID string
	Qty    int
}

// Bundle groups catalog items sold as a single product.
type Bundle struct {
	ID        string
	Name      string
	Slug      string
	Category  string
	Contents  []BundleContent
	CreatedAt time.Time
}

// Extra is a fixed-price add-on; its price is already in display currency.
type Extra struct {
	ID    string
	Name  string
	Price int64
}

// Offer is a stored promotional offer. Discount fields are a flat projection
// of the promo tagged union; Kind decides which ones are meaningful.
type Offer struct {
	ID        string
	Name      string
	Kind      string
	Scope     string
	Target    string
	Percent   float64
	Amount    int64
	BuyQty    int
	GetQty    int
	ExpiresAt time.Time
	Active    bool
	CreatedAt time.Time
}

// StoreSettings is the single process-wide settings record.
type StoreSettings struct {
	ExchangeRate float64
	Currency     string
	UpdatedAt    time.Time
}

// Order is a persisted checkout result.
type Order struct {
	ID             string
	Status         string
	Currency       string
	Subtotal       int64
	Discount       int64
	Total          int64
	AppliedOfferID string
	CreatedAt      time.Time
}

// OrderLine is one priced line of an order.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Name      string
	Category  string
	Qty       int
	UnitPrice int64
	Subtotal  int64
}

// DomainEvent is a persisted event emitted through the bus.
type DomainEvent struct {
	ID          string
	Topic       string
	AggregateID string
	Payload     []byte
	OccurredAt  time.Time
}
