package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order as the store reports it.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// ParseOrderStatus validates a user-supplied status string.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderPending, OrderProcessing, OrderCompleted, OrderCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// OrderStatuses lists all assignable statuses in display order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderPending, OrderProcessing, OrderCompleted, OrderCancelled}
}

type Attribute struct {
	Name    string
	Options []string
}

// Product is the store's view of a product. Stock is nil when the store does
// not manage inventory for it.
type Product struct {
	ID         int64
	Name       string
	Type       string
	SKU        string
	Price      decimal.Decimal
	Stock      *int
	Attributes []Attribute
}

type LineItem struct {
	ProductID int64
	Name      string
	Quantity  int
	Total     decimal.Decimal
}

type Order struct {
	ID        int64
	Status    OrderStatus
	Total     decimal.Decimal
	Customer  string
	Shipping  string
	CreatedAt time.Time
	Items     []LineItem
}

type Customer struct {
	ID         int64
	Name       string
	Email      string
	TotalSpent decimal.Decimal
	OrderCount int
}

// ListParams selects a window of a paginated store listing.
type ListParams struct {
	Offset int
	Limit  int
}
