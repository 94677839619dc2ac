package woo

import (
	"strings"
	"time"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/shopspring/decimal"
)

// WooCommerce serialises money as strings and timestamps without a zone.

type wireAttribute struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

type wireProduct struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	SKU           string          `json:"sku"`
	Price         string          `json:"price"`
	StockQuantity *int            `json:"stock_quantity"`
	Attributes    []wireAttribute `json:"attributes"`
}

type wireName struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type wireAddress struct {
	Address1 string `json:"address_1"`
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
}

type wireLineItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total"`
}

type wireOrder struct {
	ID          int64          `json:"id"`
	Status      string         `json:"status"`
	Total       string         `json:"total"`
	Billing     wireName       `json:"billing"`
	Shipping    wireAddress    `json:"shipping"`
	LineItems   []wireLineItem `json:"line_items"`
	DateCreated string         `json:"date_created"`
}

type wireCustomer struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	TotalSpent  string `json:"total_spent"`
	OrdersCount int    `json:"orders_count"`
}

func parseMoney(op, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &domain.StoreError{Kind: domain.KindMalformed, Op: op, Err: err}
	}
	return d, nil
}

func (w wireProduct) convert(op string) (domain.Product, error) {
	price, err := parseMoney(op, w.Price)
	if err != nil {
		return domain.Product{}, err
	}

	attrs := make([]domain.Attribute, 0, len(w.Attributes))
	for _, a := range w.Attributes {
		attrs = append(attrs, domain.Attribute{Name: a.Name, Options: a.Options})
	}

	return domain.Product{
		ID:         w.ID,
		Name:       w.Name,
		Type:       w.Type,
		SKU:        w.SKU,
		Price:      price,
		Stock:      w.StockQuantity,
		Attributes: attrs,
	}, nil
}

func convertProducts(op string, wire []wireProduct) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(wire))
	for _, w := range wire {
		p, err := w.convert(op)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (w wireOrder) convert(op string) (domain.Order, error) {
	total, err := parseMoney(op, w.Total)
	if err != nil {
		return domain.Order{}, err
	}

	items := make([]domain.LineItem, 0, len(w.LineItems))
	for _, li := range w.LineItems {
		lineTotal, err := parseMoney(op, li.Total)
		if err != nil {
			return domain.Order{}, err
		}
		items = append(items, domain.LineItem{
			ProductID: li.ProductID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			Total:     lineTotal,
		})
	}

	status, ok := domain.ParseOrderStatus(w.Status)
	if !ok {
		// The store knows statuses this assistant does not manage
		// (on-hold, refunded); carry them through untyped.
		status = domain.OrderStatus(w.Status)
	}

	return domain.Order{
		ID:        w.ID,
		Status:    status,
		Total:     total,
		Customer:  joinName(w.Billing.FirstName, w.Billing.LastName),
		Shipping:  formatAddress(w.Shipping),
		CreatedAt: parseDate(w.DateCreated),
		Items:     items,
	}, nil
}

func convertOrders(op string, wire []wireOrder) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(wire))
	for _, w := range wire {
		o, err := w.convert(op)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (w wireCustomer) convert(op string) (domain.Customer, error) {
	spent, err := parseMoney(op, w.TotalSpent)
	if err != nil {
		return domain.Customer{}, err
	}
	return domain.Customer{
		ID:         w.ID,
		Name:       joinName(w.FirstName, w.LastName),
		Email:      w.Email,
		TotalSpent: spent,
		OrderCount: w.OrdersCount,
	}, nil
}

func joinName(first, last string) string {
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		return "Unknown"
	}
	return name
}

func formatAddress(a wireAddress) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Address1, a.City, strings.TrimSpace(a.State + " " + a.Postcode)} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}

func parseDate(raw string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
