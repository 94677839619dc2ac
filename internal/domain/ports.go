package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// StoreClient is the typed façade over the external store API. Calls either
// succeed with typed data or fail with a *StoreError; no retry logic lives
// behind this interface.
type StoreClient interface {
	Products(ctx context.Context, page ListParams) ([]Product, error)
	SearchProducts(ctx context.Context, query string) ([]Product, error)
	Product(ctx context.Context, id int64) (*Product, error)
	Orders(ctx context.Context, page ListParams) ([]Order, error)
	Order(ctx context.Context, id int64) (*Order, error)
	Customers(ctx context.Context, page ListParams) ([]Customer, error)
	Customer(ctx context.Context, id int64) (*Customer, error)
	CustomerOrders(ctx context.Context, customerID int64) ([]Order, error)
	UpdateStock(ctx context.Context, productID int64, qty int) error
	UpdatePrice(ctx context.Context, productID int64, price decimal.Decimal) error
	UpdateOrderStatus(ctx context.Context, orderID int64, status OrderStatus) error
}

// Button is one inline keyboard button; Data is an opaque callback token.
type Button struct {
	Label string
	Data  string
}

// Message is one outbound chat message with an optional inline keyboard.
type Message struct {
	Text     string
	Keyboard [][]Button
}

// Update is one inbound chat event. Callback is set for button presses and
// carries the opaque token; Text is set for commands and free text.
type Update struct {
	Sender   int64
	Name     string
	Chat     int64
	Text     string
	Callback string
}

// Transport delivers messages to the chat platform.
type Transport interface {
	Send(ctx context.Context, chatID int64, msg Message) error
}

// StateRepository persists the durable singleton state: settings, alert
// records and the last successful snapshot. Writes are atomic from the
// caller's perspective.
type StateRepository interface {
	Settings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, patch SettingsPatch) (Settings, error)
	AlertRecords(ctx context.Context) ([]AlertRecord, error)
	SaveAlertRecords(ctx context.Context, records []AlertRecord) error
	Snapshot(ctx context.Context) (*Snapshot, error)
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
}

// SessionRepository owns the per-admin conversational sessions. Get returns
// an idle session for unknown or expired admins.
type SessionRepository interface {
	Get(ctx context.Context, adminID int64) (Session, error)
	Put(ctx context.Context, adminID int64, s Session) error
	Delete(ctx context.Context, adminID int64) error
}
