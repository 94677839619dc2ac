package domain

import "time"

// SessionState is the closed set of conversational states per admin.
type SessionState string

const (
	SessionIdle                 SessionState = "idle"
	SessionAwaitingListPage     SessionState = "awaiting_list_page"
	SessionAwaitingFieldInput   SessionState = "awaiting_field_input"
	SessionAwaitingConfirmation SessionState = "awaiting_confirmation"
)

// ListKind names a paginated listing an admin is browsing.
type ListKind string

const (
	ListProducts  ListKind = "products"
	ListOrders    ListKind = "orders"
	ListCustomers ListKind = "customers"
)

// InputField names the value a session is waiting for as free text.
type InputField string

const (
	FieldThreshold      InputField = "threshold"
	FieldWatchedProduct InputField = "watch_product"
	FieldCurrency       InputField = "currency"
	FieldPrice          InputField = "price"
	FieldStock          InputField = "stock"
)

// Session is the conversational cursor of one admin. Exactly one session
// exists per admin ID; it soft-resets to Idle after the inactivity window.
type Session struct {
	State     SessionState `json:"state"`
	List      ListKind     `json:"list,omitempty"`
	Offset    int          `json:"offset,omitempty"`
	Target    int64        `json:"target,omitempty"`
	Field     InputField   `json:"field,omitempty"`
	Action    string       `json:"action,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// IdleSession is the initial state for a new or expired admin session.
func IdleSession() Session {
	return Session{State: SessionIdle}
}
