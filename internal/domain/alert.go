package domain

// AlertKind identifies the condition an alert reports.
type AlertKind string

const (
	AlertLowStock          AlertKind = "low_stock"
	AlertNewOrder          AlertKind = "new_order"
	AlertAPIOutage         AlertKind = "api_outage"
	AlertAPIRecovered      AlertKind = "api_recovered"
	AlertCredentialFailure AlertKind = "credential_failure"
)

// Alert is a decided notification, ready for rendering and dispatch.
// Product is populated for low-stock alerts, Order for new-order alerts,
// Reason for outage-class alerts.
type Alert struct {
	Kind    AlertKind
	Subject string
	Product ProductState
	Order   OrderState
	Reason  string
}

// AlertRecord is the edge-trigger marker for one (kind, subject) pair.
// While Active, the condition has fired and must not fire again; it re-arms
// only after the condition clears. Cleared records are retained (Active=false)
// so oscillating conditions leave a visible trace in durable state.
type AlertRecord struct {
	Kind    AlertKind `json:"kind"`
	Subject string    `json:"subject"`
	Active  bool      `json:"active"`
}
