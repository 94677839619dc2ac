package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductState is the change-relevant slice of a product at one poll tick.
type ProductState struct {
	Name  string          `json:"name"`
	Stock *int            `json:"stock,omitempty"`
	Price decimal.Decimal `json:"price"`
}

// OrderState is the change-relevant slice of an order at one poll tick.
type OrderState struct {
	Status   OrderStatus     `json:"status"`
	Total    decimal.Decimal `json:"total"`
	Customer string          `json:"customer"`
}

// Snapshot is an immutable record of observed store state at one poll tick.
// It is superseded, never mutated; the previous snapshot survives only long
// enough to compute one delta.
type Snapshot struct {
	TakenAt  time.Time             `json:"takenAt"`
	Products map[int64]ProductState `json:"products"`
	Orders   map[int64]OrderState   `json:"orders"`
}

// Delta is the difference between two consecutive snapshots. All slices are
// sorted ascending by ID so downstream output is deterministic. Deltas are
// transient and never persisted.
type Delta struct {
	// Breached holds products that crossed under the low-stock line since
	// the previous snapshot (including products first seen under it).
	Breached []int64
	// Recovered holds products that rose back over the low-stock line.
	Recovered []int64
	// ChangedProducts holds products whose stock or price changed.
	ChangedProducts []int64
	// NewOrders holds order IDs not present in the previous snapshot.
	NewOrders []int64
	// StatusChanged holds orders whose status differs between snapshots.
	StatusChanged []int64
}

// IsEmpty reports whether the delta carries no changes at all.
func (d Delta) IsEmpty() bool {
	return len(d.Breached) == 0 && len(d.Recovered) == 0 &&
		len(d.ChangedProducts) == 0 && len(d.NewOrders) == 0 &&
		len(d.StatusChanged) == 0
}
