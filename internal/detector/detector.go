// Package detector observes store state and computes deltas between
// consecutive snapshots. Diff is pure and order-insensitive; fetching
// failures are left to the caller to classify.
package detector

import (
	"context"
	"sort"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/jonboulle/clockwork"
)

type Detector struct {
	store        domain.StoreClient
	clock        clockwork.Clock
	productLimit int
	orderLimit   int
}

func New(store domain.StoreClient, clock clockwork.Clock, productLimit, orderLimit int) *Detector {
	if productLimit <= 0 {
		productLimit = 50
	}
	if orderLimit <= 0 {
		orderLimit = 10
	}
	return &Detector{store: store, clock: clock, productLimit: productLimit, orderLimit: orderLimit}
}

// Observe fetches a fresh snapshot of change-relevant store state.
func (d *Detector) Observe(ctx context.Context) (*domain.Snapshot, error) {
	products, err := d.store.Products(ctx, domain.ListParams{Limit: d.productLimit})
	if err != nil {
		return nil, err
	}

	orders, err := d.store.Orders(ctx, domain.ListParams{Limit: d.orderLimit})
	if err != nil {
		return nil, err
	}

	snap := &domain.Snapshot{
		TakenAt:  d.clock.Now(),
		Products: make(map[int64]domain.ProductState, len(products)),
		Orders:   make(map[int64]domain.OrderState, len(orders)),
	}
	for _, p := range products {
		snap.Products[p.ID] = domain.ProductState{Name: p.Name, Stock: p.Stock, Price: p.Price}
	}
	for _, o := range orders {
		snap.Orders[o.ID] = domain.OrderState{Status: o.Status, Total: o.Total, Customer: o.Customer}
	}
	return snap, nil
}

// Diff computes the delta between two consecutive snapshots. A nil prev
// (cold start) yields an empty delta: the first observation establishes a
// baseline and must not alert on pre-existing conditions.
//
// The low-stock line is stock <= threshold. The watched product additionally
// breaches on any stock decrease, threshold ignored, and recovers only once
// it is back over the line.
func Diff(prev, next *domain.Snapshot, threshold int, watched *int64) domain.Delta {
	var d domain.Delta
	if prev == nil || next == nil {
		return d
	}

	for id, ns := range next.Products {
		ps, existed := prev.Products[id]

		nextBelow := below(ns, threshold)
		prevBelow := existed && below(ps, threshold)
		isWatched := watched != nil && *watched == id

		breached := nextBelow && (!existed || !prevBelow)
		recovered := existed && prevBelow && !nextBelow

		if isWatched && existed && ns.Stock != nil && ps.Stock != nil {
			if *ns.Stock < *ps.Stock {
				breached = true
			}
			if *ns.Stock > *ps.Stock && !nextBelow {
				recovered = true
			}
		}

		if breached {
			d.Breached = append(d.Breached, id)
		} else if recovered {
			d.Recovered = append(d.Recovered, id)
		}

		if existed && productChanged(ps, ns) {
			d.ChangedProducts = append(d.ChangedProducts, id)
		}
	}

	for id, ns := range next.Orders {
		ps, existed := prev.Orders[id]
		if !existed {
			d.NewOrders = append(d.NewOrders, id)
			continue
		}
		if ps.Status != ns.Status {
			d.StatusChanged = append(d.StatusChanged, id)
		}
	}

	for _, s := range [][]int64{d.Breached, d.Recovered, d.ChangedProducts, d.NewOrders, d.StatusChanged} {
		sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	}
	return d
}

func below(s domain.ProductState, threshold int) bool {
	return s.Stock != nil && *s.Stock <= threshold
}

func productChanged(prev, next domain.ProductState) bool {
	if !prev.Price.Equal(next.Price) {
		return true
	}
	switch {
	case prev.Stock == nil && next.Stock == nil:
		return false
	case prev.Stock == nil || next.Stock == nil:
		return true
	default:
		return *prev.Stock != *next.Stock
	}
}
