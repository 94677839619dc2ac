// Package policy decides which alerts fire for a given delta. Firing is
// edge-triggered: an (kind, subject) pair that already fired stays silent
// until the condition clears and re-triggers. Decisions are deterministic:
// low stock by ascending product ID, then new orders by ascending order ID.
package policy

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
)

// outageSubject keys the store-wide availability records.
const outageSubject = "store"

type recordKey struct {
	kind    domain.AlertKind
	subject string
}

type Engine struct {
	mu              sync.Mutex
	outageThreshold int
	records         map[recordKey]*domain.AlertRecord
	failures        int
}

// NewEngine restores an engine from persisted alert records so restart does
// not re-fire conditions that were already active before shutdown.
func NewEngine(outageThreshold int, history []domain.AlertRecord) *Engine {
	if outageThreshold < 1 {
		outageThreshold = 3
	}
	e := &Engine{
		outageThreshold: outageThreshold,
		records:         make(map[recordKey]*domain.AlertRecord, len(history)),
	}
	for _, rec := range history {
		r := rec
		e.records[recordKey{r.Kind, r.Subject}] = &r
	}
	return e
}

// Evaluate turns a delta into the alerts that fire this tick, updating the
// dedup records. snap provides the product/order details for the alerts.
func (e *Engine) Evaluate(delta domain.Delta, snap *domain.Snapshot, settings domain.Settings) []domain.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	var alerts []domain.Alert

	for _, id := range delta.Breached {
		subject := strconv.FormatInt(id, 10)
		key := recordKey{domain.AlertLowStock, subject}
		if rec, ok := e.records[key]; ok && rec.Active {
			continue
		}
		e.records[key] = &domain.AlertRecord{Kind: domain.AlertLowStock, Subject: subject, Active: true}

		if settings.NotifyLowStock {
			alerts = append(alerts, domain.Alert{
				Kind:    domain.AlertLowStock,
				Subject: subject,
				Product: snap.Products[id],
			})
		}
	}

	for _, id := range delta.Recovered {
		key := recordKey{domain.AlertLowStock, strconv.FormatInt(id, 10)}
		if rec, ok := e.records[key]; ok {
			rec.Active = false
		}
	}

	if settings.NotifyNewOrders {
		// Order IDs are unique and never reused, so new-order alerts
		// need no dedup record.
		for _, id := range delta.NewOrders {
			alerts = append(alerts, domain.Alert{
				Kind:    domain.AlertNewOrder,
				Subject: strconv.FormatInt(id, 10),
				Order:   snap.Orders[id],
			})
		}
	}

	return alerts
}

// RecordFailure feeds one failed poll into the outage tracking. It returns
// at most one alert: ApiOutage when consecutive transient failures reach the
// threshold, or CredentialFailure the first time credentials are rejected.
func (e *Engine) RecordFailure(kind domain.StoreErrorKind, cause error) []domain.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	reason := ""
	if cause != nil {
		reason = cause.Error()
	}

	if kind == domain.KindUnauthorized {
		key := recordKey{domain.AlertCredentialFailure, outageSubject}
		if rec, ok := e.records[key]; ok && rec.Active {
			return nil
		}
		e.records[key] = &domain.AlertRecord{Kind: domain.AlertCredentialFailure, Subject: outageSubject, Active: true}
		return []domain.Alert{{Kind: domain.AlertCredentialFailure, Subject: outageSubject, Reason: reason}}
	}

	e.failures++
	if e.failures < e.outageThreshold {
		return nil
	}

	key := recordKey{domain.AlertAPIOutage, outageSubject}
	if rec, ok := e.records[key]; ok && rec.Active {
		return nil
	}
	e.records[key] = &domain.AlertRecord{Kind: domain.AlertAPIOutage, Subject: outageSubject, Active: true}
	return []domain.Alert{{
		Kind:    domain.AlertAPIOutage,
		Subject: outageSubject,
		Reason:  fmt.Sprintf("%d consecutive fetch failures (last: %s)", e.failures, reason),
	}}
}

// RecordSuccess resets the failure counter and clears the outage-class
// records. It returns an ApiRecovered alert when an outage was active.
func (e *Engine) RecordSuccess() []domain.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.failures = 0

	var alerts []domain.Alert
	if rec, ok := e.records[recordKey{domain.AlertAPIOutage, outageSubject}]; ok && rec.Active {
		rec.Active = false
		alerts = append(alerts, domain.Alert{Kind: domain.AlertAPIRecovered, Subject: outageSubject})
	}
	if rec, ok := e.records[recordKey{domain.AlertCredentialFailure, outageSubject}]; ok && rec.Active {
		rec.Active = false
	}
	return alerts
}

// Records exports the dedup state for persistence, sorted for stable output.
func (e *Engine) Records() []domain.AlertRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.AlertRecord, 0, len(e.records))
	for _, rec := range e.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return subjectLess(out[i].Subject, out[j].Subject)
	})
	return out
}

// PruneMissing drops low-stock records for products no longer observed, so
// deleted products do not accumulate stale state.
func (e *Engine) PruneMissing(snap *domain.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for key := range e.records {
		if key.kind != domain.AlertLowStock {
			continue
		}
		id, err := strconv.ParseInt(key.subject, 10, 64)
		if err != nil {
			continue
		}
		if _, ok := snap.Products[id]; !ok {
			delete(e.records, key)
		}
	}
}

func subjectLess(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
