// Package state persists the durable singleton of the assistant: settings,
// alert dedup records and the last successful snapshot. Two implementations
// share one interface: Memory for single-instance and tests, Postgres for
// real deployments.
package state

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
)

// docVersion is bumped when the persisted layout changes shape.
const docVersion = 1

type notificationsDoc struct {
	LowStock bool `json:"lowStock"`
	NewOrder bool `json:"newOrder"`
}

// stateDoc is the single structured record written to durable storage.
// Decoding starts from defaults so documents missing newer fields load
// cleanly.
type stateDoc struct {
	Version              int                  `json:"version"`
	NotificationsEnabled notificationsDoc     `json:"notificationsEnabled"`
	LowStockThreshold    int                  `json:"lowStockThreshold"`
	WatchedProductID     *string              `json:"watchedProductId,omitempty"`
	Locale               string               `json:"locale"`
	Currency             string               `json:"currency"`
	AlertRecords         []domain.AlertRecord `json:"alertRecords"`
	Snapshot             *domain.Snapshot     `json:"snapshot,omitempty"`
}

func defaultDoc() stateDoc {
	s := domain.DefaultSettings()
	return stateDoc{
		Version:              docVersion,
		NotificationsEnabled: notificationsDoc{LowStock: s.NotifyLowStock, NewOrder: s.NotifyNewOrders},
		LowStockThreshold:    s.LowStockThreshold,
		Locale:               string(s.Locale),
		Currency:             string(s.Currency),
	}
}

func encodeDoc(settings domain.Settings, records []domain.AlertRecord, snap *domain.Snapshot) ([]byte, error) {
	doc := stateDoc{
		Version: docVersion,
		NotificationsEnabled: notificationsDoc{
			LowStock: settings.NotifyLowStock,
			NewOrder: settings.NotifyNewOrders,
		},
		LowStockThreshold: settings.LowStockThreshold,
		Locale:            string(settings.Locale),
		Currency:          string(settings.Currency),
		AlertRecords:      records,
		Snapshot:          snap,
	}
	if settings.WatchedProductID != nil {
		id := strconv.FormatInt(*settings.WatchedProductID, 10)
		doc.WatchedProductID = &id
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state document: %w", err)
	}
	return raw, nil
}

func decodeDoc(raw []byte) (domain.Settings, []domain.AlertRecord, *domain.Snapshot, error) {
	doc := defaultDoc()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return domain.Settings{}, nil, nil, fmt.Errorf("failed to decode state document: %w", err)
		}
	}

	settings := domain.Settings{
		NotifyLowStock:    doc.NotificationsEnabled.LowStock,
		NotifyNewOrders:   doc.NotificationsEnabled.NewOrder,
		LowStockThreshold: doc.LowStockThreshold,
	}

	if locale, ok := domain.ParseLocale(doc.Locale); ok {
		settings.Locale = locale
	} else {
		settings.Locale = domain.LocaleEnglish
	}
	if currency, ok := domain.ParseCurrency(doc.Currency); ok {
		settings.Currency = currency
	} else {
		settings.Currency = domain.CurrencyUSD
	}
	if doc.WatchedProductID != nil {
		if id, err := strconv.ParseInt(*doc.WatchedProductID, 10, 64); err == nil {
			settings.WatchedProductID = &id
		}
	}
	if settings.LowStockThreshold < 0 {
		settings.LowStockThreshold = domain.DefaultSettings().LowStockThreshold
	}

	return settings, doc.AlertRecords, doc.Snapshot, nil
}
