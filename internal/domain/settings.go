package domain

// Locale selects the message catalog used for replies and alerts.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleFarsi   Locale = "fa"
)

// ParseLocale validates a locale string.
func ParseLocale(s string) (Locale, bool) {
	switch Locale(s) {
	case LocaleEnglish, LocaleFarsi:
		return Locale(s), true
	}
	return "", false
}

// Currency is the display currency for prices and totals.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyIRR Currency = "IRR"
	CurrencyIRT Currency = "IRT"
)

// ParseCurrency validates a currency code.
func ParseCurrency(s string) (Currency, bool) {
	switch Currency(s) {
	case CurrencyUSD, CurrencyEUR, CurrencyIRR, CurrencyIRT:
		return Currency(s), true
	}
	return "", false
}

// Symbol returns the display symbol for the currency.
func (c Currency) Symbol() string {
	switch c {
	case CurrencyUSD:
		return "$"
	case CurrencyEUR:
		return "€"
	case CurrencyIRR:
		return "IRR"
	case CurrencyIRT:
		return "تومان"
	default:
		return "$"
	}
}

// Settings is the durable singleton configuring notifications and display.
type Settings struct {
	NotifyLowStock    bool
	NotifyNewOrders   bool
	LowStockThreshold int
	WatchedProductID  *int64
	Locale            Locale
	Currency          Currency
}

// DefaultSettings returns the state of a store assistant on first run.
func DefaultSettings() Settings {
	return Settings{
		NotifyLowStock:    true,
		NotifyNewOrders:   true,
		LowStockThreshold: 5,
		Locale:            LocaleEnglish,
		Currency:          CurrencyUSD,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
// ClearWatched removes the watched product regardless of WatchedProductID.
type SettingsPatch struct {
	NotifyLowStock    *bool
	NotifyNewOrders   *bool
	LowStockThreshold *int
	WatchedProductID  *int64
	ClearWatched      bool
	Locale            *Locale
	Currency          *Currency
}

// Apply validates the patch against s and returns the updated settings.
// s itself is not modified.
func (s Settings) Apply(p SettingsPatch) (Settings, error) {
	out := s

	if p.NotifyLowStock != nil {
		out.NotifyLowStock = *p.NotifyLowStock
	}
	if p.NotifyNewOrders != nil {
		out.NotifyNewOrders = *p.NotifyNewOrders
	}
	if p.LowStockThreshold != nil {
		if *p.LowStockThreshold < 0 {
			return s, &ValidationError{Field: "lowStockThreshold", Reason: "must be a non-negative integer"}
		}
		out.LowStockThreshold = *p.LowStockThreshold
	}
	if p.ClearWatched {
		out.WatchedProductID = nil
	} else if p.WatchedProductID != nil {
		if *p.WatchedProductID <= 0 {
			return s, &ValidationError{Field: "watchedProductId", Reason: "must be a positive product ID"}
		}
		id := *p.WatchedProductID
		out.WatchedProductID = &id
	}
	if p.Locale != nil {
		if _, ok := ParseLocale(string(*p.Locale)); !ok {
			return s, &ValidationError{Field: "locale", Reason: "must be one of: en, fa"}
		}
		out.Locale = *p.Locale
	}
	if p.Currency != nil {
		if _, ok := ParseCurrency(string(*p.Currency)); !ok {
			return s, &ValidationError{Field: "currency", Reason: "must be one of: USD, EUR, IRR, IRT"}
		}
		out.Currency = *p.Currency
	}

	return out, nil
}
