package bot

import (
	"fmt"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
)

// RenderAlert turns a decided alert into the chat text for the admin channel,
// honoring the configured locale and currency.
func RenderAlert(a domain.Alert, s domain.Settings) string {
	switch a.Kind {
	case domain.AlertLowStock:
		return fmt.Sprintf("⚠️ **Low Stock Alert**\n\nID: %s | %s\nPrice: %s | Stock: %s",
			a.Subject, valueOr(a.Product.Name, "Unnamed Product"),
			money(s.Currency, a.Product.Price), stockDisplay(a.Product.Stock))
	case domain.AlertNewOrder:
		return fmt.Sprintf("🛒 **New Order**\n\nID: %s | Customer: %s\nTotal: %s | Status: %s",
			a.Subject, valueOr(a.Order.Customer, "Unknown"),
			money(s.Currency, a.Order.Total), capitalize(string(a.Order.Status)))
	case domain.AlertAPIOutage:
		return tr(s.Locale, msgAPIError, a.Reason)
	case domain.AlertAPIRecovered:
		return tr(s.Locale, msgAPIRecovered)
	case domain.AlertCredentialFailure:
		return tr(s.Locale, msgCredentialError)
	default:
		return fmt.Sprintf("⚠️ %s: %s", a.Kind, a.Subject)
	}
}
