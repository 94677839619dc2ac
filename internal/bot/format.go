package bot

import (
	"fmt"
	"strings"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
)

// Callback tokens. List tokens carry the offset of the page to show so a
// button press is self-contained and needs no server-side lookup.
const (
	cbToggleLowStock  = "toggle_low_stock"
	cbToggleNewOrders = "toggle_new_orders"
	cbSetThreshold    = "set_threshold"
	cbWatchProduct    = "watch_product"
	cbSetCurrency     = "set_currency"
	cbToggleLang      = "toggle_lang"
	cbConfirmYes      = "confirm_yes"
	cbConfirmNo       = "confirm_no"
	cbCancel          = "cancel"

	cbProductsPrefix  = "products:"
	cbOrdersPrefix    = "orders:"
	cbCustomersPrefix = "customers:"
	cbOrderPrefix     = "order:"
	cbStatusPrefix    = "status:"
)

func money(c domain.Currency, d fmt.Stringer) string {
	return c.Symbol() + d.String()
}

func stockDisplay(stock *int) string {
	if stock == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *stock)
}

func attributesDisplay(attrs []domain.Attribute) string {
	if len(attrs) == 0 {
		return "N/A"
	}
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Name, strings.Join(a.Options, ", ")))
	}
	return strings.Join(parts, " / ")
}

// paginationRow builds the Previous/Next row for a list page. hasMore is
// inferred from a full page; an exactly-full last page costs one empty
// follow-up page, which the empty-list text covers.
func paginationRow(prefix string, offset, pageSize int, hasMore bool) []domain.Button {
	var row []domain.Button
	if offset > 0 {
		prev := offset - pageSize
		if prev < 0 {
			prev = 0
		}
		row = append(row, domain.Button{Label: "⏮ Previous", Data: fmt.Sprintf("%s%d", prefix, prev)})
	}
	if hasMore {
		row = append(row, domain.Button{Label: "Next ⏭", Data: fmt.Sprintf("%s%d", prefix, offset+pageSize)})
	}
	return row
}

func formatProducts(products []domain.Product, offset, pageSize int, currency domain.Currency) domain.Message {
	if len(products) == 0 {
		if offset > 0 {
			return domain.Message{Text: "No more products to show."}
		}
		return domain.Message{Text: tr(domain.LocaleEnglish, msgProductsEmpty)}
	}

	var b strings.Builder
	b.WriteString("🛍️ **Product List**\n\n")
	for _, p := range products {
		fmt.Fprintf(&b, "**ID: %d | %s**\n", p.ID, p.Name)
		fmt.Fprintf(&b, "Type: %s\n", p.Type)
		fmt.Fprintf(&b, "SKU: %s\n", valueOr(p.SKU, "N/A"))
		fmt.Fprintf(&b, "Price: %s\n", money(currency, p.Price))
		fmt.Fprintf(&b, "Stock: %s\n", stockDisplay(p.Stock))
		fmt.Fprintf(&b, "Attributes: %s\n", attributesDisplay(p.Attributes))
		b.WriteString(strings.Repeat("─", 20) + "\n\n")
	}
	fmt.Fprintf(&b, "Page %d", offset/pageSize+1)

	msg := domain.Message{Text: b.String()}
	if row := paginationRow(cbProductsPrefix, offset, pageSize, len(products) == pageSize); row != nil {
		msg.Keyboard = [][]domain.Button{row}
	}
	return msg
}

func formatSearchResults(products []domain.Product, currency domain.Currency, locale domain.Locale) domain.Message {
	if len(products) == 0 {
		return domain.Message{Text: tr(locale, msgSearchNoResults)}
	}

	var b strings.Builder
	b.WriteString("🔍 **Search Results**\n\n")
	for _, p := range products {
		fmt.Fprintf(&b, "ID: %d | %s\n", p.ID, p.Name)
		fmt.Fprintf(&b, "Type: %s\n", p.Type)
		fmt.Fprintf(&b, "SKU: %s\n", valueOr(p.SKU, "N/A"))
		fmt.Fprintf(&b, "Price: %s\n", money(currency, p.Price))
		fmt.Fprintf(&b, "Stock: %s\n", stockDisplay(p.Stock))
		fmt.Fprintf(&b, "Attributes: %s\n\n", attributesDisplay(p.Attributes))
	}
	return domain.Message{Text: strings.TrimRight(b.String(), "\n")}
}

func formatOrders(orders []domain.Order, offset, pageSize int, currency domain.Currency) domain.Message {
	if len(orders) == 0 {
		if offset > 0 {
			return domain.Message{Text: "No more orders to show."}
		}
		return domain.Message{Text: "No recent orders found."}
	}

	var b strings.Builder
	b.WriteString("📦 **Recent Orders**\n\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "ID: %d | Customer: %s\nTotal: %s | Status: %s\n\n",
			o.ID, valueOr(o.Customer, "Unknown"), money(currency, o.Total), capitalize(string(o.Status)))
	}
	fmt.Fprintf(&b, "Page %d", offset/pageSize+1)

	msg := domain.Message{Text: b.String()}
	if row := paginationRow(cbOrdersPrefix, offset, pageSize, len(orders) == pageSize); row != nil {
		msg.Keyboard = [][]domain.Button{row}
	}
	return msg
}

func formatOrderDetails(o *domain.Order, currency domain.Currency) domain.Message {
	var items strings.Builder
	for _, item := range o.Items {
		fmt.Fprintf(&items, "- %s (Qty: %d, %s)\n", item.Name, item.Quantity, money(currency, item.Total))
	}
	itemsText := strings.TrimRight(items.String(), "\n")
	if itemsText == "" {
		itemsText = "No items"
	}

	date := "N/A"
	if !o.CreatedAt.IsZero() {
		date = o.CreatedAt.Format("2006-01-02")
	}

	text := fmt.Sprintf(
		"📦 **Order Details - ID: %d**\n\nCustomer: %s\nStatus: %s\nTotal: %s\nDate: %s\n\n**Shipping Address:**\n%s\n\n**Items:**\n%s",
		o.ID, valueOr(o.Customer, "Unknown"), capitalize(string(o.Status)),
		money(currency, o.Total), date, valueOr(o.Shipping, "Not provided"), itemsText)

	var row []domain.Button
	for _, status := range domain.OrderStatuses() {
		if status == o.Status {
			continue
		}
		row = append(row, domain.Button{
			Label: capitalize(string(status)),
			Data:  fmt.Sprintf("%s%d:%s", cbStatusPrefix, o.ID, status),
		})
	}

	msg := domain.Message{Text: text}
	if row != nil {
		msg.Keyboard = [][]domain.Button{row}
	}
	return msg
}

func formatCustomers(customers []domain.Customer, offset, pageSize int, currency domain.Currency) domain.Message {
	if len(customers) == 0 {
		if offset > 0 {
			return domain.Message{Text: "No more customers to show."}
		}
		return domain.Message{Text: "No customers found."}
	}

	var b strings.Builder
	b.WriteString("👥 **Customer List**\n\n")
	for _, c := range customers {
		fmt.Fprintf(&b, "ID: %d | %s\nEmail: %s | Total Spent: %s | Orders: %d\n\n",
			c.ID, valueOr(c.Name, "Unknown"), valueOr(c.Email, "N/A"), money(currency, c.TotalSpent), c.OrderCount)
	}
	fmt.Fprintf(&b, "Page %d", offset/pageSize+1)

	msg := domain.Message{Text: b.String()}
	if row := paginationRow(cbCustomersPrefix, offset, pageSize, len(customers) == pageSize); row != nil {
		msg.Keyboard = [][]domain.Button{row}
	}
	return msg
}

func formatCustomerDetails(c *domain.Customer, orders []domain.Order, currency domain.Currency) domain.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 **Customer Details - ID: %d**\n\n", c.ID)
	fmt.Fprintf(&b, "Name: %s\n", valueOr(c.Name, "Unknown"))
	fmt.Fprintf(&b, "Email: %s\n", valueOr(c.Email, "N/A"))
	fmt.Fprintf(&b, "Total Spent: %s\n", money(currency, c.TotalSpent))
	fmt.Fprintf(&b, "Order Count: %d\n\n", len(orders))

	if len(orders) == 0 {
		b.WriteString("No orders found for this customer.")
		return domain.Message{Text: b.String()}
	}

	b.WriteString("**Order History:**")
	var keyboard [][]domain.Button
	for i, o := range orders {
		if i == 10 {
			break
		}
		keyboard = append(keyboard, []domain.Button{{
			Label: fmt.Sprintf("Order %d - %s (%s)", o.ID, money(currency, o.Total), capitalize(string(o.Status))),
			Data:  fmt.Sprintf("%s%d", cbOrderPrefix, o.ID),
		}})
	}
	return domain.Message{Text: b.String(), Keyboard: keyboard}
}

func formatSettings(s domain.Settings) domain.Message {
	watched := "None"
	if s.WatchedProductID != nil {
		watched = fmt.Sprintf("%d", *s.WatchedProductID)
	}

	langButton := domain.Button{Label: "زبان: فارسی", Data: cbToggleLang}
	if s.Locale == domain.LocaleFarsi {
		langButton.Label = "Language: English"
	}

	text := tr(s.Locale, msgSettings,
		enabledDisplay(s.NotifyLowStock), enabledDisplay(s.NotifyNewOrders),
		watched, s.LowStockThreshold, localeDisplay(s.Locale), string(s.Currency))

	return domain.Message{
		Text: text,
		Keyboard: [][]domain.Button{
			{
				{Label: "Toggle Low Stock", Data: cbToggleLowStock},
				{Label: "Toggle New Orders", Data: cbToggleNewOrders},
			},
			{
				{Label: "Set Threshold", Data: cbSetThreshold},
				{Label: "Watch Product", Data: cbWatchProduct},
			},
			{
				{Label: "Set Currency", Data: cbSetCurrency},
				langButton,
			},
		},
	}
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return "N/A"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
