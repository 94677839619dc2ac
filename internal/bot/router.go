// Package bot routes inbound chat updates through the per-admin session
// state machine: commands, inline-keyboard callbacks and free-text input for
// pending prompts. Every update produces at most one reply message.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/shopspring/decimal"
)

type Router struct {
	store      domain.StoreClient
	state      domain.StateRepository
	sessions   domain.SessionRepository
	admins     map[int64]struct{}
	pageSize   int
	orderLimit int
}

func NewRouter(store domain.StoreClient, state domain.StateRepository, sessions domain.SessionRepository, admins []int64, pageSize, orderLimit int) *Router {
	allowed := make(map[int64]struct{}, len(admins))
	for _, id := range admins {
		allowed[id] = struct{}{}
	}
	return &Router{
		store:      store,
		state:      state,
		sessions:   sessions,
		admins:     allowed,
		pageSize:   pageSize,
		orderLimit: orderLimit,
	}
}

// HandleUpdate processes one inbound event and returns the reply to send,
// or nil when the update warrants no response. Store data never reaches a
// sender outside the allow-list.
func (r *Router) HandleUpdate(ctx context.Context, upd domain.Update) (*domain.Message, error) {
	settings, err := r.state.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if _, ok := r.admins[upd.Sender]; !ok {
		slog.Warn("Rejected update from unauthorized sender", "sender", upd.Sender)
		return &domain.Message{Text: tr(settings.Locale, msgNotAuthorized)}, nil
	}

	session, err := r.sessions.Get(ctx, upd.Sender)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	switch {
	case upd.Callback != "":
		return r.handleCallback(ctx, upd, settings, session)
	case strings.HasPrefix(upd.Text, "/"):
		return r.handleCommand(ctx, upd, settings)
	default:
		return r.handleText(ctx, upd, settings, session)
	}
}

func (r *Router) handleCommand(ctx context.Context, upd domain.Update, settings domain.Settings) (*domain.Message, error) {
	fields := strings.Fields(upd.Text)
	cmd, args := fields[0], fields[1:]
	locale, currency := settings.Locale, settings.Currency

	switch cmd {
	case "/start":
		return &domain.Message{Text: tr(locale, msgWelcome, valueOr(upd.Name, "admin"))}, nil

	case "/help":
		return &domain.Message{Text: helpText}, nil

	case "/cancel":
		if err := r.sessions.Delete(ctx, upd.Sender); err != nil {
			return nil, err
		}
		return &domain.Message{Text: tr(locale, msgCancelled)}, nil

	case "/settings":
		msg := formatSettings(settings)
		return &msg, nil

	case "/products":
		offset := 0
		if len(args) > 0 {
			page, err := strconv.Atoi(args[0])
			if err != nil || page < 1 {
				return &domain.Message{Text: "⚠️ Invalid page number."}, nil
			}
			offset = (page - 1) * r.pageSize
		}
		return r.showProducts(ctx, upd.Sender, offset, currency)

	case "/search":
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return &domain.Message{Text: tr(locale, msgSearchNoQuery)}, nil
		}
		products, err := r.store.SearchProducts(ctx, query)
		if err != nil {
			return storeFailureReply("⚠️ Failed to search products. Check your store connection.", err), nil
		}
		msg := formatSearchResults(products, currency, locale)
		return &msg, nil

	case "/update":
		return r.handleUpdateCommand(ctx, upd.Sender, args, currency)

	case "/orders":
		return r.showOrders(ctx, upd.Sender, 0, currency)

	case "/order":
		if len(args) == 0 {
			return &domain.Message{Text: "⚠️ Usage: /order <order_id>"}, nil
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return &domain.Message{Text: "⚠️ Invalid order ID. Please use a number."}, nil
		}
		return r.showOrderDetails(ctx, id, currency)

	case "/customers":
		return r.showCustomers(ctx, upd.Sender, 0, currency)

	case "/customer":
		if len(args) == 0 {
			return &domain.Message{Text: "⚠️ Usage: /customer <customer_id>"}, nil
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return &domain.Message{Text: "⚠️ Invalid customer ID. Please use a number."}, nil
		}
		customer, err := r.store.Customer(ctx, id)
		if err != nil {
			return storeFailureReply(fmt.Sprintf("⚠️ Customer ID %d not found or failed to fetch.", id), err), nil
		}
		orders, err := r.store.CustomerOrders(ctx, id)
		if err != nil {
			return storeFailureReply(fmt.Sprintf("⚠️ Failed to fetch orders for customer ID %d.", id), err), nil
		}
		msg := formatCustomerDetails(customer, orders, currency)
		return &msg, nil

	case "/stats":
		stats, err := computeStats(ctx, r.store)
		if err != nil {
			return storeFailureReply("⚠️ Failed to fetch orders for stats.", err), nil
		}
		symbol := currency.Symbol()
		return &domain.Message{Text: tr(locale, msgStats,
			stats.TotalOrders, symbol, stats.TotalRevenue.StringFixed(2),
			stats.TopProduct, symbol, stats.TopRevenue.StringFixed(2))}, nil

	case "/bulkupdate":
		return r.handleBulkUpdate(ctx, args)

	default:
		return nil, nil
	}
}

func (r *Router) handleUpdateCommand(ctx context.Context, adminID int64, args []string, currency domain.Currency) (*domain.Message, error) {
	if len(args) < 1 {
		return &domain.Message{Text: "⚠️ Usage: /update <product_id> [price] [stock]"}, nil
	}
	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return &domain.Message{Text: "⚠️ Invalid input. Use numbers for product ID, price, and stock. Use '-' to skip."}, nil
	}

	if _, err := r.store.Product(ctx, productID); err != nil {
		return storeFailureReply(fmt.Sprintf("⚠️ Product ID %d not found.", productID), err), nil
	}

	var price *decimal.Decimal
	if len(args) > 1 && args[1] != "-" {
		p, err := decimal.NewFromString(args[1])
		if err != nil {
			return &domain.Message{Text: "⚠️ Invalid input. Use numbers for product ID, price, and stock. Use '-' to skip."}, nil
		}
		price = &p
	}
	var stock *int
	if len(args) > 2 && args[2] != "-" {
		s, err := strconv.Atoi(args[2])
		if err != nil {
			return &domain.Message{Text: "⚠️ Invalid input. Use numbers for product ID, price, and stock. Use '-' to skip."}, nil
		}
		stock = &s
	}

	// No value given: prompt for a price and wait for free-text input.
	if price == nil && stock == nil {
		err := r.sessions.Put(ctx, adminID, domain.Session{
			State:  domain.SessionAwaitingFieldInput,
			Target: productID,
			Field:  domain.FieldPrice,
		})
		if err != nil {
			return nil, err
		}
		return &domain.Message{Text: fmt.Sprintf("Please send the new price for product %d:", productID)}, nil
	}

	if price != nil {
		if err := r.store.UpdatePrice(ctx, productID, *price); err != nil {
			return storeFailureReply(fmt.Sprintf("⚠️ Failed to update product %d.", productID), err), nil
		}
	}
	if stock != nil {
		if err := r.store.UpdateStock(ctx, productID, *stock); err != nil {
			return storeFailureReply(fmt.Sprintf("⚠️ Failed to update product %d.", productID), err), nil
		}
	}
	return &domain.Message{Text: fmt.Sprintf("📦 Product %d updated.", productID)}, nil
}

func (r *Router) handleBulkUpdate(ctx context.Context, args []string) (*domain.Message, error) {
	if len(args) < 3 {
		return &domain.Message{Text: "⚠️ Usage: /bulkupdate <type> <new_value> <id1> <id2> ... (type: order_status, product_price, product_stock)"}, nil
	}
	updateType, newValue, ids := args[0], args[1], args[2:]

	var lines []string
	switch updateType {
	case "order_status":
		status, ok := domain.ParseOrderStatus(strings.ToLower(newValue))
		if !ok {
			return &domain.Message{Text: "⚠️ Invalid status. Use: pending, processing, completed, cancelled"}, nil
		}
		for _, raw := range ids {
			orderID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				lines = append(lines, fmt.Sprintf("Order %s: invalid ID", raw))
				continue
			}
			if err := r.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
				lines = append(lines, fmt.Sprintf("Order %d: update failed", orderID))
			} else {
				lines = append(lines, fmt.Sprintf("Order %d: status set to %s", orderID, status))
			}
		}

	case "product_price":
		price, err := decimal.NewFromString(newValue)
		if err != nil {
			return &domain.Message{Text: "⚠️ Invalid value. Use a number for price or stock."}, nil
		}
		for _, raw := range ids {
			productID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				lines = append(lines, fmt.Sprintf("Product %s: invalid ID", raw))
				continue
			}
			if err := r.store.UpdatePrice(ctx, productID, price); err != nil {
				lines = append(lines, fmt.Sprintf("Product %d: update failed", productID))
			} else {
				lines = append(lines, fmt.Sprintf("Product %d: price set to %s", productID, price))
			}
		}

	case "product_stock":
		qty, err := strconv.Atoi(newValue)
		if err != nil {
			return &domain.Message{Text: "⚠️ Invalid value. Use a number for price or stock."}, nil
		}
		for _, raw := range ids {
			productID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				lines = append(lines, fmt.Sprintf("Product %s: invalid ID", raw))
				continue
			}
			if err := r.store.UpdateStock(ctx, productID, qty); err != nil {
				lines = append(lines, fmt.Sprintf("Product %d: update failed", productID))
			} else {
				lines = append(lines, fmt.Sprintf("Product %d: stock set to %d", productID, qty))
			}
		}

	default:
		return &domain.Message{Text: "⚠️ Invalid type. Use: order_status, product_price, product_stock"}, nil
	}

	return &domain.Message{Text: strings.Join(lines, "\n")}, nil
}

func (r *Router) handleCallback(ctx context.Context, upd domain.Update, settings domain.Settings, session domain.Session) (*domain.Message, error) {
	data := upd.Callback
	locale, currency := settings.Locale, settings.Currency

	switch {
	case data == cbToggleLowStock:
		enabled := !settings.NotifyLowStock
		if _, err := r.state.UpdateSettings(ctx, domain.SettingsPatch{NotifyLowStock: &enabled}); err != nil {
			return nil, err
		}
		return &domain.Message{Text: tr(locale, msgToggleLowStock, enabledDisplay(enabled))}, nil

	case data == cbToggleNewOrders:
		enabled := !settings.NotifyNewOrders
		if _, err := r.state.UpdateSettings(ctx, domain.SettingsPatch{NotifyNewOrders: &enabled}); err != nil {
			return nil, err
		}
		return &domain.Message{Text: tr(locale, msgToggleNewOrders, enabledDisplay(enabled))}, nil

	case data == cbSetThreshold:
		return r.promptField(ctx, upd.Sender, domain.FieldThreshold, 0, tr(locale, msgThresholdPrompt))

	case data == cbWatchProduct:
		return r.promptField(ctx, upd.Sender, domain.FieldWatchedProduct, 0, tr(locale, msgWatchPrompt))

	case data == cbSetCurrency:
		return r.promptField(ctx, upd.Sender, domain.FieldCurrency, 0, tr(locale, msgCurrencyPrompt))

	case data == cbToggleLang:
		next := domain.LocaleFarsi
		if locale == domain.LocaleFarsi {
			next = domain.LocaleEnglish
		}
		if _, err := r.state.UpdateSettings(ctx, domain.SettingsPatch{Locale: &next}); err != nil {
			return nil, err
		}
		return &domain.Message{Text: tr(next, msgLangSet, localeDisplay(next))}, nil

	case data == cbCancel, data == cbConfirmNo:
		if err := r.sessions.Delete(ctx, upd.Sender); err != nil {
			return nil, err
		}
		return &domain.Message{Text: tr(locale, msgCancelled)}, nil

	case data == cbConfirmYes:
		return r.executeConfirmedAction(ctx, upd.Sender, session, currency)

	case strings.HasPrefix(data, cbProductsPrefix):
		offset, err := strconv.Atoi(strings.TrimPrefix(data, cbProductsPrefix))
		if err != nil || offset < 0 {
			return nil, nil
		}
		return r.showProducts(ctx, upd.Sender, offset, currency)

	case strings.HasPrefix(data, cbOrdersPrefix):
		offset, err := strconv.Atoi(strings.TrimPrefix(data, cbOrdersPrefix))
		if err != nil || offset < 0 {
			return nil, nil
		}
		return r.showOrders(ctx, upd.Sender, offset, currency)

	case strings.HasPrefix(data, cbCustomersPrefix):
		offset, err := strconv.Atoi(strings.TrimPrefix(data, cbCustomersPrefix))
		if err != nil || offset < 0 {
			return nil, nil
		}
		return r.showCustomers(ctx, upd.Sender, offset, currency)

	case strings.HasPrefix(data, cbOrderPrefix):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, cbOrderPrefix), 10, 64)
		if err != nil {
			return nil, nil
		}
		return r.showOrderDetails(ctx, id, currency)

	case strings.HasPrefix(data, cbStatusPrefix):
		return r.promptStatusConfirmation(ctx, upd.Sender, data, locale)

	default:
		slog.Warn("Ignoring unrecognized callback token", "data", data)
		return nil, nil
	}
}

// promptStatusConfirmation parses a status button press and asks for an
// explicit yes/no before touching the order.
func (r *Router) promptStatusConfirmation(ctx context.Context, adminID int64, data string, locale domain.Locale) (*domain.Message, error) {
	parts := strings.Split(strings.TrimPrefix(data, cbStatusPrefix), ":")
	if len(parts) != 2 {
		return nil, nil
	}
	orderID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, nil
	}
	status, ok := domain.ParseOrderStatus(parts[1])
	if !ok {
		return nil, nil
	}

	err = r.sessions.Put(ctx, adminID, domain.Session{
		State:  domain.SessionAwaitingConfirmation,
		Action: data,
	})
	if err != nil {
		return nil, err
	}
	return &domain.Message{
		Text: tr(locale, msgConfirmAction, orderID, capitalize(string(status))),
		Keyboard: [][]domain.Button{{
			{Label: "✅ Yes", Data: cbConfirmYes},
			{Label: "❌ No", Data: cbConfirmNo},
		}},
	}, nil
}

func (r *Router) executeConfirmedAction(ctx context.Context, adminID int64, session domain.Session, currency domain.Currency) (*domain.Message, error) {
	if session.State != domain.SessionAwaitingConfirmation || !strings.HasPrefix(session.Action, cbStatusPrefix) {
		return nil, nil
	}
	parts := strings.Split(strings.TrimPrefix(session.Action, cbStatusPrefix), ":")
	if len(parts) != 2 {
		return nil, nil
	}
	orderID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, nil
	}
	status, ok := domain.ParseOrderStatus(parts[1])
	if !ok {
		return nil, nil
	}

	if err := r.sessions.Delete(ctx, adminID); err != nil {
		return nil, err
	}
	if err := r.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return storeFailureReply(fmt.Sprintf("⚠️ Failed to update order %d.", orderID), err), nil
	}
	return r.showOrderDetails(ctx, orderID, currency)
}

func (r *Router) handleText(ctx context.Context, upd domain.Update, settings domain.Settings, session domain.Session) (*domain.Message, error) {
	if session.State != domain.SessionAwaitingFieldInput {
		// Free text outside a prompt carries no meaning.
		return nil, nil
	}

	locale := settings.Locale
	input := strings.TrimSpace(upd.Text)

	switch session.Field {
	case domain.FieldThreshold:
		threshold, err := strconv.Atoi(input)
		if err != nil || threshold < 0 {
			return &domain.Message{Text: tr(locale, msgThresholdError)}, nil
		}
		if _, err := r.state.UpdateSettings(ctx, domain.SettingsPatch{LowStockThreshold: &threshold}); err != nil {
			if domain.IsValidation(err) {
				return &domain.Message{Text: tr(locale, msgThresholdError)}, nil
			}
			return nil, err
		}
		if err := r.sessions.Delete(ctx, upd.Sender); err != nil {
			return nil, err
		}
		return &domain.Message{Text: tr(locale, msgThresholdSet, threshold)}, nil

	case domain.FieldWatchedProduct:
		productID, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return &domain.Message{Text: tr(locale, msgWatchError)}, nil
		}
		if _, err := r.store.Product(ctx, productID); err != nil {
			return &domain.Message{Text: tr(locale, msgWatchError)}, nil
		}
		updated, err := r.state.UpdateSettings(ctx, domain.SettingsPatch{WatchedProductID: &productID})
		if err != nil {
			return nil, err
		}
		if err := r.sessions.Delete(ctx, upd.Sender); err != nil {
			return nil, err
		}
		return &domain.Message{Text: tr(locale, msgWatchSet, productID, updated.LowStockThreshold)}, nil

	case domain.FieldCurrency:
		currency, ok := domain.ParseCurrency(strings.ToUpper(input))
		if !ok {
			return &domain.Message{Text: tr(locale, msgCurrencyError)}, nil
		}
		if _, err := r.state.UpdateSettings(ctx, domain.SettingsPatch{Currency: &currency}); err != nil {
			return nil, err
		}
		if err := r.sessions.Delete(ctx, upd.Sender); err != nil {
			return nil, err
		}
		return &domain.Message{Text: tr(locale, msgCurrencySet, string(currency))}, nil

	case domain.FieldPrice:
		price, err := decimal.NewFromString(input)
		if err != nil || price.IsNegative() {
			return &domain.Message{Text: "⚠️ Please enter a valid price (e.g., 19.99)."}, nil
		}
		if err := r.store.UpdatePrice(ctx, session.Target, price); err != nil {
			return storeFailureReply(fmt.Sprintf("⚠️ Failed to update product %d.", session.Target), err), nil
		}
		if err := r.sessions.Delete(ctx, upd.Sender); err != nil {
			return nil, err
		}
		return &domain.Message{Text: fmt.Sprintf("📦 Product %d price set to %s.", session.Target, price)}, nil

	case domain.FieldStock:
		qty, err := strconv.Atoi(input)
		if err != nil || qty < 0 {
			return &domain.Message{Text: "⚠️ Please enter a valid stock quantity (e.g., 25)."}, nil
		}
		if err := r.store.UpdateStock(ctx, session.Target, qty); err != nil {
			return storeFailureReply(fmt.Sprintf("⚠️ Failed to update product %d.", session.Target), err), nil
		}
		if err := r.sessions.Delete(ctx, upd.Sender); err != nil {
			return nil, err
		}
		return &domain.Message{Text: fmt.Sprintf("📦 Product %d stock set to %d.", session.Target, qty)}, nil

	default:
		return nil, nil
	}
}

func (r *Router) promptField(ctx context.Context, adminID int64, field domain.InputField, target int64, prompt string) (*domain.Message, error) {
	err := r.sessions.Put(ctx, adminID, domain.Session{
		State:  domain.SessionAwaitingFieldInput,
		Target: target,
		Field:  field,
	})
	if err != nil {
		return nil, err
	}
	return &domain.Message{Text: prompt}, nil
}

func (r *Router) showProducts(ctx context.Context, adminID int64, offset int, currency domain.Currency) (*domain.Message, error) {
	products, err := r.store.Products(ctx, domain.ListParams{Offset: offset, Limit: r.pageSize})
	if err != nil {
		return storeFailureReply("⚠️ Failed to fetch products. Check your store connection.", err), nil
	}
	err = r.sessions.Put(ctx, adminID, domain.Session{
		State:  domain.SessionAwaitingListPage,
		List:   domain.ListProducts,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	msg := formatProducts(products, offset, r.pageSize, currency)
	return &msg, nil
}

func (r *Router) showOrders(ctx context.Context, adminID int64, offset int, currency domain.Currency) (*domain.Message, error) {
	orders, err := r.store.Orders(ctx, domain.ListParams{Offset: offset, Limit: r.pageSize})
	if err != nil {
		return storeFailureReply("⚠️ Failed to fetch orders. Check your store connection.", err), nil
	}
	err = r.sessions.Put(ctx, adminID, domain.Session{
		State:  domain.SessionAwaitingListPage,
		List:   domain.ListOrders,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	msg := formatOrders(orders, offset, r.pageSize, currency)
	return &msg, nil
}

func (r *Router) showCustomers(ctx context.Context, adminID int64, offset int, currency domain.Currency) (*domain.Message, error) {
	customers, err := r.store.Customers(ctx, domain.ListParams{Offset: offset, Limit: r.pageSize})
	if err != nil {
		return storeFailureReply("⚠️ Failed to fetch customers. Check your store connection.", err), nil
	}
	err = r.sessions.Put(ctx, adminID, domain.Session{
		State:  domain.SessionAwaitingListPage,
		List:   domain.ListCustomers,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	msg := formatCustomers(customers, offset, r.pageSize, currency)
	return &msg, nil
}

func (r *Router) showOrderDetails(ctx context.Context, orderID int64, currency domain.Currency) (*domain.Message, error) {
	order, err := r.store.Order(ctx, orderID)
	if err != nil {
		return storeFailureReply(fmt.Sprintf("⚠️ Order ID %d not found or failed to fetch.", orderID), err), nil
	}
	msg := formatOrderDetails(order, currency)
	return &msg, nil
}

// storeFailureReply converts a store error into the reply for the requesting
// admin. Failures are reported in place, never broadcast.
func storeFailureReply(text string, err error) *domain.Message {
	slog.Warn("Store call failed during command handling", "error", err)
	return &domain.Message{Text: text}
}
