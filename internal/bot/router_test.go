package bot

import (
	"context"
	"testing"
	"time"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/session"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/state"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	products  []domain.Product
	orders    []domain.Order
	customers []domain.Customer

	productCalls []domain.ListParams
	priceCalls   map[int64]decimal.Decimal
	stockCalls   map[int64]int
	statusCalls  map[int64]domain.OrderStatus
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		priceCalls:  make(map[int64]decimal.Decimal),
		stockCalls:  make(map[int64]int),
		statusCalls: make(map[int64]domain.OrderStatus),
	}
}

func (f *fakeStore) Products(_ context.Context, page domain.ListParams) ([]domain.Product, error) {
	f.productCalls = append(f.productCalls, page)
	start := page.Offset
	if start >= len(f.products) {
		return nil, nil
	}
	end := start + page.Limit
	if end > len(f.products) {
		end = len(f.products)
	}
	return f.products[start:end], nil
}

func (f *fakeStore) SearchProducts(_ context.Context, query string) ([]domain.Product, error) {
	return f.products, nil
}

func (f *fakeStore) Product(_ context.Context, id int64) (*domain.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, &domain.StoreError{Kind: domain.KindNotFound, Op: "products.get"}
}

func (f *fakeStore) Orders(_ context.Context, page domain.ListParams) ([]domain.Order, error) {
	return f.orders, nil
}

func (f *fakeStore) Order(_ context.Context, id int64) (*domain.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			return &f.orders[i], nil
		}
	}
	return nil, &domain.StoreError{Kind: domain.KindNotFound, Op: "orders.get"}
}

func (f *fakeStore) Customers(_ context.Context, page domain.ListParams) ([]domain.Customer, error) {
	return f.customers, nil
}

func (f *fakeStore) Customer(_ context.Context, id int64) (*domain.Customer, error) {
	for i := range f.customers {
		if f.customers[i].ID == id {
			return &f.customers[i], nil
		}
	}
	return nil, &domain.StoreError{Kind: domain.KindNotFound, Op: "customers.get"}
}

func (f *fakeStore) CustomerOrders(_ context.Context, customerID int64) ([]domain.Order, error) {
	return f.orders, nil
}

func (f *fakeStore) UpdateStock(_ context.Context, productID int64, qty int) error {
	f.stockCalls[productID] = qty
	return nil
}

func (f *fakeStore) UpdatePrice(_ context.Context, productID int64, price decimal.Decimal) error {
	f.priceCalls[productID] = price
	return nil
}

func (f *fakeStore) UpdateOrderStatus(_ context.Context, orderID int64, status domain.OrderStatus) error {
	f.statusCalls[orderID] = status
	return nil
}

const adminID = int64(100)

type routerFixture struct {
	router   *Router
	store    *fakeStore
	state    *state.Memory
	sessions *session.Memory
}

func newRouterFixture(t *testing.T, pageSize int) *routerFixture {
	t.Helper()
	store := newFakeStore()
	stateRepo := state.NewMemory()
	sessions := session.NewMemory(15*time.Minute, clockwork.NewFakeClock())
	return &routerFixture{
		router:   NewRouter(store, stateRepo, sessions, []int64{adminID}, pageSize, 10),
		store:    store,
		state:    stateRepo,
		sessions: sessions,
	}
}

func (f *routerFixture) handle(t *testing.T, upd domain.Update) *domain.Message {
	t.Helper()
	upd.Sender = adminID
	upd.Chat = adminID
	msg, err := f.router.HandleUpdate(context.Background(), upd)
	require.NoError(t, err)
	return msg
}

func (f *routerFixture) session(t *testing.T) domain.Session {
	t.Helper()
	s, err := f.sessions.Get(context.Background(), adminID)
	require.NoError(t, err)
	return s
}

func someProducts(n int) []domain.Product {
	stock := 10
	out := make([]domain.Product, n)
	for i := range out {
		out[i] = domain.Product{
			ID:    int64(i + 1),
			Name:  "Product",
			Type:  "simple",
			Price: decimal.NewFromInt(10),
			Stock: &stock,
		}
	}
	return out
}

func TestRouter_RejectsUnknownSender(t *testing.T) {
	f := newRouterFixture(t, 5)
	f.store.products = someProducts(3)

	msg, err := f.router.HandleUpdate(context.Background(), domain.Update{Sender: 999, Text: "/products"})
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "not authorized")
	assert.Empty(t, f.store.productCalls, "no store data fetched for outsiders")
}

func TestRouter_ProductsPageMovesToListState(t *testing.T) {
	f := newRouterFixture(t, 20)
	f.store.products = someProducts(60)

	msg := f.handle(t, domain.Update{Text: "/products 2"})
	require.NotNil(t, msg)

	s := f.session(t)
	assert.Equal(t, domain.SessionAwaitingListPage, s.State)
	assert.Equal(t, domain.ListProducts, s.List)
	assert.Equal(t, 20, s.Offset)

	require.Len(t, f.store.productCalls, 1)
	assert.Equal(t, domain.ListParams{Offset: 20, Limit: 20}, f.store.productCalls[0])
}

func TestRouter_NextPageRefetchesAtAdjustedOffset(t *testing.T) {
	f := newRouterFixture(t, 20)
	f.store.products = someProducts(60)

	f.handle(t, domain.Update{Text: "/products 2"})
	msg := f.handle(t, domain.Update{Callback: "products:40"})
	require.NotNil(t, msg)

	s := f.session(t)
	assert.Equal(t, domain.SessionAwaitingListPage, s.State)
	assert.Equal(t, 40, s.Offset)

	require.Len(t, f.store.productCalls, 2)
	assert.Equal(t, domain.ListParams{Offset: 40, Limit: 20}, f.store.productCalls[1])
}

func TestRouter_ProductListKeyboardPaginates(t *testing.T) {
	f := newRouterFixture(t, 5)
	f.store.products = someProducts(12)

	msg := f.handle(t, domain.Update{Callback: "products:5"})
	require.NotNil(t, msg)
	require.Len(t, msg.Keyboard, 1)
	require.Len(t, msg.Keyboard[0], 2)
	assert.Equal(t, "products:0", msg.Keyboard[0][0].Data)
	assert.Equal(t, "products:10", msg.Keyboard[0][1].Data)
}

func TestRouter_NonNumericPriceReprompts(t *testing.T) {
	f := newRouterFixture(t, 5)
	f.store.products = someProducts(10)

	msg := f.handle(t, domain.Update{Text: "/update 7"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "price for product 7")
	assert.Equal(t, domain.SessionAwaitingFieldInput, f.session(t).State)

	msg = f.handle(t, domain.Update{Text: "not-a-number"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "valid price")

	s := f.session(t)
	assert.Equal(t, domain.SessionAwaitingFieldInput, s.State, "validation failure keeps the session waiting")
	assert.Equal(t, domain.FieldPrice, s.Field)
	assert.Equal(t, int64(7), s.Target)
	assert.Empty(t, f.store.priceCalls, "no store call on invalid input")
}

func TestRouter_ValidPriceUpdatesAndReturnsToIdle(t *testing.T) {
	f := newRouterFixture(t, 5)
	f.store.products = someProducts(10)

	f.handle(t, domain.Update{Text: "/update 7"})
	msg := f.handle(t, domain.Update{Text: "19.99"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "price set to 19.99")

	assert.Equal(t, domain.SessionIdle, f.session(t).State)
	assert.True(t, f.store.priceCalls[7].Equal(decimal.RequireFromString("19.99")))
}

func TestRouter_UpdateCommandWithInlineValues(t *testing.T) {
	f := newRouterFixture(t, 5)
	f.store.products = someProducts(10)

	msg := f.handle(t, domain.Update{Text: "/update 3 24.50 8"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "Product 3 updated")
	assert.True(t, f.store.priceCalls[3].Equal(decimal.RequireFromString("24.50")))
	assert.Equal(t, 8, f.store.stockCalls[3])
}

func TestRouter_UpdateCommandSkipsWithDash(t *testing.T) {
	f := newRouterFixture(t, 5)
	f.store.products = someProducts(10)

	msg := f.handle(t, domain.Update{Text: "/update 3 - 8"})
	require.NotNil(t, msg)
	assert.Empty(t, f.store.priceCalls)
	assert.Equal(t, 8, f.store.stockCalls[3])
}

func TestRouter_ThresholdPromptFlow(t *testing.T) {
	f := newRouterFixture(t, 5)

	msg := f.handle(t, domain.Update{Callback: "set_threshold"})
	require.NotNil(t, msg)
	assert.Equal(t, domain.SessionAwaitingFieldInput, f.session(t).State)

	msg = f.handle(t, domain.Update{Text: "abc"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "valid number")
	assert.Equal(t, domain.SessionAwaitingFieldInput, f.session(t).State)

	msg = f.handle(t, domain.Update{Text: "12"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "12")
	assert.Equal(t, domain.SessionIdle, f.session(t).State)

	settings, err := f.state.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, settings.LowStockThreshold)
}

func TestRouter_WatchProductRejectsUnknownID(t *testing.T) {
	f := newRouterFixture(t, 5)
	f.store.products = someProducts(5)

	f.handle(t, domain.Update{Callback: "watch_product"})
	msg := f.handle(t, domain.Update{Text: "999"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "valid product ID")
	assert.Equal(t, domain.SessionAwaitingFieldInput, f.session(t).State)

	msg = f.handle(t, domain.Update{Text: "3"})
	require.NotNil(t, msg)
	settings, err := f.state.Settings(context.Background())
	require.NoError(t, err)
	require.NotNil(t, settings.WatchedProductID)
	assert.Equal(t, int64(3), *settings.WatchedProductID)
}

func TestRouter_CurrencyFlow(t *testing.T) {
	f := newRouterFixture(t, 5)

	f.handle(t, domain.Update{Callback: "set_currency"})

	msg := f.handle(t, domain.Update{Text: "XYZ"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "Invalid currency")
	assert.Equal(t, domain.SessionAwaitingFieldInput, f.session(t).State)

	msg = f.handle(t, domain.Update{Text: "irt"})
	require.NotNil(t, msg)
	settings, err := f.state.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyIRT, settings.Currency)
	assert.Equal(t, domain.SessionIdle, f.session(t).State)
}

func TestRouter_ToggleLowStock(t *testing.T) {
	f := newRouterFixture(t, 5)

	msg := f.handle(t, domain.Update{Callback: "toggle_low_stock"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "Disabled")

	settings, err := f.state.Settings(context.Background())
	require.NoError(t, err)
	assert.False(t, settings.NotifyLowStock)

	msg = f.handle(t, domain.Update{Callback: "toggle_low_stock"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "Enabled")
}

func TestRouter_LanguageToggleAnswersInNewLocale(t *testing.T) {
	f := newRouterFixture(t, 5)

	msg := f.handle(t, domain.Update{Callback: "toggle_lang"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "Farsi")

	settings, err := f.state.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.LocaleFarsi, settings.Locale)
}

func TestRouter_StatusChangeNeedsConfirmation(t *testing.T) {
	f := newRouterFixture(t, 5)
	f.store.orders = []domain.Order{{ID: 55, Status: domain.OrderPending, Total: decimal.NewFromInt(90)}}

	msg := f.handle(t, domain.Update{Callback: "status:55:completed"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "55")
	require.Len(t, msg.Keyboard, 1)

	s := f.session(t)
	assert.Equal(t, domain.SessionAwaitingConfirmation, s.State)
	assert.Empty(t, f.store.statusCalls, "nothing mutated before confirmation")

	msg = f.handle(t, domain.Update{Callback: "confirm_yes"})
	require.NotNil(t, msg)
	assert.Equal(t, domain.OrderCompleted, f.store.statusCalls[55])
	assert.Equal(t, domain.SessionIdle, f.session(t).State)
}

func TestRouter_ConfirmNoAbortsStatusChange(t *testing.T) {
	f := newRouterFixture(t, 5)
	f.store.orders = []domain.Order{{ID: 55, Status: domain.OrderPending}}

	f.handle(t, domain.Update{Callback: "status:55:cancelled"})
	msg := f.handle(t, domain.Update{Callback: "confirm_no"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "Cancelled")
	assert.Empty(t, f.store.statusCalls)
	assert.Equal(t, domain.SessionIdle, f.session(t).State)
}

func TestRouter_CancelCommandResetsSession(t *testing.T) {
	f := newRouterFixture(t, 5)

	f.handle(t, domain.Update{Callback: "set_threshold"})
	require.Equal(t, domain.SessionAwaitingFieldInput, f.session(t).State)

	msg := f.handle(t, domain.Update{Text: "/cancel"})
	require.NotNil(t, msg)
	assert.Equal(t, domain.SessionIdle, f.session(t).State)
}

func TestRouter_OrderDetailsOffersOtherStatuses(t *testing.T) {
	f := newRouterFixture(t, 5)
	f.store.orders = []domain.Order{{
		ID:       55,
		Status:   domain.OrderPending,
		Total:    decimal.NewFromInt(90),
		Customer: "Jane Doe",
		Items:    []domain.LineItem{{ProductID: 1, Name: "Mug", Quantity: 2, Total: decimal.NewFromInt(30)}},
	}}

	msg := f.handle(t, domain.Update{Text: "/order 55"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "Order Details - ID: 55")
	assert.Contains(t, msg.Text, "Jane Doe")
	require.Len(t, msg.Keyboard, 1)
	assert.Len(t, msg.Keyboard[0], 3, "current status offered no button")
}

func TestRouter_StatsSummarizesOrders(t *testing.T) {
	f := newRouterFixture(t, 5)
	f.store.orders = []domain.Order{
		{ID: 1, Total: decimal.NewFromInt(100), Items: []domain.LineItem{
			{ProductID: 7, Name: "Mug", Total: decimal.NewFromInt(60)},
			{ProductID: 8, Name: "Shirt", Total: decimal.NewFromInt(40)},
		}},
		{ID: 2, Total: decimal.NewFromInt(50), Items: []domain.LineItem{
			{ProductID: 8, Name: "Shirt", Total: decimal.NewFromInt(50)},
		}},
	}

	msg := f.handle(t, domain.Update{Text: "/stats"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "Total Orders: 2")
	assert.Contains(t, msg.Text, "$150.00")
	assert.Contains(t, msg.Text, "Shirt")
	assert.Contains(t, msg.Text, "$90.00")
}

func TestRouter_BulkUpdateOrderStatus(t *testing.T) {
	f := newRouterFixture(t, 5)

	msg := f.handle(t, domain.Update{Text: "/bulkupdate order_status completed 1 2 3"})
	require.NotNil(t, msg)
	assert.Equal(t, domain.OrderCompleted, f.store.statusCalls[1])
	assert.Equal(t, domain.OrderCompleted, f.store.statusCalls[2])
	assert.Equal(t, domain.OrderCompleted, f.store.statusCalls[3])
}

func TestRouter_BulkUpdateRejectsBadStatus(t *testing.T) {
	f := newRouterFixture(t, 5)

	msg := f.handle(t, domain.Update{Text: "/bulkupdate order_status shipped 1"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "Invalid status")
	assert.Empty(t, f.store.statusCalls)
}

func TestRouter_SearchRequiresQuery(t *testing.T) {
	f := newRouterFixture(t, 5)

	msg := f.handle(t, domain.Update{Text: "/search"})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "search term")
}
