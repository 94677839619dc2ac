package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/detector"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/dispatch"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/policy"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/state"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedStore struct {
	mu       sync.Mutex
	products []domain.Product
	orders   []domain.Order
	err      error
}

func (s *scriptedStore) set(products []domain.Product, orders []domain.Order, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products, s.orders, s.err = products, orders, err
}

func (s *scriptedStore) Products(context.Context, domain.ListParams) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func (s *scriptedStore) Orders(context.Context, domain.ListParams) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.orders, nil
}

func (s *scriptedStore) SearchProducts(context.Context, string) ([]domain.Product, error) {
	return nil, nil
}
func (s *scriptedStore) Product(context.Context, int64) (*domain.Product, error)  { return nil, nil }
func (s *scriptedStore) Order(context.Context, int64) (*domain.Order, error)      { return nil, nil }
func (s *scriptedStore) Customers(context.Context, domain.ListParams) ([]domain.Customer, error) {
	return nil, nil
}
func (s *scriptedStore) Customer(context.Context, int64) (*domain.Customer, error) { return nil, nil }
func (s *scriptedStore) CustomerOrders(context.Context, int64) ([]domain.Order, error) {
	return nil, nil
}
func (s *scriptedStore) UpdateStock(context.Context, int64, int) error { return nil }
func (s *scriptedStore) UpdatePrice(context.Context, int64, decimal.Decimal) error {
	return nil
}
func (s *scriptedStore) UpdateOrderStatus(context.Context, int64, domain.OrderStatus) error {
	return nil
}

type captureTransport struct {
	mu   sync.Mutex
	sent []string
}

func (c *captureTransport) Send(_ context.Context, _ int64, msg domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg.Text)
	return nil
}

func (c *captureTransport) texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.sent))
	copy(out, c.sent)
	return out
}

type serviceFixture struct {
	service   *Service
	store     *scriptedStore
	transport *captureTransport
	state     *state.Memory
	engine    *policy.Engine
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	store := &scriptedStore{}
	transport := &captureTransport{}
	stateRepo := state.NewMemory()
	engine := policy.NewEngine(3, nil)
	clock := clockwork.NewFakeClock()

	det := detector.New(store, clock, 50, 10)
	disp := dispatch.New(transport, 1, clockwork.NewRealClock(), nil)

	return &serviceFixture{
		service:   NewService(det, engine, disp, stateRepo, clock, time.Hour, nil),
		store:     store,
		transport: transport,
		state:     stateRepo,
		engine:    engine,
	}
}

func productAt(id int64, stock int) domain.Product {
	return domain.Product{ID: id, Name: "Mug", Price: decimal.NewFromInt(12), Stock: &stock}
}

func TestTick_ColdStartFiresNothing(t *testing.T) {
	f := newServiceFixture(t)
	f.store.set([]domain.Product{productAt(1, 2)}, nil, nil)

	f.service.tick(context.Background())

	assert.Empty(t, f.transport.texts(), "no baseline means no crossings")

	snap, err := f.state.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap, "baseline persisted")
	assert.Contains(t, snap.Products, int64(1))
}

func TestTick_LowStockCrossingFiresOnce(t *testing.T) {
	f := newServiceFixture(t)

	f.store.set([]domain.Product{productAt(1, 10)}, nil, nil)
	f.service.tick(context.Background())
	require.Empty(t, f.transport.texts())

	f.store.set([]domain.Product{productAt(1, 3)}, nil, nil)
	f.service.tick(context.Background())
	require.Len(t, f.transport.texts(), 1)
	assert.Contains(t, f.transport.texts()[0], "Low Stock Alert")

	// still below threshold, no repeat
	f.store.set([]domain.Product{productAt(1, 2)}, nil, nil)
	f.service.tick(context.Background())
	assert.Len(t, f.transport.texts(), 1)

	// recovery clears the record silently
	f.store.set([]domain.Product{productAt(1, 8)}, nil, nil)
	f.service.tick(context.Background())
	assert.Len(t, f.transport.texts(), 1)

	// re-breach fires again
	f.store.set([]domain.Product{productAt(1, 1)}, nil, nil)
	f.service.tick(context.Background())
	assert.Len(t, f.transport.texts(), 2)
}

func TestTick_NewOrderAlert(t *testing.T) {
	f := newServiceFixture(t)

	f.store.set(nil, []domain.Order{{ID: 7, Total: decimal.NewFromInt(40), Status: domain.OrderPending, Customer: "Jane"}}, nil)
	f.service.tick(context.Background())
	require.Empty(t, f.transport.texts(), "orders present at cold start are not new")

	f.store.set(nil, []domain.Order{
		{ID: 7, Total: decimal.NewFromInt(40), Status: domain.OrderPending, Customer: "Jane"},
		{ID: 8, Total: decimal.NewFromInt(90), Status: domain.OrderProcessing, Customer: "Ali"},
	}, nil)
	f.service.tick(context.Background())

	texts := f.transport.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "New Order")
	assert.Contains(t, texts[0], "Ali")
}

func TestTick_OutageFiresExactlyOnceAndRecovers(t *testing.T) {
	f := newServiceFixture(t)
	failure := &domain.StoreError{Kind: domain.KindUnreachable, Op: "products.list"}

	f.store.set(nil, nil, failure)
	f.service.tick(context.Background())
	f.service.tick(context.Background())
	require.Empty(t, f.transport.texts(), "below threshold")

	f.service.tick(context.Background())
	require.Len(t, f.transport.texts(), 1, "third consecutive failure fires the outage")
	assert.Contains(t, f.transport.texts()[0], "API failures")

	f.service.tick(context.Background())
	assert.Len(t, f.transport.texts(), 1, "fourth failure stays silent")

	f.store.set(nil, nil, nil)
	f.service.tick(context.Background())
	require.Len(t, f.transport.texts(), 2)
	assert.Contains(t, f.transport.texts()[1], "recovered")
}

func TestTick_CredentialFailureIsDistinctAndSingle(t *testing.T) {
	f := newServiceFixture(t)
	failure := &domain.StoreError{Kind: domain.KindUnauthorized, Op: "products.list"}

	f.store.set(nil, nil, failure)
	f.service.tick(context.Background())
	require.Len(t, f.transport.texts(), 1, "credential failures alert immediately")
	assert.Contains(t, f.transport.texts()[0], "credentials")

	f.service.tick(context.Background())
	assert.Len(t, f.transport.texts(), 1)
}

func TestTick_RestartDoesNotRefireActiveConditions(t *testing.T) {
	f := newServiceFixture(t)

	f.store.set([]domain.Product{productAt(1, 10)}, nil, nil)
	f.service.tick(context.Background())
	f.store.set([]domain.Product{productAt(1, 3)}, nil, nil)
	f.service.tick(context.Background())
	require.Len(t, f.transport.texts(), 1)

	// rebuild the pipeline from persisted state, as a restart would
	records, err := f.state.AlertRecords(context.Background())
	require.NoError(t, err)
	engine := policy.NewEngine(3, records)
	clock := clockwork.NewFakeClock()
	det := detector.New(f.store, clock, 50, 10)
	disp := dispatch.New(f.transport, 1, clockwork.NewRealClock(), nil)
	restarted := NewService(det, engine, disp, f.state, clock, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go restarted.Run(ctx)
	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	cancel()

	assert.Len(t, f.transport.texts(), 1, "active low-stock record survives the restart")
}

func TestRun_TicksOnSchedule(t *testing.T) {
	f := newServiceFixture(t)
	f.store.set([]domain.Product{productAt(1, 10)}, nil, nil)

	clock := clockwork.NewFakeClock()
	det := detector.New(f.store, clock, 50, 10)
	disp := dispatch.New(f.transport, 1, clockwork.NewRealClock(), nil)
	svc := NewService(det, f.engine, disp, f.state, clock, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() { svc.Run(ctx); close(done) }()

	// first tick happens immediately; wait for the ticker to be armed
	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))

	f.store.set([]domain.Product{productAt(1, 2)}, nil, nil)
	clock.Advance(time.Hour)

	require.Eventually(t, func() bool {
		return len(f.transport.texts()) == 1
	}, 5*time.Second, 10*time.Millisecond, "scheduled tick detected the crossing")

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poll loop did not stop on cancellation")
	}
}
