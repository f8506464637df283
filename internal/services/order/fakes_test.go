package order

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"smart-menu/internal/catalog"
	"smart-menu/internal/logger"
	"smart-menu/internal/models"
	"smart-menu/internal/payment"
)

type statusLogEntry struct {
	orderID   int64
	status    models.OrderStatus
	changedBy string
}

type memRepository struct {
	mu        sync.Mutex
	nextID    int64
	orders    map[int64]*models.Order
	tokens    map[string]int64
	statusLog []statusLogEntry
	createErr error
	createCtx context.Context
	// beforeUpdate runs ahead of Update, standing in for a writer that lands between read and write
	beforeUpdate func()
}

func newMemRepository() *memRepository {
	return &memRepository{
		orders: make(map[int64]*models.Order),
		tokens: make(map[string]int64),
	}
}

func (m *memRepository) Create(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCtx = ctx
	if m.createErr != nil {
		return m.createErr
	}
	if _, taken := m.tokens[order.Token]; taken {
		return ErrTokenConflict
	}

	m.nextID++
	order.ID = m.nextID
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
		order.Items[i].OrderID = order.ID
	}

	m.orders[order.ID] = cloneOrder(order)
	m.tokens[order.Token] = order.ID
	m.statusLog = append(m.statusLog, statusLogEntry{order.ID, order.Status, ChangedBy})
	return nil
}

func (m *memRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (m *memRepository) Update(ctx context.Context, order *models.Order) error {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.orders[order.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != models.StatusPending {
		return ErrNotEditable
	}
	order.UpdatedAt = time.Now().UTC()
	m.orders[order.ID] = cloneOrder(order)
	return nil
}

func (m *memRepository) UpdateStatus(ctx context.Context, order *models.Order, changedBy, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.orders[order.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Status = order.Status
	stored.PaymentStatus = order.PaymentStatus
	m.statusLog = append(m.statusLog, statusLogEntry{order.ID, order.Status, changedBy})
	return nil
}

func (m *memRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.tokens, o.Token)
	delete(m.orders, id)
	return nil
}

func (m *memRepository) Ping(ctx context.Context) error { return nil }

func (m *memRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), o.Items...)
	return &c
}

type fakeGateway struct {
	mu    sync.Mutex
	err   error
	calls int
	last  payment.CheckoutRequest
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	g.last = req
	if g.err != nil {
		return nil, g.err
	}
	return &payment.Session{ID: "cs_test_" + req.Token, URL: "https://checkout.test/" + req.Token}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []*models.OrderEvent
}

func (p *fakePublisher) PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errGatewayDown = errors.New("gateway unavailable")

type fixture struct {
	repo      *memRepository
	gateway   *fakeGateway
	publisher *fakePublisher
	service   *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:      newMemRepository(),
		gateway:   &fakeGateway{},
		publisher: &fakePublisher{},
	}
	f.service = NewService(f.repo, f.gateway, f.publisher, catalog.Default(), logger.NewWithWriter("test", io.Discard))
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func burgerAndFries() *models.OrderRequest {
	return &models.OrderRequest{
		CustomerName: "Ana",
		CustomerAge:  25,
		TableNumber:  7,
		Items: []models.OrderRequestItem{
			{ID: "burger", Name: "Burger Clássico", Price: dec("25.90"), Quantity: 2},
			{ID: "fries", Name: "Batata Frita", Price: dec("12.90"), Quantity: 1},
		},
		Total: dec("64.69"),
	}
}
