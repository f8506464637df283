package acceptance

import (
	"context"
	"sort"
	"sync"
	"time"

	"smart-menu/internal/models"
)

// memoryStore backs both the order writer and the tracking reader
type memoryStore struct {
	mu      sync.Mutex
	nextID  int64
	orders  map[int64]*models.Order
	history map[string][]models.OrderStatusHistory
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		orders:  make(map[int64]*models.Order),
		history: make(map[string][]models.OrderStatusHistory),
	}
}

func (s *memoryStore) Create(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orders {
		if existing.Token == order.Token {
			return models.ErrTokenConflict
		}
	}

	s.nextID++
	now := time.Now().UTC()
	order.ID, order.CreatedAt, order.UpdatedAt = s.nextID, now, now
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
		order.Items[i].OrderID = order.ID
	}

	s.orders[order.ID] = clone(order)
	s.history[order.Token] = append(s.history[order.Token], models.OrderStatusHistory{Status: order.Status, ChangedBy: "order-service", ChangedAt: now})
	return nil
}

func (s *memoryStore) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return clone(order), nil
}

func (s *memoryStore) GetByToken(ctx context.Context, token string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, order := range s.orders {
		if order.Token == token {
			return clone(order), nil
		}
	}
	return nil, models.ErrOrderNotFound
}

func (s *memoryStore) List(ctx context.Context) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, clone(order))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memoryStore) History(ctx context.Context, token string) ([]models.OrderStatusHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.history[token]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return append([]models.OrderStatusHistory(nil), entries...), nil
}

func (s *memoryStore) Update(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[order.ID]
	if !ok {
		return models.ErrOrderNotFound
	}
	if stored.Status != models.StatusPending {
		return models.ErrOrderNotEditable
	}
	order.UpdatedAt = time.Now().UTC()
	s.orders[order.ID] = clone(order)
	return nil
}

func (s *memoryStore) UpdateStatus(ctx context.Context, order *models.Order, changedBy, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[order.ID]
	if !ok {
		return models.ErrOrderNotFound
	}
	stored.Status, stored.PaymentStatus = order.Status, order.PaymentStatus
	stored.UpdatedAt = time.Now().UTC()
	s.history[stored.Token] = append(s.history[stored.Token], models.OrderStatusHistory{Status: order.Status, ChangedBy: changedBy, ChangedAt: stored.UpdatedAt})
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return models.ErrOrderNotFound
	}
	delete(s.history, order.Token)
	delete(s.orders, id)
	return nil
}

func (s *memoryStore) Ping(ctx context.Context) error { return nil }

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func clone(order *models.Order) *models.Order {
	c := *order
	c.Items = append([]models.OrderItem(nil), order.Items...)
	return &c
}
