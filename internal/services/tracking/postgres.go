package tracking

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"smart-menu/internal/database"
	"smart-menu/internal/models"
)

// PostgresStore reads orders from PostgreSQL
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetByToken(ctx context.Context, token string) (*models.Order, error) {
	return s.db.GetOrder(ctx, database.GetOrderByTokenSQL, token)
}

func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	return s.db.GetOrder(ctx, database.GetOrderByIDSQL, id)
}

// List returns every order, newest first
func (s *PostgresStore) List(ctx context.Context) ([]*models.Order, error) {
	rows, err := s.db.Query(ctx, database.ListOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	orders, err := database.ScanOrders(rows)
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	if err := s.db.AttachItems(ctx, orders...); err != nil {
		return nil, err
	}
	return orders, nil
}

// History returns the status log of the order with token, oldest first
func (s *PostgresStore) History(ctx context.Context, token string) ([]models.OrderStatusHistory, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, database.OrderExistsByTokenSQL, token).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check order existence: %w", err)
	}
	if !exists {
		return nil, models.ErrOrderNotFound
	}

	rows, err := s.db.Query(ctx, database.GetOrderStatusHistorySQL, token)
	if err != nil {
		return nil, fmt.Errorf("query order history: %w", err)
	}
	history, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.OrderStatusHistory, error) {
		var entry models.OrderStatusHistory
		err := row.Scan(&entry.Status, &entry.ChangedBy, &entry.ChangedAt, &entry.Notes)
		return entry, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan order history: %w", err)
	}
	return history, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
