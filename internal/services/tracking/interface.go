package tracking

import (
	"context"

	"smart-menu/internal/models"
)

// Store reads orders. Missing orders are reported as models.ErrOrderNotFound.
type Store interface {
	GetByToken(ctx context.Context, token string) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context) ([]*models.Order, error)
	History(ctx context.Context, token string) ([]models.OrderStatusHistory, error)
	Ping(ctx context.Context) error
}
