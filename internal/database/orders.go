package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"smart-menu/internal/models"
)

// ScanOrder reads one order header row. pgx.ErrNoRows becomes models.ErrOrderNotFound.
func ScanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID,
		&o.Token,
		&o.CustomerName,
		&o.CustomerAge,
		&o.TableNumber,
		&o.Total,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentSessionID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}
	o.Items = []models.OrderItem{}
	return &o, nil
}

// ScanOrders reads every order header row and closes rows
func ScanOrders(rows pgx.Rows) ([]*models.Order, error) {
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		o, err := ScanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanOrderItem(row pgx.CollectableRow) (models.OrderItem, error) {
	var item models.OrderItem
	err := row.Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductID,
		&item.Name,
		&item.Price,
		&item.Quantity,
		&item.IsAlcoholic,
	)
	return item, err
}

// AttachItems loads the items of every given order with a single query
func (db *DB) AttachItems(ctx context.Context, orders ...*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := db.Query(ctx, ListOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return fmt.Errorf("scan order items: %w", err)
	}

	for _, item := range items {
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return nil
}

// GetOrder loads one order with its items using query and a single argument
func (db *DB) GetOrder(ctx context.Context, query string, arg interface{}) (*models.Order, error) {
	o, err := ScanOrder(db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	if err := db.AttachItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
