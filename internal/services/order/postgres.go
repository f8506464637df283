package order

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"smart-menu/internal/database"
	"smart-menu/internal/models"
)

// PostgresRepository stores orders in PostgreSQL
type PostgresRepository struct {
	db *database.DB
}

func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the order, its items and the initial status log row in one transaction
func (r *PostgresRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, database.InsertOrderSQL,
			order.Token,
			order.CustomerName,
			order.CustomerAge,
			order.TableNumber,
			order.Total,
			order.Status,
			order.PaymentStatus,
			order.PaymentSessionID,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			if database.IsUniqueViolation(err, database.TokenConstraint) {
				return ErrTokenConflict
			}
			return fmt.Errorf("insert order: %w", err)
		}

		if err := insertItems(ctx, tx, order); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, database.InsertOrderStatusLogSQL, order.ID, order.Status, ChangedBy, "order placed")
		if err != nil {
			return fmt.Errorf("insert status log: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	return r.db.GetOrder(ctx, database.GetOrderByIDSQL, id)
}

// Update rewrites the order header and replaces its items
func (r *PostgresRepository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, database.UpdateOrderSQL,
			order.CustomerName,
			order.CustomerAge,
			order.TableNumber,
			order.Total,
			order.ID,
		).Scan(&order.UpdatedAt)
		if err != nil {
			if database.IsNoRows(err) {
				return notEditableOrMissing(ctx, tx, order.ID)
			}
			return fmt.Errorf("update order: %w", err)
		}

		if _, err := tx.Exec(ctx, database.DeleteOrderItemsSQL, order.ID); err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		return insertItems(ctx, tx, order)
	})
}

// notEditableOrMissing tells a status change that raced the edit apart from a deleted order
func notEditableOrMissing(ctx context.Context, tx pgx.Tx, id int64) error {
	var exists bool
	if err := tx.QueryRow(ctx, database.OrderExistsSQL, id).Scan(&exists); err != nil {
		return fmt.Errorf("check order exists: %w", err)
	}
	if exists {
		return ErrNotEditable
	}
	return ErrNotFound
}

// UpdateStatus stores the order's status and payment status and appends to the status log
func (r *PostgresRepository) UpdateStatus(ctx context.Context, order *models.Order, changedBy, notes string) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, database.UpdateOrderStatusSQL, order.Status, order.PaymentStatus, order.ID).Scan(&order.UpdatedAt)
		if err != nil {
			if database.IsNoRows(err) {
				return ErrNotFound
			}
			return fmt.Errorf("update order status: %w", err)
		}

		_, err = tx.Exec(ctx, database.InsertOrderStatusLogSQL, order.ID, order.Status, changedBy, notes)
		if err != nil {
			return fmt.Errorf("insert status log: %w", err)
		}
		return nil
	})
}

// Delete removes the order; items and status log rows cascade
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, database.DeleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func insertItems(ctx context.Context, tx pgx.Tx, order *models.Order) error {
	batch := &pgx.Batch{}
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		batch.Queue(database.InsertOrderItemSQL,
			order.ID,
			item.ProductID,
			item.Name,
			item.Price,
			item.Quantity,
			item.IsAlcoholic,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&item.ID)
		})
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}
