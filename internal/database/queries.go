package database

// TokenConstraint is the unique constraint guarding order tokens
const TokenConstraint = "orders_token_key"

// Migration bookkeeping
const (
	createMigrationsTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`

	selectMigrationsSQL = `SELECT migration_name FROM schema_migrations`

	recordMigrationSQL = `INSERT INTO schema_migrations (migration_name) VALUES ($1)`
)

// Order writes
const (
	InsertOrderSQL = `
		INSERT INTO orders (token, customer_name, customer_age, table_number, total, status, payment_status, payment_session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, product_id, name, price, quantity, is_alcoholic)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	InsertOrderStatusLogSQL = `
		INSERT INTO order_status_log (order_id, status, changed_by, notes)
		VALUES ($1, $2, $3, $4)`

	UpdateOrderSQL = `
		UPDATE orders SET customer_name = $1, customer_age = $2, table_number = $3, total = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'pending'
		RETURNING updated_at`

	DeleteOrderItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`

	DeleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

// Order reads
const (
	orderColumns = `id, token, customer_name, customer_age, table_number, total, status, payment_status,
		COALESCE(payment_session_id, ''), created_at, updated_at`

	GetOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	GetOrderByTokenSQL = `SELECT ` + orderColumns + ` FROM orders WHERE token = $1`

	ListOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`

	ListOrderItemsSQL = `
		SELECT id, order_id, product_id, name, price, quantity, is_alcoholic
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id ASC`

	GetOrderStatusHistorySQL = `
		SELECT l.status, l.changed_by, l.changed_at, l.notes
		FROM order_status_log l
		JOIN orders o ON o.id = l.order_id
		WHERE o.token = $1
		ORDER BY l.changed_at ASC, l.id ASC`

	OrderExistsSQL        = `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`
	OrderExistsByTokenSQL = `SELECT EXISTS(SELECT 1 FROM orders WHERE token = $1)`
)
