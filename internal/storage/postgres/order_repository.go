package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			customer_id, id, status, total_minor, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		order.CustomerID, order.ID, string(order.Status),
		order.TotalMinor, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				customer_id, order_id, position, product_id, qty, price_minor
			) VALUES ($1,$2,$3,$4,$5,$6)
		`,
			order.CustomerID, order.ID, i, item.ProductID, item.Qty, item.PriceMinor,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

func (r *orderRepository) Get(customerID, orderID string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	order, err := r.getTx(ctx, r.db, customerID, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	items, err := r.loadItems(ctx, customerID, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) ListByCustomer(customerID string) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT customer_id, id, status, total_minor, created_at, updated_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		var status string
		if err := rows.Scan(
			&order.CustomerID, &order.ID, &status,
			&order.TotalMinor, &order.CreatedAt, &order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		order.Status = domain.OrderStatus(status)

		items, err := r.loadItems(ctx, order.CustomerID, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) Delete(customerID, orderID string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Снимаем последний снапшот до удаления: он уходит в событие ORDER_DELETED.
	order, err := r.getTx(ctx, tx, customerID, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	items, err := r.loadItemsTx(ctx, tx, customerID, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM orders
		WHERE customer_id = $1 AND id = $2
	`, customerID, orderID); err != nil {
		return domain.Order{}, fmt.Errorf("delete order: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit delete order: %w", err)
	}

	return order, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *orderRepository) getTx(ctx context.Context, q queryRower, customerID, orderID string) (domain.Order, error) {
	var order domain.Order
	var status string

	err := q.QueryRowContext(ctx, `
		SELECT customer_id, id, status, total_minor, created_at, updated_at
		FROM orders
		WHERE customer_id = $1 AND id = $2
	`, customerID, orderID).Scan(
		&order.CustomerID, &order.ID, &status,
		&order.TotalMinor, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	order.Status = domain.OrderStatus(status)

	return order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, customerID, orderID string) ([]domain.OrderItem, error) {
	return r.loadItemsTx(ctx, r.db, customerID, orderID)
}

func (r *orderRepository) loadItemsTx(ctx context.Context, q queryRower, customerID, orderID string) ([]domain.OrderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT product_id, qty, price_minor
		FROM order_items
		WHERE customer_id = $1 AND order_id = $2
		ORDER BY position ASC
	`, customerID, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Qty, &item.PriceMinor); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
