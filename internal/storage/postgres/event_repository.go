package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository создаёт PostgreSQL-реализацию append-only журнала событий.
func NewEventRepository(store *Store) domain.EventRepository {
	return &eventRepository{db: store.DB()}
}

func (r *eventRepository) Append(event domain.OrderEvent) error {
	// Авторизация вычисляется слоем хранения, а не предполагается за вызывающим:
	// ключ вне "#order_*" или не совпадающий с производным от orderID отклоняется.
	if err := domain.AuthorizeEventWrite(event); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// Повторная доставка того же уведомления даёт тот же первичный ключ,
	// поэтому дубликат превращается в no-op.
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO order_events (
			partition_key, sort_key, order_id, customer_id, event_type, snapshot, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (partition_key, sort_key) DO NOTHING
	`,
		event.PartitionKey, event.SortKey, event.OrderID, event.CustomerID,
		string(event.EventType), event.Snapshot, event.CreatedAt,
	); err != nil {
		return fmt.Errorf("append order event: %w", err)
	}

	return nil
}

func (r *eventRepository) ListByOrder(orderID string) ([]domain.OrderEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT partition_key, sort_key, order_id, customer_id, event_type, snapshot, created_at
		FROM order_events
		WHERE partition_key = $1
		ORDER BY sort_key ASC
	`, domain.ScopeKeyFor(orderID))
	if err != nil {
		return nil, fmt.Errorf("list order events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.OrderEvent, 0)
	for rows.Next() {
		var event domain.OrderEvent
		var eventType string
		if err := rows.Scan(
			&event.PartitionKey, &event.SortKey, &event.OrderID, &event.CustomerID,
			&eventType, &event.Snapshot, &event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order event: %w", err)
		}
		event.EventType = domain.EventType(eventType)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order events: %w", err)
	}

	return events, nil
}

var _ domain.EventRepository = (*eventRepository)(nil)
