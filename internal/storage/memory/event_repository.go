package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

type eventKey struct {
	partitionKey string
	sortKey      string
}

// eventRepositoryInMemory — in-memory журнал событий заказов.
// Повторяет семантику PostgreSQL-реализации: авторизация по partition-скоупу
// и идемпотентный append по ключу (partition, sort).
type eventRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[eventKey]domain.OrderEvent
}

// NewEventRepository создаёт in-memory реализацию EventRepository.
func NewEventRepository() domain.EventRepository {
	return &eventRepositoryInMemory{
		items: make(map[eventKey]domain.OrderEvent),
	}
}

// Append добавляет запись журнала; дубликат ключа — no-op.
func (r *eventRepositoryInMemory) Append(event domain.OrderEvent) error {
	if err := domain.AuthorizeEventWrite(event); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := eventKey{partitionKey: event.PartitionKey, sortKey: event.SortKey}
	if _, exists := r.items[key]; exists {
		return nil
	}
	r.items[key] = event
	return nil
}

// ListByOrder возвращает записи журнала одного заказа в порядке sort-ключа.
func (r *eventRepositoryInMemory) ListByOrder(orderID string) ([]domain.OrderEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	partitionKey := domain.ScopeKeyFor(orderID)
	events := make([]domain.OrderEvent, 0)
	for key, event := range r.items {
		if key.partitionKey != partitionKey {
			continue
		}
		events = append(events, event)
	}

	sort.Slice(events, func(i, j int) bool { return events[i].SortKey < events[j].SortKey })

	return events, nil
}

var _ domain.EventRepository = (*eventRepositoryInMemory)(nil)
