package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

type orderKey struct {
	customerID string
	orderID    string
}

// orderRepositoryInMemory — in-memory реализация OrderRepository с составным ключом.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[orderKey]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[orderKey]domain.Order),
	}
}

// Create сохраняет новый заказ, если составной ключ ещё не занят.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := orderKey{customerID: order.CustomerID, orderID: order.ID}
	if _, exists := r.items[key]; exists {
		return domain.ErrOrderExists
	}
	// Сохраняем копию позиций, чтобы избежать мутаций извне.
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	r.items[key] = order
	return nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(customerID, orderID string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[orderKey{customerID: customerID, orderID: orderID}]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListByCustomer возвращает заказы внутри скоупа клиента.
func (r *orderRepositoryInMemory) ListByCustomer(customerID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for key, order := range r.items {
		if key.customerID != customerID {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

// Delete удаляет заказ и возвращает его последнее состояние.
func (r *orderRepositoryInMemory) Delete(customerID, orderID string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := orderKey{customerID: customerID, orderID: orderID}
	order, ok := r.items[key]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	delete(r.items, key)
	return order, nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
