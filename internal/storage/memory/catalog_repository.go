package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

// catalogRepositoryInMemory — простая in-memory реализация CatalogRepository.
type catalogRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewCatalogRepository возвращает in-memory каталог для локальной разработки и тестов.
func NewCatalogRepository() domain.CatalogRepository {
	return &catalogRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// ListAll возвращает все товары; пустой каталог — пустой срез.
func (r *catalogRepositoryInMemory) ListAll() ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, product)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

// GetByID возвращает товар или ErrProductNotFound, если его нет.
func (r *catalogRepositoryInMemory) GetByID(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// GetByIDs возвращает найденное подмножество; отсутствующие id не являются ошибкой.
func (r *catalogRepositoryInMemory) GetByIDs(ids []string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := r.items[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

// Create сохраняет товар, безусловно заменив ID свежесгенерированным.
func (r *catalogRepositoryInMemory) Create(product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = uuid.NewString()
	r.items[product.ID] = product
	return product, nil
}

// Update заменяет изменяемые поля при условии существования записи.
func (r *catalogRepositoryInMemory) Update(id string, product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	product.ID = id
	r.items[id] = product
	return product, nil
}

// Delete удаляет товар и возвращает его финальное состояние.
func (r *catalogRepositoryInMemory) Delete(id string) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	delete(r.items, id)
	return product, nil
}

var _ domain.CatalogRepository = (*catalogRepositoryInMemory)(nil)
