package domain

// CatalogRepository описывает требования к хранилищу каталога товаров.
// Каталог принадлежит на запись только своему CRUD-фасаду; путь заказов
// пользуется исключительно чтением.
type CatalogRepository interface {
	// ListAll возвращает все товары; пустой каталог — пустой срез, не ошибка.
	ListAll() ([]Product, error)
	// GetByID возвращает товар или ErrProductNotFound, если его нет.
	GetByID(id string) (Product, error)
	// GetByIDs возвращает найденное подмножество без гарантии порядка;
	// отсутствующие идентификаторы не являются ошибкой.
	GetByIDs(ids []string) ([]Product, error)
	// Create сохраняет товар, безусловно перезаписав ID свежесгенерированным.
	Create(product Product) (Product, error)
	// Update заменяет изменяемые поля при условии, что запись уже существует;
	// иначе ErrProductNotFound. Слепой upsert запрещён.
	Update(id string, product Product) (Product, error)
	// Delete удаляет товар и возвращает его финальное состояние,
	// или ErrProductNotFound.
	Delete(id string) (Product, error)
}

// OrderRepository описывает требования к хранилищу заказов с составным ключом
// (customerID, orderID).
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ErrOrderExists, если запись
	// с таким ключом уже есть.
	Create(order Order) error
	// Get возвращает заказ по составному ключу или ErrOrderNotFound.
	Get(customerID, orderID string) (Order, error)
	// ListByCustomer возвращает все заказы внутри скоупа клиента.
	ListByCustomer(customerID string) ([]Order, error)
	// Delete удаляет заказ и возвращает его последнее состояние,
	// или ErrOrderNotFound.
	Delete(customerID, orderID string) (Order, error)
}

// EventRepository — append-only журнал событий заказов.
// Реализация обязана вычислять предусловие AuthorizeEventWrite сама и отклонять
// записи вне разрешённого partition-скоупа, не полагаясь на дисциплину вызывающего.
type EventRepository interface {
	// Append добавляет запись журнала. Дубликат ключа (partition, sort) — no-op.
	// Запись вне скоупа "#order_*" отклоняется с ErrEventScopeUnauthorized.
	Append(event OrderEvent) error
	// ListByOrder возвращает записи журнала одного заказа в порядке sort-ключа.
	ListByOrder(orderID string) ([]OrderEvent, error)
}
