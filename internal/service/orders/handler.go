package orders

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
	"github.com/vladislavdragonenkov/orderlog/internal/metrics"
)

// ItemRequest — одна позиция входящего запроса на создание заказа.
// Цена не принимается от клиента: она снимается из каталога в момент создания.
type ItemRequest struct {
	ProductID string
	Qty       int32
}

// CreateRequest — запрос на создание заказа.
type CreateRequest struct {
	CustomerID string
	Items      []ItemRequest
}

// Result — двухфазный исход операции: заказ зафиксирован в хранилище,
// а публикация события могла не состояться. Published=false не откатывает
// запись: восстановление — задача внешней сверки.
type Result struct {
	Order     domain.Order
	Published bool
}

// Handler принимает запросы на создание/удаление заказов: валидирует товары
// через каталог, фиксирует запись в хранилище заказов и публикует доменное
// событие об исходе.
type Handler struct {
	catalog   domain.CatalogRepository
	orders    domain.OrderRepository
	publisher domain.EventPublisher
	logger    *log.Entry
	metrics   *metrics.PipelineMetrics
	retry     RetryConfig
	now       func() time.Time
}

// NewHandler конструирует обработчик заказов с зависимостями.
func NewHandler(
	catalog domain.CatalogRepository,
	orders domain.OrderRepository,
	publisher domain.EventPublisher,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "order-handler")
	}
	return &Handler{
		catalog:   catalog,
		orders:    orders,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics.NewPipelineMetrics(),
		retry:     DefaultRetryConfig(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder проводит заказ через RECEIVED → VALIDATED → PERSISTED → PUBLISHED.
// Любая ошибка до записи в хранилище прерывает операцию без частичной записи;
// ошибка публикации после записи логируется, но заказ не откатывается.
func (h *Handler) CreateOrder(req CreateRequest) (Result, error) {
	started := h.now()

	if req.CustomerID == "" {
		return Result{}, domain.ErrCustomerRequired
	}
	if len(req.Items) == 0 {
		return Result{}, domain.ErrItemsRequired
	}
	for _, item := range req.Items {
		if item.ProductID == "" {
			return Result{}, domain.ErrItemProductRequired
		}
		if item.Qty <= 0 {
			return Result{}, domain.ErrItemQtyInvalid
		}
	}

	products, err := h.resolveProducts(req.Items)
	if err != nil {
		return Result{}, err
	}

	now := h.now()
	order := domain.Order{
		CustomerID: req.CustomerID,
		ID:         uuid.NewString(),
		Status:     domain.OrderStatusCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, item := range req.Items {
		// Снимок цены: заказ остаётся валидным при последующих изменениях каталога.
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: products[item.ProductID].PriceMinor,
		})
	}
	order.TotalMinor = domain.ItemsTotalMinor(order.Items)

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return Result{}, errs[0]
	}

	// Точка фиксации: после успешной записи операция не откатывается.
	if err := h.orders.Create(order); err != nil {
		return Result{}, err
	}
	h.metrics.RecordOrderCreated()
	h.metrics.ObserveCreateDuration(h.now().Sub(started).Seconds())

	published := h.publish(domain.OrderNotification{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		EventType:  domain.EventTypeOrderCreated,
		Snapshot:   order,
		Timestamp:  h.now(),
	})

	return Result{Order: order, Published: published}, nil
}

// DeleteOrder удаляет заказ и публикует ORDER_DELETED с последним снапшотом.
func (h *Handler) DeleteOrder(customerID, orderID string) (Result, error) {
	if customerID == "" {
		return Result{}, domain.ErrCustomerRequired
	}
	if orderID == "" {
		return Result{}, domain.ErrOrderIDRequired
	}

	order, err := h.orders.Delete(customerID, orderID)
	if err != nil {
		return Result{}, err
	}
	h.metrics.RecordOrderDeleted()

	order.Status = domain.OrderStatusDeleted
	published := h.publish(domain.OrderNotification{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		EventType:  domain.EventTypeOrderDeleted,
		Snapshot:   order,
		Timestamp:  h.now(),
	})

	return Result{Order: order, Published: published}, nil
}

// GetOrder возвращает заказ по составному ключу.
func (h *Handler) GetOrder(customerID, orderID string) (domain.Order, error) {
	return h.orders.Get(customerID, orderID)
}

// ListOrders возвращает заказы внутри скоупа клиента.
func (h *Handler) ListOrders(customerID string) ([]domain.Order, error) {
	return h.orders.ListByCustomer(customerID)
}

// resolveProducts снимает цены по каждому уникальному товару запроса.
// Частичный ответ каталога сверяется с запросом здесь: неразрешённые
// идентификаторы — клиентская ошибка, перечисляющая их все.
func (h *Handler) resolveProducts(items []ItemRequest) (map[string]domain.Product, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	products, err := h.getProductsWithRetry(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.ProductsNotFoundError{IDs: missing}
	}

	return byID, nil
}

func (h *Handler) publish(notification domain.OrderNotification) bool {
	if err := h.publisher.PublishOrderEvent(notification); err != nil {
		// Заказ уже зафиксирован: публикация не откатывает запись,
		// расхождение закрывает внешняя сверка.
		h.logger.WithError(err).WithFields(log.Fields{
			"order_id":   notification.OrderID,
			"event_type": notification.EventType,
		}).Error("order committed but event publish failed")
		h.metrics.RecordPublish(metrics.ResultError)
		return false
	}

	h.metrics.RecordPublish(metrics.ResultOK)
	return true
}
