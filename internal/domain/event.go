package domain

import (
	"fmt"
	"strings"
	"time"
)

// EventType определяет тип события жизненного цикла заказа.
type EventType string

const (
	// EventTypeOrderCreated — заказ зафиксирован в хранилище заказов.
	EventTypeOrderCreated EventType = "ORDER_CREATED"
	// EventTypeOrderDeleted — заказ удалён из хранилища заказов.
	EventTypeOrderDeleted EventType = "ORDER_DELETED"
)

// EventScopePrefix — зарезервированный маркер partition-ключа журнала событий.
// Все записи журнала принадлежат ключам вида "#order_<orderID>", и слой
// хранения отклоняет любые записи вне этого шаблона.
const EventScopePrefix = "#order_"

// Valid проверяет, что тип события относится к поддерживаемым значениям.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeOrderCreated, EventTypeOrderDeleted:
		return true
	default:
		return false
	}
}

// OrderEvent — одна append-only запись журнала событий заказа.
// Пара (PartitionKey, SortKey) является первичным ключом: повторная доставка
// того же уведомления даёт тот же ключ, и запись не дублируется.
type OrderEvent struct {
	PartitionKey string
	SortKey      string
	OrderID      string
	CustomerID   string
	EventType    EventType
	Snapshot     []byte
	CreatedAt    time.Time
}

// ScopeKeyFor детерминированно строит partition-ключ журнала по идентификатору
// заказа. Одна и та же функция используется и при записи, и при авторизации,
// чтобы шаблон и фактический ключ не могли разойтись.
func ScopeKeyFor(orderID string) string {
	return EventScopePrefix + orderID
}

// SortKeyFor строит sort-ключ записи из типа события и момента его возникновения.
// Ключ детерминирован, поэтому дубликат уведомления (тот же orderID, тип и
// timestamp) попадает в ту же запись.
func SortKeyFor(eventType EventType, createdAt time.Time) string {
	return fmt.Sprintf("%s#%s", eventType, createdAt.UTC().Format(time.RFC3339Nano))
}

// NewOrderEvent собирает запись журнала, выводя ключи только из полей payload.
func NewOrderEvent(orderID, customerID string, eventType EventType, snapshot []byte, createdAt time.Time) OrderEvent {
	return OrderEvent{
		PartitionKey: ScopeKeyFor(orderID),
		SortKey:      SortKeyFor(eventType, createdAt),
		OrderID:      orderID,
		CustomerID:   customerID,
		EventType:    eventType,
		Snapshot:     snapshot,
		CreatedAt:    createdAt.UTC(),
	}
}

// AuthorizeEventWrite — предусловие слоя хранения журнала событий.
// Запись разрешена только когда partition-ключ лежит внутри зарезервированного
// шаблона и совпадает с ключом, выведенным из orderID самой записи.
func AuthorizeEventWrite(event OrderEvent) error {
	if event.OrderID == "" {
		return ErrOrderIDRequired
	}
	if !event.EventType.Valid() {
		return ErrEventTypeInvalid
	}
	if !strings.HasPrefix(event.PartitionKey, EventScopePrefix) {
		return ErrEventScopeUnauthorized
	}
	if event.PartitionKey != ScopeKeyFor(event.OrderID) {
		return ErrEventScopeUnauthorized
	}
	return nil
}
