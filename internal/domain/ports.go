package domain

import "time"

// EventPublisher публикует доменные события заказов во внешний канал fan-out.
// Доставка at-least-once, порядок между подписчиками не гарантирован.
type EventPublisher interface {
	// PublishOrderEvent отправляет уведомление о событии заказа.
	PublishOrderEvent(notification OrderNotification) error
}

// OrderNotification — полезная нагрузка уведомления, уходящего в топик событий.
// Timestamp входит в ключ дедупликации на стороне потребителя, поэтому
// выставляется один раз при публикации и не меняется при повторных доставках.
type OrderNotification struct {
	OrderID    string
	CustomerID string
	EventType  EventType
	Snapshot   Order
	Timestamp  time.Time
}
