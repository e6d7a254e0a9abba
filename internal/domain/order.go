package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — запрос принят, но запись ещё не зафиксирована в хранилище.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusCreated — заказ зафиксирован в хранилище заказов.
	OrderStatusCreated OrderStatus = "created"
	// OrderStatusDeleted — заказ удалён; статус живёт только в снапшоте события.
	OrderStatusDeleted OrderStatus = "deleted"
)

// OrderItem представляет одну позицию заказа.
// PriceMinor фиксируется из каталога в момент создания заказа и больше не перечитывается.
type OrderItem struct {
	ProductID  string
	Qty        int32
	PriceMinor int64
}

// Order агрегирует состояние заказа. Ключ записи составной:
// CustomerID задаёт partition (скоуп клиента), ID — sort key заказа.
type Order struct {
	CustomerID string
	ID         string
	Status     OrderStatus
	Items      []OrderItem
	TotalMinor int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ItemsTotalMinor считает сумму позиций: qty * price в минорных единицах.
func ItemsTotalMinor(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += int64(item.Qty) * item.PriceMinor
	}
	return total
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalMinor < 0 {
		errs = append(errs, ErrTotalNegative)
	}

	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrItemProductRequired)
		}
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}

	// Сумма заказа обязана совпадать с суммой позиций на момент создания.
	if ItemsTotalMinor(o.Items) != o.TotalMinor {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}
