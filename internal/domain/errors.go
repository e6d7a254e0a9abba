package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrTotalNegative = errors.New("total_minor must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrTotalMismatch = errors.New("order total does not match items sum")
	// Ошибка отсутствующего идентификатора товара в позиции заказа.
	ErrItemProductRequired = errors.New("item product_id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка отсутствующего названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отсутствующего кода товара.
	ErrProductCodeRequired = errors.New("product code is required")
	// Ошибка отрицательной цены товара.
	ErrProductPriceNegative = errors.New("product price must be non-negative")
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order_id is required")
	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderExists сигнализирует о конфликте: заказ с таким ключом уже записан.
	ErrOrderExists = errors.New("order already exists")
	// ErrEventTypeInvalid — неподдерживаемый тип события журнала.
	ErrEventTypeInvalid = errors.New("event type is not supported")
	// ErrEventScopeUnauthorized — запись в журнал событий вне разрешённого
	// partition-скоупа. Такая запись никогда не ретраится: повтор даст тот же
	// невалидный ключ.
	ErrEventScopeUnauthorized = errors.New("event write is outside the authorized partition scope")
)

// ProductsNotFoundError перечисляет идентификаторы товаров, которые не удалось
// разрешить через каталог при создании заказа.
type ProductsNotFoundError struct {
	IDs []string
}

func (e *ProductsNotFoundError) Error() string {
	return fmt.Sprintf("products not found: %s", strings.Join(e.IDs, ", "))
}

// Is позволяет проверять ошибку через errors.Is(err, ErrProductNotFound).
func (e *ProductsNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// IsClientError проверяет, относится ли ошибка к классу клиентских
// (не подлежащих автоматическому повтору).
func IsClientError(err error) bool {
	switch {
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrOrderExists),
		errors.Is(err, ErrEventScopeUnauthorized),
		errors.Is(err, ErrEventTypeInvalid),
		errors.Is(err, ErrCustomerRequired),
		errors.Is(err, ErrOrderIDRequired),
		errors.Is(err, ErrItemsRequired),
		errors.Is(err, ErrItemProductRequired),
		errors.Is(err, ErrItemQtyInvalid),
		errors.Is(err, ErrItemPriceInvalid),
		errors.Is(err, ErrProductNameRequired),
		errors.Is(err, ErrProductCodeRequired),
		errors.Is(err, ErrProductPriceNegative),
		errors.Is(err, ErrTotalNegative),
		errors.Is(err, ErrTotalMismatch):
		return true
	}

	var pnf *ProductsNotFoundError
	return errors.As(err, &pnf)
}
