package orders

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

// RetryConfig конфигурация повторов чтения каталога.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// getProductsWithRetry читает товары из каталога с ограниченным экспоненциальным
// backoff. Повторяются только временные ошибки хранилища; клиентские ошибки
// возвращаются сразу. Запись заказа не ретраится вовсе: её сбой прерывает
// всю операцию.
func (h *Handler) getProductsWithRetry(ids []string) ([]domain.Product, error) {
	var lastErr error
	delay := h.retry.InitialDelay

	for attempt := 1; attempt <= h.retry.MaxAttempts; attempt++ {
		products, err := h.catalog.GetByIDs(ids)
		if err == nil {
			if attempt > 1 {
				h.logger.WithField("attempt", attempt).Info("catalog read succeeded after retry")
			}
			return products, nil
		}

		lastErr = err
		if domain.IsClientError(err) {
			return nil, err
		}

		if attempt < h.retry.MaxAttempts {
			h.logger.WithError(err).WithFields(log.Fields{
				"attempt": attempt,
				"delay":   delay,
			}).Warn("catalog read failed, retrying")

			time.Sleep(delay)

			delay = time.Duration(float64(delay) * h.retry.BackoffFactor)
			if delay > h.retry.MaxDelay {
				delay = h.retry.MaxDelay
			}
		}
	}

	return nil, lastErr
}
