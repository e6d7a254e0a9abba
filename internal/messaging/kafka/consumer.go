package kafka

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderlog/internal/domain"
)

// MessageHandler обрабатывает сообщение из Kafka
type MessageHandler func(ctx context.Context, message *sarama.ConsumerMessage) error

// Consumer представляет Kafka consumer с поддержкой DLQ
type Consumer struct {
	consumer      sarama.ConsumerGroup
	topics        []string
	handler       MessageHandler
	logger        *log.Entry
	wg            sync.WaitGroup
	dlqProducer   *Producer     // Producer для отправки в DLQ
	maxRetries    int           // Максимальное количество попыток обработки
	retryDelay    time.Duration // Начальная задержка между попытками
	retryMaxDelay time.Duration // Потолок экспоненциального backoff
}

// NewConsumer создает новый Kafka consumer
func NewConsumer(brokers []string, groupID string, topics []string, handler MessageHandler) (*Consumer, error) {
	return NewConsumerWithDLQ(brokers, groupID, topics, handler, nil, 3)
}

// NewConsumerWithDLQ создает consumer с поддержкой Dead Letter Queue
func NewConsumerWithDLQ(brokers []string, groupID string, topics []string, handler MessageHandler, dlqProducer *Producer, maxRetries int) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Return.Errors = true

	consumer, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	return &Consumer{
		consumer:      consumer,
		topics:        topics,
		handler:       handler,
		logger:        log.WithField("component", "kafka-consumer"),
		dlqProducer:   dlqProducer,
		maxRetries:    maxRetries,
		retryDelay:    100 * time.Millisecond,
		retryMaxDelay: 2 * time.Second,
	}, nil
}

// Start запускает consumer
func (c *Consumer) Start(ctx context.Context) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			// Consume должен вызываться в цикле, так как при rebalance он завершается
			if err := c.consumer.Consume(ctx, c.topics, c); err != nil {
				c.logger.WithError(err).Error("error from consumer")
			}

			if ctx.Err() != nil {
				return
			}
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range c.consumer.Errors() {
			c.logger.WithError(err).Error("consumer error")
		}
	}()

	c.logger.WithField("topics", c.topics).Info("kafka consumer started")
	return nil
}

// Stop останавливает consumer
func (c *Consumer) Stop() error {
	if err := c.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	c.wg.Wait()
	c.logger.Info("kafka consumer stopped")
	return nil
}

// Setup вызывается при старте consumer session
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup вызывается при завершении consumer session
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim обрабатывает сообщения из partition
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			c.logger.WithFields(log.Fields{
				"topic":     message.Topic,
				"partition": message.Partition,
				"offset":    message.Offset,
			}).Debug("received message")

			if err := c.handleMessageWithRetry(session.Context(), message); err != nil {
				c.logger.WithError(err).WithFields(log.Fields{
					"topic":     message.Topic,
					"partition": message.Partition,
					"offset":    message.Offset,
				}).Error("message processing failed after all retries")
				// Не маркируем и выходим из claim: сессия перечитает partition
				// с закоммиченного offset, и сообщение будет доставлено снова.
				// Иначе mark следующего offset продвинул бы watermark мимо него.
				return err
			}

			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// handleMessageWithRetry обрабатывает сообщение, повторяя временные сбои
// внутри процесса с ограниченным экспоненциальным backoff. Исчерпав попытки,
// отправляет сообщение в DLQ; без DLQ возвращает ошибку, и claim завершается
// без mark — сообщение будет доставлено брокером повторно.
func (c *Consumer) handleMessageWithRetry(ctx context.Context, message *sarama.ConsumerMessage) error {
	// Заголовок x-retry-count есть у переигранных из DLQ сообщений: их бюджет
	// попыток уже частично израсходован.
	prior := c.getRetryCount(message)
	attempts := c.maxRetries - prior
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	total := prior
	delay := c.retryDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.handler(ctx, message)
		if err == nil {
			if attempt > 1 {
				c.logger.WithFields(log.Fields{
					"topic":   message.Topic,
					"attempt": attempt,
				}).Info("message processed after retry")
			}
			return nil
		}

		total++
		lastErr = err

		// Клиентские ошибки (в том числе запись вне partition-скоупа) не
		// ретраятся: повтор даст тот же результат. Сразу в DLQ и алерт через логи.
		if domain.IsClientError(err) {
			break
		}
		if attempt == attempts {
			break
		}

		c.logger.WithError(err).WithFields(log.Fields{
			"topic":       message.Topic,
			"retry_count": total,
			"max_retries": c.maxRetries,
			"delay":       delay,
		}).Warn("message processing failed, will retry")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay *= 2
		if delay > c.retryMaxDelay {
			delay = c.retryMaxDelay
		}
	}

	if c.dlqProducer != nil {
		if dlqErr := c.sendToDLQ(message, lastErr, total); dlqErr != nil {
			c.logger.WithError(dlqErr).Error("failed to send message to DLQ")
			return fmt.Errorf("failed to send to DLQ: %w", dlqErr)
		}
		c.logger.WithError(lastErr).WithFields(log.Fields{
			"topic":       message.Topic,
			"retry_count": total,
		}).Warn("message sent to DLQ")
		return nil // Считаем обработанным, так как отправили в DLQ
	}

	return lastErr
}

// getRetryCount извлекает retry count из headers сообщения
func (c *Consumer) getRetryCount(message *sarama.ConsumerMessage) int {
	for _, header := range message.Headers {
		if string(header.Key) == HeaderRetryCount {
			count, err := strconv.Atoi(string(header.Value))
			if err == nil {
				return count
			}
		}
	}
	return 0
}

// sendToDLQ отправляет failed message в Dead Letter Queue. Суммарное число
// попыток уходит и в payload, и в заголовок x-retry-count записи DLQ.
func (c *Consumer) sendToDLQ(message *sarama.ConsumerMessage, processingErr error, retryCount int) error {
	dlqMessage := map[string]interface{}{
		"original_topic":     message.Topic,
		"original_partition": message.Partition,
		"original_offset":    message.Offset,
		"original_key":       string(message.Key),
		"original_value":     string(message.Value),
		"error_message":      processingErr.Error(),
		"failed_at":          time.Now().UTC().Format(time.RFC3339),
		"retry_count":        retryCount,
	}

	return c.dlqProducer.PublishEventWithHeaders(
		TopicDeadLetterQueue,
		string(message.Key),
		map[string]string{HeaderRetryCount: strconv.Itoa(retryCount)},
		dlqMessage,
	)
}
