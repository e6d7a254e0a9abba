package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderlog/internal/messaging/kafka"
)

const (
	defaultReplayLimit = 100
	defaultIdleTimeout = 2 * time.Second
)

type config struct {
	brokers     []string
	sourceTopic string
	targetTopic string
	limit       int
	execute     bool
	idleTimeout time.Duration
}

// dlqPayload — формат записей DLQ, который пишет consumer при исчерпании retry.
type dlqPayload struct {
	OriginalTopic string `json:"original_topic"`
	OriginalKey   string `json:"original_key"`
	OriginalValue string `json:"original_value"`
	ErrorMessage  string `json:"error_message"`
	RetryCount    int    `json:"retry_count"`
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg := readFlags()
	logger := log.WithField("component", "dlq-reprocess")

	client, err := sarama.NewClient(cfg.brokers, sarama.NewConfig())
	if err != nil {
		fail("create kafka client: %v", err)
	}
	defer client.Close()

	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		fail("create kafka consumer: %v", err)
	}
	defer consumer.Close()

	var producer *kafka.Producer
	if cfg.execute {
		producer, err = kafka.NewProducer(cfg.brokers)
		if err != nil {
			fail("create kafka producer: %v", err)
		}
		defer producer.Close()
	}

	partitions, err := consumer.Partitions(cfg.sourceTopic)
	if err != nil {
		fail("list partitions of %s: %v", cfg.sourceTopic, err)
	}

	replayed := 0
	for _, partition := range partitions {
		if replayed >= cfg.limit {
			break
		}
		replayed += drainPartition(consumer, producer, cfg, partition, cfg.limit-replayed, logger)
	}

	mode := "dry-run"
	if cfg.execute {
		mode = "execute"
	}
	logger.WithFields(log.Fields{"mode": mode, "replayed": replayed}).Info("dlq reprocess finished")
}

// drainPartition читает partition DLQ до idle-таймаута и переигрывает сообщения.
func drainPartition(consumer sarama.Consumer, producer *kafka.Producer, cfg config, partition int32, budget int, logger *log.Entry) int {
	pc, err := consumer.ConsumePartition(cfg.sourceTopic, partition, sarama.OffsetOldest)
	if err != nil {
		logger.WithError(err).WithField("partition", partition).Warn("consume partition failed")
		return 0
	}
	defer pc.Close()

	replayed := 0
	idle := time.NewTimer(cfg.idleTimeout)
	defer idle.Stop()

	for replayed < budget {
		select {
		case message := <-pc.Messages():
			if message == nil {
				return replayed
			}
			if err := replayMessage(producer, cfg, message, logger); err != nil {
				logger.WithError(err).WithField("offset", message.Offset).Warn("replay failed")
				continue
			}
			replayed++
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(cfg.idleTimeout)
		case <-idle.C:
			return replayed
		}
	}

	return replayed
}

func replayMessage(producer *kafka.Producer, cfg config, message *sarama.ConsumerMessage, logger *log.Entry) error {
	var payload dlqPayload
	if err := json.Unmarshal(message.Value, &payload); err != nil {
		return fmt.Errorf("unmarshal dlq payload: %w", err)
	}

	targetTopic := cfg.targetTopic
	if targetTopic == "" {
		targetTopic = payload.OriginalTopic
	}
	if targetTopic == "" {
		return fmt.Errorf("dlq payload has no original topic and no target topic set")
	}

	logger.WithFields(log.Fields{
		"target_topic": targetTopic,
		"key":          payload.OriginalKey,
		"last_error":   payload.ErrorMessage,
		"retry_count":  payload.RetryCount,
	}).Info("replaying dlq message")

	if producer == nil {
		// Dry-run: только печатаем, ничего не публикуем.
		return nil
	}

	// Счетчик попыток возвращается в заголовке, чтобы consumer не гонял
	// переигранное сообщение по полному retry-циклу ещё раз.
	headers := map[string]string{kafka.HeaderRetryCount: strconv.Itoa(payload.RetryCount)}
	return producer.PublishEventWithHeaders(targetTopic, payload.OriginalKey, headers, json.RawMessage(payload.OriginalValue))
}

func readFlags() config {
	var (
		brokersFlag string
		cfg         config
	)

	flag.StringVar(&brokersFlag, "brokers", "", "Kafka brokers, comma separated (fallback: ORDERLOG_KAFKA_BROKERS)")
	flag.StringVar(&cfg.sourceTopic, "source", kafka.TopicDeadLetterQueue, "DLQ topic to drain")
	flag.StringVar(&cfg.targetTopic, "target", "", "target topic (default: original topic from the DLQ payload)")
	flag.IntVar(&cfg.limit, "limit", defaultReplayLimit, "maximum number of messages to replay")
	flag.BoolVar(&cfg.execute, "execute", false, "actually publish (default is dry-run)")
	flag.DurationVar(&cfg.idleTimeout, "idle-timeout", defaultIdleTimeout, "stop reading a partition after this idle period")
	flag.Parse()

	if brokersFlag == "" {
		brokersFlag = os.Getenv("ORDERLOG_KAFKA_BROKERS")
	}
	if brokersFlag == "" {
		fail("ORDERLOG_KAFKA_BROKERS (or -brokers) is required")
	}
	cfg.brokers = strings.Split(brokersFlag, ",")

	return cfg
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
