package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher публикует события уведомлений в Kafka
//
// Публикация сознательно best-effort: бронирование уже зафиксировано в БД,
// и потеря уведомления не должна откатывать или ронять запрос. Ошибки
// записи логируются и проглатываются.
type Publisher struct {
	writer *kafka.Writer
	log    Logger
}

// NewPublisher создает новый publisher уведомлений
func NewPublisher(brokers []string, topic string, log Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // ключ = booking_id, события одного бронирования упорядочены
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(msg string, args ...interface{}) {}),
	}

	return &Publisher{writer: writer, log: log}
}

// Publish отправляет событие в топик уведомлений (fire-and-forget)
func (p *Publisher) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("notify: failed to marshal event type=%s booking_id=%d: %v", event.Type, event.BookingID, err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.BookingID, 10)),
		Value: payload,
		Time:  event.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("notify: failed to publish event type=%s booking_id=%d: %v", event.Type, event.BookingID, err)
		return
	}

	p.log.Info("notify: published event type=%s booking_id=%d", event.Type, event.BookingID)
}

// Close закрывает writer
func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("notify: close writer: %w", err)
	}
	return nil
}
