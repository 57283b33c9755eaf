package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// LinePusher отправляет LINE-сообщение с graceful degradation
type LinePusher interface {
	PushTextWithGracefulDegradation(ctx context.Context, channelToken, lineUserID, text string) error
}

// Dispatcher читает события из топика уведомлений и доставляет их в LINE
//
// Доставка best-effort: ошибка отправки логируется, offset коммитится
// в любом случае. Повторная доставка одного уведомления хуже потери.
type Dispatcher struct {
	reader *kafka.Reader
	line   LinePusher
	log    Logger
}

// NewDispatcher создает новый диспетчер уведомлений
func NewDispatcher(brokers []string, topic, groupID string, line LinePusher, log Logger) *Dispatcher {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
		MaxWait:  500 * time.Millisecond,
		Logger:   kafka.LoggerFunc(func(msg string, args ...interface{}) {}),
	})

	return &Dispatcher{reader: reader, line: line, log: log}
}

// Run обрабатывает события до отмены контекста
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		msg, err := d.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			d.log.Error("notify dispatcher: failed to fetch message: %v", err)
			time.Sleep(time.Second)
			continue
		}

		d.handle(ctx, msg.Value)

		if err := d.reader.CommitMessages(ctx, msg); err != nil {
			d.log.Error("notify dispatcher: failed to commit offset: %v", err)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, payload []byte) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		d.log.Error("notify dispatcher: failed to unmarshal event: %v", err)
		return
	}

	// Без LINE ID или токена канала доставлять некуда
	if event.LineUserID == nil || *event.LineUserID == "" {
		d.log.Info("notify dispatcher: no line_user_id for booking_id=%d, skipping", event.BookingID)
		return
	}
	if event.ChannelToken == nil || *event.ChannelToken == "" {
		d.log.Info("notify dispatcher: no channel token for organization_id=%d, skipping", event.OrganizationID)
		return
	}

	text := MessageFor(event)
	if text == "" {
		d.log.Warn("notify dispatcher: unknown event type=%s booking_id=%d", event.Type, event.BookingID)
		return
	}

	if err := d.line.PushTextWithGracefulDegradation(ctx, *event.ChannelToken, *event.LineUserID, text); err != nil {
		d.log.Warn("notify dispatcher: delivery failed for booking_id=%d: %v", event.BookingID, err)
	}
}

// Close закрывает reader
func (d *Dispatcher) Close() error {
	return d.reader.Close()
}
