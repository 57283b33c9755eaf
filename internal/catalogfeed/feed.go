package catalogfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/m04kA/HCS-BookingService/internal/draft"
)

// Logger интерфейс логгера
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handler обработчик одного события каталога
type Handler func(event draft.CatalogEvent)

// Feed раздает события изменения каталога подписчикам
//
// Каждая подписка получает собственный kafka.Reader со случайной
// consumer-group: событие каталога должно дойти до каждого открытого
// черновика, а не до одного из них
type Feed struct {
	brokers []string
	topic   string
	log     Logger

	mu     sync.Mutex
	closed bool
}

// NewFeed создает новую ленту событий каталога
func NewFeed(brokers []string, topic string, log Logger) *Feed {
	return &Feed{brokers: brokers, topic: topic, log: log}
}

// Subscription активная подписка на события каталога
// Cancel останавливает доставку и освобождает reader; повторный вызов безопасен
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Cancel отменяет подписку и дожидается остановки фонового чтения
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Subscribe подписывает обработчик на события каталога организации
// Фильтрация по организации идет на стороне подписчика: топик общий
func (f *Feed) Subscribe(ctx context.Context, organizationID int64, handler Handler) (*Subscription, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, errors.New("catalogfeed: feed is closed")
	}
	f.mu.Unlock()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: f.brokers,
		Topic:   f.topic,
		// Уникальная группа на подписку: каждый черновик видит все события
		GroupID:  fmt.Sprintf("catalogfeed-%s", uuid.NewString()),
		MinBytes: 1,
		MaxBytes: 1 << 20,
		MaxWait:  500 * time.Millisecond,
		Logger:   kafka.LoggerFunc(func(msg string, args ...interface{}) {}),
	})

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer reader.Close()
		f.consume(subCtx, reader, organizationID, handler)
	}()

	return sub, nil
}

func (f *Feed) consume(ctx context.Context, reader *kafka.Reader, organizationID int64, handler Handler) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			f.log.Error("catalogfeed: failed to fetch message: %v", err)
			time.Sleep(time.Second)
			continue
		}

		var envelope feedEnvelope
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			f.log.Error("catalogfeed: failed to unmarshal event: %v", err)
			continue
		}

		if envelope.OrganizationID == organizationID {
			handler(envelope.Event)
		}
	}
}

// Close помечает ленту закрытой; активные подписки отменяются вызывающей стороной
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// feedEnvelope обертка события каталога в топике
type feedEnvelope struct {
	OrganizationID int64              `json:"organization_id"`
	Event          draft.CatalogEvent `json:"event"`
}
