package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/m04kA/HCS-BookingService/internal/draft"
)

var (
	// ErrDraftNotFound возвращается, когда черновик не найден или истек его TTL
	ErrDraftNotFound = errors.New("draftstore: draft not found")

	// ErrMarshal возвращается при ошибке сериализации черновика
	ErrMarshal = errors.New("draftstore: failed to marshal draft")

	// ErrStore возвращается при ошибке обращения к Redis
	ErrStore = errors.New("draftstore: redis operation failed")
)

// Store хранит черновики бронирований в Redis с TTL
// Истекший черновик равнозначен отсутствующему: клиент начинает мастер заново
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore создает новое хранилище черновиков
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(draftID string) string {
	return fmt.Sprintf("draft:%s", draftID)
}

// Save сохраняет черновик, продлевая TTL при каждом изменении
func (s *Store) Save(ctx context.Context, d *draft.Draft) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("%w: Save - marshal draft: %v", ErrMarshal, err)
	}

	if err := s.rdb.Set(ctx, key(d.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Save - set key: %v", ErrStore, err)
	}

	return nil
}

// Get возвращает черновик по ID
func (s *Store) Get(ctx context.Context, draftID string) (*draft.Draft, error) {
	payload, err := s.rdb.Get(ctx, key(draftID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - get key: %v", ErrStore, err)
	}

	var d draft.Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("%w: Get - unmarshal draft: %v", ErrMarshal, err)
	}

	return &d, nil
}

// Delete удаляет черновик после успешного оформления бронирования
func (s *Store) Delete(ctx context.Context, draftID string) error {
	if err := s.rdb.Del(ctx, key(draftID)).Err(); err != nil {
		return fmt.Errorf("%w: Delete - del key: %v", ErrStore, err)
	}
	return nil
}
