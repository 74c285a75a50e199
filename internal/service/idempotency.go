package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// idempotencyStore remembers which record a client request key produced.
// The unique (company_id, request_id) columns remain the source of truth; this
// only saves a query on quick retries.
type idempotencyStore struct {
	cache *cache.Cache
}

func newIdempotencyStore(ttl time.Duration) *idempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &idempotencyStore{cache: cache.New(ttl, ttl*2)}
}

func idempotencyKey(kind string, companyID uuid.UUID, requestID string) string {
	return fmt.Sprintf("%s:%s:%s", kind, companyID, requestID)
}

func (s *idempotencyStore) lookup(kind string, companyID uuid.UUID, requestID string) (uuid.UUID, bool) {
	if requestID == "" {
		return uuid.Nil, false
	}
	v, found := s.cache.Get(idempotencyKey(kind, companyID, requestID))
	if !found {
		return uuid.Nil, false
	}
	return v.(uuid.UUID), true
}

func (s *idempotencyStore) remember(kind string, companyID uuid.UUID, requestID string, id uuid.UUID) {
	if requestID == "" {
		return
	}
	s.cache.SetDefault(idempotencyKey(kind, companyID, requestID), id)
}

// forget drops a key whose record was deleted, so a later request may reuse it.
func (s *idempotencyStore) forget(kind string, companyID uuid.UUID, requestID *string) {
	if requestID == nil || *requestID == "" {
		return
	}
	s.cache.Delete(idempotencyKey(kind, companyID, *requestID))
}

func requestIDPtr(requestID string) *string {
	if requestID == "" {
		return nil
	}
	return &requestID
}
