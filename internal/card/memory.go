package card

import (
	"context"
	"sort"
	"sync"

	"github.com/kossahokia/bankcards/internal/apperr"
)

// MemoryStore is a concurrency-safe in-memory card store used by unit
// tests and dev mode. InTx holds the store lock for the whole unit of
// work and stages saves, applying them only when fn succeeds, which gives
// the same commit-or-nothing semantics as a database transaction.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	cards  map[int64]Card
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, cards: make(map[int64]Card)}
}

func (s *MemoryStore) Create(_ context.Context, c Card) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.cards {
		if existing.Number == c.Number {
			return Card{}, apperr.Validation("card with this number already exists")
		}
	}
	c.ID = s.nextID
	s.nextID++
	s.cards[c.ID] = c
	return c, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok {
		return Card{}, apperr.NotFound("card not found")
	}
	return c, nil
}

func (s *MemoryStore) ExistsByNumber(_ context.Context, encrypted string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		if c.Number == encrypted {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Update(_ context.Context, c Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[c.ID]; !ok {
		return apperr.NotFound("card not found")
	}
	s.cards[c.ID] = c
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[id]; !ok {
		return apperr.NotFound("card not found")
	}
	delete(s.cards, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cards []Card
	for _, c := range s.cards {
		if f.OwnerID != nil && c.OwnerID != *f.OwnerID {
			continue
		}
		if f.Status != nil && c.Status != *f.Status {
			continue
		}
		cards = append(cards, c)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })

	if f.Offset > 0 {
		if f.Offset >= len(cards) {
			return nil, nil
		}
		cards = cards[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(cards) {
		cards = cards[:f.Limit]
	}
	return cards, nil
}

func (s *MemoryStore) InTx(_ context.Context, fn func(tx TxStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTxStore{store: s, staged: make(map[int64]Card)}
	if err := fn(tx); err != nil {
		return err
	}
	for id, c := range tx.staged {
		s.cards[id] = c
	}
	return nil
}

type memoryTxStore struct {
	store  *MemoryStore
	staged map[int64]Card
}

func (t *memoryTxStore) FindForUpdate(_ context.Context, id int64) (Card, error) {
	if c, ok := t.staged[id]; ok {
		return c, nil
	}
	c, ok := t.store.cards[id]
	if !ok {
		return Card{}, apperr.NotFound("card not found")
	}
	return c, nil
}

func (t *memoryTxStore) Save(_ context.Context, c Card) error {
	if _, ok := t.store.cards[c.ID]; !ok {
		return apperr.NotFound("card not found")
	}
	t.staged[c.ID] = c
	return nil
}
