// Package memory provides an in-memory fingerprint store for development
// and test environments without a database.
package memory

import (
	"sync"

	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// FingerprintStore keeps the corpus in process memory. Contents are lost on
// restart.
type FingerprintStore struct {
	mu    sync.RWMutex
	items []domain.Fingerprint
}

// NewFingerprintStore constructs an empty store.
func NewFingerprintStore() *FingerprintStore {
	return &FingerprintStore{}
}

// List returns a copy of the stored fingerprints.
func (s *FingerprintStore) List(_ domain.Context) ([]domain.Fingerprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Fingerprint, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Append adds one fingerprint to the corpus.
func (s *FingerprintStore) Append(_ domain.Context, fp domain.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, fp)
	return nil
}
