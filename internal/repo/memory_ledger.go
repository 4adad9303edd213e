package repo

import (
	"context"
	"slices"
	"sync"

	"github.com/coatline/boothlag/internal/models"
)

// MemoryLedger keeps the ledger in process memory; contents are lost on exit.
type MemoryLedger struct {
	mu      sync.RWMutex
	records []models.StageRecord
}

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

// Load returns a copy of the stored records.
func (l *MemoryLedger) Load(context.Context) ([]models.StageRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.records), nil
}

// Append adds records to the end of the ledger.
func (l *MemoryLedger) Append(_ context.Context, records []models.StageRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, records...)
	return nil
}

// Replace swaps the ledger contents.
func (l *MemoryLedger) Replace(_ context.Context, records []models.StageRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = slices.Clone(records)
	return nil
}

// Close is a no-op.
func (l *MemoryLedger) Close() error { return nil }
