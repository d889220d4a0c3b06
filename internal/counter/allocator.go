package counter

import (
	"context"
	"fmt"
	"sync"

	"github.com/openlegal/platform/internal/shared/database"
	"github.com/openlegal/platform/internal/shared/metrics"
)

// Counter keys, one sequence per resource
const (
	KeyAccount       = "accountId"
	KeyProcess       = "processId"
	KeyEvent         = "eventId"
	KeyEvidence      = "evidenceId"
	KeyObservation   = "observationId"
	KeyAppointment   = "appointmentId"
	KeyReminder      = "reminderId"
	KeyAdvice        = "adviceId"
	KeyAuditoryLog   = "auditoryLogId"
	KeyProfile       = "profileId"
	KeyQualification = "qualificationId"
)

// Source allocates strictly increasing identifiers per named sequence
type Source interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Allocator hands out identifiers from the counters table. The
// increment is a single upsert so concurrent callers never observe
// the same value.
type Allocator struct {
	db *database.DB
}

// NewAllocator creates a database-backed Allocator
func NewAllocator(db *database.DB) *Allocator {
	return &Allocator{db: db}
}

// Next returns the next identifier for the named sequence, starting at 1
func (a *Allocator) Next(ctx context.Context, name string) (int64, error) {
	var seq int64
	err := a.db.Pool.QueryRow(ctx, `
		INSERT INTO counters (name, seq) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
		RETURNING seq`, name).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate id for %s: %w", name, err)
	}
	metrics.RecordIDAllocated(name)
	return seq, nil
}

// Memory is an in-process Source used in tests
type Memory struct {
	mu   sync.Mutex
	seqs map[string]int64
}

// NewMemory creates an empty in-memory Source
func NewMemory() *Memory {
	return &Memory{seqs: make(map[string]int64)}
}

// Next returns the next identifier for the named sequence
func (m *Memory) Next(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seqs[name]++
	return m.seqs[name], nil
}
