// Package history hands ended encounters to a persistence sink. Writes are
// fire-and-forget: a failing sink is logged and never reaches the combat
// flow.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nathoo/shadowcore/types"
)

// DefaultWriteTimeout bounds a single sink write.
const DefaultWriteTimeout = 5 * time.Second

// Record is one persisted encounter.
type Record struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	RecordedAt time.Time           `json:"recorded_at"`
	Summary    types.CombatSummary `json:"summary"`
}

// Sink stores records durably.
type Sink interface {
	WriteCombat(ctx context.Context, rec Record) error
}

// Lister reads back a user's most recent records, newest first.
type Lister interface {
	ListCombats(ctx context.Context, userID string, limit int) ([]Record, error)
}

// Recorder attaches the user identity to summaries and writes them in the
// background.
type Recorder struct {
	sink    Sink
	userID  string
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRecorder creates a Recorder. A nil sink disables persistence.
func NewRecorder(sink Sink, userID string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		sink:    sink,
		userID:  userID,
		logger:  logger,
		now:     time.Now,
		timeout: DefaultWriteTimeout,
	}
}

// Record schedules s for persistence and returns the record ID. It never
// blocks on the sink.
func (r *Recorder) Record(s types.CombatSummary) string {
	rec := Record{
		ID:         uuid.NewString(),
		UserID:     r.userID,
		RecordedAt: r.now().UTC(),
		Summary:    s,
	}
	rec.Summary.CombatLog = slices.Clone(s.CombatLog)
	if r.sink == nil {
		return rec.ID
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.sink.WriteCombat(ctx, rec); err != nil {
			r.logger.Warn("combat history write failed",
				"record", rec.ID,
				"enemy", rec.Summary.EnemyID,
				"error", err,
			)
			return
		}
		r.logger.Debug("combat history written", "record", rec.ID, "enemy", rec.Summary.EnemyID)
	}()
	return rec.ID
}

// Wait blocks until every scheduled write has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// Lister returns the sink as a Lister when it supports reading back.
func (r *Recorder) Lister() (Lister, bool) {
	l, ok := r.sink.(Lister)
	return l, ok
}

// MemorySink keeps records in memory.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// WriteCombat stores rec.
func (m *MemorySink) WriteCombat(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

// ListCombats returns up to limit records for userID, newest first.
func (m *MemorySink) ListCombats(ctx context.Context, userID string, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Record
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].UserID != userID {
			continue
		}
		out = append(out, m.records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Records returns a copy of everything written so far.
func (m *MemorySink) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.records)
}

// Line renders r as a single history line.
func (r Record) Line() string {
	s := r.Summary
	return fmt.Sprintf("%s  %-18s %-9s %2d turns  HP %d  LP %d->%d  SP %d->%d",
		r.RecordedAt.Local().Format("2006-01-02 15:04"),
		s.EnemyName, s.Reason, s.TurnsTaken, s.FinalPlayerHP,
		s.ResourcesAtStart.LP, s.ResourcesAtEnd.LP,
		s.ResourcesAtStart.SP, s.ResourcesAtEnd.SP)
}
