package history

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/shadowcore/types"
)

type failingSink struct{}

func (failingSink) WriteCombat(context.Context, Record) error {
	return errors.New("disk full")
}

// lockedBuffer lets the recorder goroutine and the test share a log buffer.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func summary(enemy string) types.CombatSummary {
	return types.CombatSummary{
		EnemyID:     enemy,
		EnemyName:   "Echo",
		Victory:     true,
		Reason:      types.EndVictory,
		TurnsTaken:  4,
		ActionsUsed: map[types.Action]int{types.ActionIlluminate: 3},
		CombatLog:   []types.LogEntry{{Turn: 1, Actor: types.ActorPlayer, Action: "ILLUMINATE"}},
	}
}

func TestRecorder_WritesWithIdentity(t *testing.T) {
	sink := NewMemorySink()
	rec := NewRecorder(sink, "player-1", nil)

	id := rec.Record(summary("echo_of_anger"))
	rec.Wait()

	_, err := uuid.Parse(id)
	require.NoError(t, err, "record ID should be a UUID")

	got := sink.Records()
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "player-1", got[0].UserID)
	assert.Equal(t, "echo_of_anger", got[0].Summary.EnemyID)
	assert.False(t, got[0].RecordedAt.IsZero())
}

func TestRecorder_FailureIsLoggedNotReturned(t *testing.T) {
	var buf lockedBuffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	rec := NewRecorder(failingSink{}, "player-1", logger)

	rec.Record(summary("veil_of_grief"))
	rec.Wait()

	assert.Contains(t, buf.String(), "combat history write failed")
	assert.Contains(t, buf.String(), "disk full")
}

func TestRecorder_NilSink(t *testing.T) {
	rec := NewRecorder(nil, "player-1", nil)
	id := rec.Record(summary("echo_of_anger"))
	rec.Wait()
	assert.NotEmpty(t, id)

	_, ok := rec.Lister()
	assert.False(t, ok)
}

func TestMemorySink_ListCombats(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()
	for i, enemy := range []string{"a", "b", "c"} {
		user := "p1"
		if i == 1 {
			user = "p2"
		}
		require.NoError(t, sink.WriteCombat(ctx, Record{ID: enemy, UserID: user, Summary: summary(enemy)}))
	}

	got, err := sink.ListCombats(ctx, "p1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID, "newest first")
	assert.Equal(t, "a", got[1].ID)

	got, err = sink.ListCombats(ctx, "p1", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMemorySink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewMemorySink().WriteCombat(ctx, Record{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecord_Line(t *testing.T) {
	rec := Record{Summary: summary("echo_of_anger")}
	rec.Summary.EnemyName = "Echo of Anger"
	rec.Summary.Reason = types.EndVictory
	rec.Summary.TurnsTaken = 4

	line := rec.Line()
	assert.Contains(t, line, "Echo of Anger")
	assert.Contains(t, line, "victory")
	assert.Contains(t, line, " 4 turns")
}
