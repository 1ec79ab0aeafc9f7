package eventstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
)

const testPassID = "pass-1"

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEventStoreAppendAndRetrieve(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()

	require.NoError(t, store.Append(ctx, testPassID, "TestEvent", []byte(`{"test":"data"}`), map[string]string{"key": "value"}))
	require.NoError(t, store.Append(ctx, "other", "TestEvent", nil, nil))

	events, err := store.GetByPassID(ctx, testPassID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	require.Equal(t, testPassID, e.PassID())
	require.Equal(t, "TestEvent", e.Type())
	require.JSONEq(t, `{"test":"data"}`, string(e.Payload()))
	require.Equal(t, "value", e.Metadata()["key"])
	require.NotZero(t, e.ID())
}

func TestEventStoreNilPayloadStoredAsEmptyObject(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()

	require.NoError(t, store.Append(ctx, testPassID, "Empty", nil, nil))

	events, err := store.GetByPassID(ctx, testPassID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.JSONEq(t, `{}`, string(events[0].Payload()))
	require.Nil(t, events[0].Metadata())
}

func TestEventStoreGetRange(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()

	before := time.Now().Add(-time.Second)
	for range 3 {
		require.NoError(t, store.Append(ctx, testPassID, "Tick", nil, nil))
	}
	after := time.Now().Add(time.Second)

	events, err := store.GetRange(ctx, before, after)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i := 1; i < len(events); i++ {
		require.Greater(t, events[i].ID(), events[i-1].ID())
	}

	events, err = store.GetRange(ctx, after, after.Add(time.Hour))
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestRecordTypedEvent(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()

	started, err := NewPassStarted(testPassID, PassStartedMeta{SourceDir: "site", OutputDir: "public", Trigger: "cli"})
	require.NoError(t, err)
	require.NoError(t, Record(ctx, store, started))

	events, err := store.GetByPassID(ctx, testPassID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, TypePassStarted, events[0].Type())
	require.JSONEq(t, `{"source_dir":"site","output_dir":"public","trigger":"cli"}`, string(events[0].Payload()))
}

func TestEventStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := t.Context()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, testPassID, "TestEvent", nil, nil))
	require.NoError(t, store.Close())

	store, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	events, err := store.GetByPassID(ctx, testPassID)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestEventStoreErrorsAreClassified(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Append(t.Context(), testPassID, "TestEvent", nil, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEventAppendFailed)
	require.True(t, errors.HasCategory(err, errors.CategoryEventStore))
}
