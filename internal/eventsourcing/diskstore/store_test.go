package diskstore

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"rpki-ca.dev/core/internal/eventsourcing"
	appErrors "rpki-ca.dev/core/internal/pkg/errors"
	"rpki-ca.dev/core/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init("error", "console")
	os.Exit(m.Run())
}

// testAggregate is a minimal Aggregate[any] used only to exercise the
// store's reconstruction protocol; it has no bearing on real RPKI business
// logic (out of scope per spec §1).
type testAggregate struct {
	CurrentVersion uint64   `json:"version"`
	Log            []string `json:"log"`
}

func (a *testAggregate) Version() uint64 { return a.CurrentVersion }

func (a *testAggregate) Apply(ev eventsourcing.Event[any]) {
	if s, ok := ev.Payload.(string); ok {
		a.Log = append(a.Log, s)
	}
	a.CurrentVersion = ev.Version
}

func initTestAggregate(ev eventsourcing.Event[any]) (*testAggregate, error) {
	a := &testAggregate{}
	a.Apply(ev)
	return a, nil
}

func newTestStore(t *testing.T) *Store[*testAggregate] {
	t.Helper()
	return New[*testAggregate](afero.NewMemMapFs(), "/data", initTestAggregate)
}

func mustHandle(t *testing.T, s string) eventsourcing.Handle {
	t.Helper()
	h, err := eventsourcing.NewHandle(s)
	require.NoError(t, err)
	return h
}

// TestVersion_FreshStore is spec scenario S1.
func TestVersion_FreshStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := New[*testAggregate](fs, "/data", initTestAggregate)

	_, err := store.GetVersion()
	require.True(t, appErrors.Is(err, appErrors.KindNotInitialised))

	require.NoError(t, fs.MkdirAll("/data", 0o755))
	v, err := store.GetVersion()
	require.NoError(t, err)
	require.Equal(t, eventsourcing.Pre0_6, v)

	require.NoError(t, store.SetVersion(eventsourcing.V0_6))
	v, err = store.GetVersion()
	require.NoError(t, err)
	require.Equal(t, eventsourcing.V0_6, v)
}

// TestGetAggregate_BuildAndReplay is spec scenario S2.
func TestGetAggregate_BuildAndReplay(t *testing.T) {
	store := newTestStore(t)
	handle := mustHandle(t, "ca-1")

	require.NoError(t, store.StoreEvent(eventsourcing.Event[any]{Handle: handle, Version: 0, Payload: "init"}))
	require.NoError(t, store.StoreEvent(eventsourcing.Event[any]{Handle: handle, Version: 1, Payload: "grew"}))
	require.NoError(t, store.StoreEvent(eventsourcing.Event[any]{Handle: handle, Version: 2, Payload: "grew again"}))

	aggregate, found, err := store.GetAggregate(handle)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(2), aggregate.Version())
	require.Equal(t, []string{"init", "grew", "grew again"}, aggregate.Log)

	err = store.StoreEvent(eventsourcing.Event[any]{Handle: handle, Version: 1, Payload: "duplicate"})
	require.True(t, appErrors.Is(err, appErrors.KindKeyExists))
}

// TestGetAggregate_SnapshotFallback is spec scenario S3.
func TestGetAggregate_SnapshotFallback(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := New[*testAggregate](fs, "/data", initTestAggregate)
	handle := mustHandle(t, "ca-1")

	require.NoError(t, store.StoreEvent(eventsourcing.Event[any]{Handle: handle, Version: 0, Payload: "init"}))
	require.NoError(t, store.StoreEvent(eventsourcing.Event[any]{Handle: handle, Version: 1, Payload: "grew"}))
	require.NoError(t, store.StoreEvent(eventsourcing.Event[any]{Handle: handle, Version: 2, Payload: "grew again"}))

	require.NoError(t, afero.WriteFile(fs, "/data/ca-1/snapshot.json", []byte("{corrupt"), 0o644))

	aggregate, found, err := store.GetAggregate(handle)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(2), aggregate.Version())
}

// TestCommandHistory is spec scenario S4.
func TestCommandHistory(t *testing.T) {
	store := newTestStore(t)
	handle := mustHandle(t, "ca-1")

	for seq := uint64(1); seq <= 5; seq++ {
		cmd, err := eventsourcing.NewStoredCommand(handle, seq, "noop", "did something", nil)
		require.NoError(t, err)
		require.NoError(t, store.StoreCommand(cmd))
	}
	require.NoError(t, store.SaveInfo(handle, eventsourcing.StoredValueInfo{LastCommand: 5}))

	history, err := store.CommandHistory(handle, eventsourcing.CommandHistoryCriteria{})
	require.NoError(t, err)
	require.Equal(t, 5, history.Total)
	require.Equal(t, 0, history.Offset)
	require.Len(t, history.Records, 5)

	rows := 2
	history, err = store.CommandHistory(handle, eventsourcing.CommandHistoryCriteria{Offset: 2, Rows: &rows})
	require.NoError(t, err)
	require.Equal(t, 5, history.Total)
	require.Len(t, history.Records, 2)

	_, err = store.CommandHistory(handle, eventsourcing.CommandHistoryCriteria{Offset: 10})
	require.True(t, appErrors.Is(err, appErrors.KindCommandOffSetError))
}

// TestStore_AtomicWriteVisibleAfterRename verifies a value written by Store
// is readable under its final name once the temp-file rename completes.
func TestStore_AtomicWriteVisibleAfterRename(t *testing.T) {
	store := newTestStore(t)
	handle := mustHandle(t, "ca-1")

	require.NoError(t, store.Store(handle, store.KeyForInfo(), eventsourcing.StoredValueInfo{LastEvent: 3}))

	var info eventsourcing.StoredValueInfo
	ok, err := store.Get(handle, store.KeyForInfo(), &info)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(3), info.LastEvent)
}

func TestDrop_UnknownKey(t *testing.T) {
	store := newTestStore(t)
	handle := mustHandle(t, "ca-1")
	err := store.Drop(handle, store.KeyForSnapshot())
	require.True(t, appErrors.Is(err, appErrors.KindKeyUnknown))
}

func TestAggregates_SkipsMalformedEntries(t *testing.T) {
	store := newTestStore(t)
	handle := mustHandle(t, "ca-1")
	require.NoError(t, store.StoreEvent(eventsourcing.Event[any]{Handle: handle, Version: 0, Payload: "init"}))
	require.NoError(t, store.fs.MkdirAll("/data/bad\x01name", 0o755))

	handles, err := store.Aggregates()
	require.NoError(t, err)
	require.Contains(t, handles, handle)
	require.Len(t, handles, 1)
}
