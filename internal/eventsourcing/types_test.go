package eventsourcing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyStoreVersion_AtLeast(t *testing.T) {
	require.True(t, V0_6.AtLeast(Pre0_6))
	require.True(t, V0_6.AtLeast(V0_6))
	require.False(t, Pre0_6.AtLeast(V0_6))
	require.True(t, Pre0_6.AtLeast(Pre0_6))
}

func TestKeyStoreVersion_SemVer(t *testing.T) {
	_, ok := Pre0_6.SemVer()
	require.False(t, ok)

	sv, ok := V0_6.SemVer()
	require.True(t, ok)
	require.Equal(t, uint64(0), sv.Major())
	require.Equal(t, uint64(6), sv.Minor())
}

func TestStoredCommand_ToHistoryRecord(t *testing.T) {
	handle, err := NewHandle("ca-1")
	require.NoError(t, err)

	cmd, err := NewStoredCommand(handle, 1, "details-payload", "created aggregate", []CommandEffect{{EventVersions: []uint64{0}}})
	require.NoError(t, err)
	require.Equal(t, handle, cmd.CommandHandle())
	require.Equal(t, uint64(1), cmd.CommandSequence())

	record := cmd.ToHistoryRecord()
	require.Equal(t, cmd.ID, record.ID)
	require.Equal(t, cmd.Summary, record.Summary)
	require.Equal(t, cmd.Effects, record.Effects)
}

func TestCommandHistoryCriteria_ShouldInclude(t *testing.T) {
	now := time.Now()
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	record := CommandHistoryRecord{Time: now}

	require.True(t, CommandHistoryCriteria{}.ShouldInclude(record))
	require.True(t, CommandHistoryCriteria{After: &before, Before: &after}.ShouldInclude(record))
	require.False(t, CommandHistoryCriteria{After: &after}.ShouldInclude(record))
	require.False(t, CommandHistoryCriteria{Before: &before}.ShouldInclude(record))
}
