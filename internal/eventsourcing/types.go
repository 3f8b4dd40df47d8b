// Package eventsourcing defines the generic, durable append-only event log
// this core persists every aggregate through: events, commands, snapshots,
// version tagging, and paginated command history (spec §3.2, §4.A).
//
// The package is polymorphic over the concrete aggregate/event/command
// types a caller defines; it never references a specific business entity.
// A concrete filesystem-backed implementation of the KeyStore contract
// lives in the diskstore subpackage.
package eventsourcing

import (
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
)

// WithStorableDetails is the constraint on a command's Details payload.
// Go's encoding/json marshals any exported struct structurally, so unlike
// the original's Storable trait bound this carries no methods — it exists
// to name the type parameter the way spec.md's StoredCommand<Details> does.
type WithStorableDetails = any

// Event is one immutable fact recorded against Handle at Version. Version
// is monotonically increasing per handle, starting at 0 for the init event
// (spec §3.2 invariant 1).
type Event[P any] struct {
	Handle  Handle
	Version uint64
	Payload P
}

// EventHandle implements StorableEvent.
func (e Event[P]) EventHandle() Handle { return e.Handle }

// EventVersion implements StorableEvent.
func (e Event[P]) EventVersion() uint64 { return e.Version }

// StorableEvent is the non-generic projection of Event[P] the KeyStore
// needs to derive a storage key and detect duplicates, independent of the
// concrete payload type P.
type StorableEvent interface {
	EventHandle() Handle
	EventVersion() uint64
}

// CommandEffect records one outcome of applying a command: the event
// versions it produced, in the order they were appended. A command that
// was rejected before producing any event has an empty EventVersions.
type CommandEffect struct {
	EventVersions []uint64 `json:"event_versions"`
}

// StoredCommand is the durable record of one command applied (or attempted)
// against Handle at Sequence. Sequence is monotonically increasing per
// handle, starting at 1 (spec §3.2 invariant 2).
//
// ID, Summary and Effects supplement spec.md's bare (handle, sequence,
// details) tuple with the fields a CommandHistoryRecord projection needs;
// Details carries whatever business-specific payload the caller chooses.
type StoredCommand[D WithStorableDetails] struct {
	Handle   Handle
	Sequence uint64
	ID       uuid.UUID
	Details  D
	Summary  string
	Time     time.Time
	Effects  []CommandEffect
}

// NewStoredCommand builds a StoredCommand, generating a time-ordered ID the
// way the teacher's audit trail generates correlation IDs.
func NewStoredCommand[D WithStorableDetails](handle Handle, sequence uint64, details D, summary string, effects []CommandEffect) (StoredCommand[D], error) {
	id, err := uuid.NewV7()
	if err != nil {
		return StoredCommand[D]{}, err
	}
	return StoredCommand[D]{
		Handle:   handle,
		Sequence: sequence,
		ID:       id,
		Details:  details,
		Summary:  summary,
		Time:     time.Now(),
		Effects:  effects,
	}, nil
}

// CommandHandle implements StorableCommand.
func (c StoredCommand[D]) CommandHandle() Handle { return c.Handle }

// CommandSequence implements StorableCommand.
func (c StoredCommand[D]) CommandSequence() uint64 { return c.Sequence }

// ToHistoryRecord projects the stored command to the summary form
// CommandHistory carries; the Details payload itself is dropped since
// history listings show only the human-readable Summary.
func (c StoredCommand[D]) ToHistoryRecord() CommandHistoryRecord {
	return CommandHistoryRecord{
		Handle:   c.Handle,
		Sequence: c.Sequence,
		ID:       c.ID,
		Summary:  c.Summary,
		Time:     c.Time,
		Effects:  c.Effects,
	}
}

// StorableCommand is the non-generic projection of StoredCommand[D] the
// KeyStore needs to derive a storage key and detect duplicates, independent
// of the concrete Details type D.
type StorableCommand interface {
	CommandHandle() Handle
	CommandSequence() uint64
}

// StoredValueInfo is per-aggregate mutable metadata tracking the high-water
// marks of the log (spec §3.2). Callers must treat it as advisory — see
// spec §9's note on info lagging actual on-disk state after a crash.
type StoredValueInfo struct {
	SnapshotVersion uint64    `json:"snapshot_version"`
	LastEvent       uint64    `json:"last_event"`
	LastCommand     uint64    `json:"last_command"`
	LastUpdate      time.Time `json:"last_update"`
}

// NewStoredValueInfo returns the zero-value info a never-initialized
// aggregate has: no snapshot, no events, no commands, timestamped now.
func NewStoredValueInfo() StoredValueInfo {
	return StoredValueInfo{LastUpdate: time.Now()}
}

// KeyStoreVersion tags the on-disk schema of a whole store (not a single
// aggregate). A missing version record means Pre0_6 (spec §3.2, §4.A.1).
type KeyStoreVersion string

const (
	// Pre0_6 is the implicit version of a store with no version record.
	Pre0_6 KeyStoreVersion = "pre-0.6"
	// V0_6 is the first store generation with an explicit version record.
	V0_6 KeyStoreVersion = "0.6.0"
)

// SemVer returns the semantic version this tag corresponds to. Pre0_6
// predates the versioning scheme entirely, so it returns (nil, false).
func (v KeyStoreVersion) SemVer() (*semver.Version, bool) {
	if v == Pre0_6 {
		return nil, false
	}
	sv, err := semver.NewVersion(string(v))
	if err != nil {
		return nil, false
	}
	return sv, true
}

// AtLeast reports whether v is the same as or newer than other. Pre0_6 is
// older than every real version, including itself compared against
// anything but Pre0_6.
func (v KeyStoreVersion) AtLeast(other KeyStoreVersion) bool {
	if v == other {
		return true
	}
	vSem, vOK := v.SemVer()
	otherSem, otherOK := other.SemVer()
	if !otherOK {
		return true // every version is at least Pre0_6
	}
	if !vOK {
		return false // Pre0_6 is at least nothing but itself
	}
	return vSem.Compare(otherSem) >= 0
}

// CommandHistoryCriteria filters and paginates a CommandHistory query
// (spec §4.A.12). Rows nil means unlimited; Offset 0 means start at the
// beginning.
type CommandHistoryCriteria struct {
	Offset int
	Rows   *int
	After  *time.Time
	Before *time.Time
}

// ShouldInclude reports whether record passes this criteria's filters.
// Pagination (Offset/Rows) is applied separately, after filtering, per the
// command_history contract in spec §4.A.12.
func (c CommandHistoryCriteria) ShouldInclude(record CommandHistoryRecord) bool {
	if c.After != nil && record.Time.Before(*c.After) {
		return false
	}
	if c.Before != nil && record.Time.After(*c.Before) {
		return false
	}
	return true
}

// CommandHistoryRecord is the read-only projection of a StoredCommand a
// history listing shows.
type CommandHistoryRecord struct {
	Handle   Handle
	Sequence uint64
	ID       uuid.UUID
	Summary  string
	Time     time.Time
	Effects  []CommandEffect
}

// CommandHistory is one page of command history results. Total is the
// filtered count before pagination was applied — not len(Records); a
// caller can detect "offset past end" by comparing Offset to Total (though
// the store itself already rejects that case with CommandOffSetError, per
// spec §4.A.12 and §9's preserved quirk).
type CommandHistory struct {
	Offset  int
	Total   int
	Records []CommandHistoryRecord
}
