package eventsourcing

// Aggregate is the external, opaque business entity this store persists.
// It folds events into state; the store never inspects that state itself
// (spec §3.2, §6.3, out of scope per spec §1).
//
// Go cannot express the original's associated static constructor
// (`Aggregate::init(InitEvent) -> Self`) as an interface method, since a
// method cannot return "the implementing type" at the interface level.
// Implementations of KeyStore accept an init function as a parameter
// instead — an idiomatic substitute for the missing associated type.
type Aggregate[E any] interface {
	Apply(Event[E])
	Version() uint64
}

// KeyStore is the generic per-aggregate append-only log contract (spec
// §4.A), parameterized by an opaque Key type the backend chooses for its
// storage slots.
//
// Per Design Note 1 (spec.md §9) and the "single serialized bytes payload
// with a type-tag" alternative it offers: Store/Get/GetEvent take a
// destination pointer (out any) rather than being parameterized per call,
// mirroring encoding/json.Unmarshal's own convention. Only diskstore.Store
// ships a concrete implementation; KeyStore itself exists so a future
// in-memory test double could satisfy the same contract.
type KeyStore[K any, A Aggregate[any]] interface {
	GetVersion() (KeyStoreVersion, error)
	SetVersion(KeyStoreVersion) error

	KeyForInfo() K
	KeyForSnapshot() K
	KeyForEvent(version uint64) K
	KeyForCommand(sequence uint64) K

	HasKey(id Handle, key K) bool
	HasAggregate(id Handle) bool
	Aggregates() ([]Handle, error)

	Store(id Handle, key K, value any) error
	Get(id Handle, key K, out any) (bool, error)
	Drop(id Handle, key K) error

	GetEvent(id Handle, version uint64, out any) (bool, error)
	StoreEvent(event StorableEvent) error
	StoreCommand(cmd StorableCommand) error

	GetAggregate(id Handle) (A, bool, error)
	StoreSnapshot(id Handle, aggregate A) error

	CommandHistory(id Handle, crit CommandHistoryCriteria) (CommandHistory, error)
	KeysAscendingMatching(id Handle, substring string) ([]string, error)
}
