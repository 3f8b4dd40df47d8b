// Package diskstore implements eventsourcing.KeyStore against a filesystem
// rooted at a directory, using afero.Fs so the same code runs against the
// real OS in production and an in-memory filesystem in tests (spec §4.A,
// §6.1).
package diskstore

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	appErrors "rpki-ca.dev/core/internal/pkg/errors"
	"rpki-ca.dev/core/internal/eventsourcing"
	"rpki-ca.dev/core/internal/pkg/logger"
)

const versionFileName = "version"

// Store is the concrete, filesystem-backed eventsourcing.KeyStore. It is
// generic over the caller's Aggregate type; the opaque Key the interface
// describes is always a file name relative to the aggregate's directory.
type Store[A eventsourcing.Aggregate[any]] struct {
	fs      afero.Fs
	rootDir string
	initFn  func(eventsourcing.Event[any]) (A, error)
}

// New builds a Store rooted at rootDir on fs. initFn constructs a fresh
// aggregate from its init event (version 0) — the functional substitute
// for the associated static constructor Go interfaces cannot express.
func New[A eventsourcing.Aggregate[any]](fs afero.Fs, rootDir string, initFn func(eventsourcing.Event[any]) (A, error)) *Store[A] {
	return &Store[A]{fs: fs, rootDir: rootDir, initFn: initFn}
}

// Under creates rootDir (and any parents) if absent and returns a Store
// rooted there — the disk-backed equivalent of the original's
// DiskKeyStore::under_work_dir.
func Under[A eventsourcing.Aggregate[any]](fs afero.Fs, rootDir string, initFn func(eventsourcing.Event[any]) (A, error)) (*Store[A], error) {
	if err := fs.MkdirAll(rootDir, 0o755); err != nil {
		return nil, appErrors.Wrap(appErrors.KindIoError, "create store root directory", err)
	}
	return New(fs, rootDir, initFn), nil
}

func (s *Store[A]) KeyForInfo() string               { return "info.json" }
func (s *Store[A]) KeyForSnapshot() string           { return "snapshot.json" }
func (s *Store[A]) KeyForEvent(version uint64) string { return fmt.Sprintf("delta-%d.json", version) }
func (s *Store[A]) KeyForCommand(seq uint64) string   { return fmt.Sprintf("command-%d.json", seq) }

func (s *Store[A]) dirForAggregate(id eventsourcing.Handle) string {
	return filepath.Join(s.rootDir, string(id))
}

func (s *Store[A]) filePath(id eventsourcing.Handle, key string) string {
	return filepath.Join(s.dirForAggregate(id), key)
}

func (s *Store[A]) versionPath() string {
	return filepath.Join(s.rootDir, versionFileName)
}

// GetVersion reads the store-wide schema tag (spec §4.A.1).
func (s *Store[A]) GetVersion() (eventsourcing.KeyStoreVersion, error) {
	exists, err := afero.DirExists(s.fs, s.rootDir)
	if err != nil {
		return "", appErrors.Wrap(appErrors.KindIoError, "check store root directory", err)
	}
	if !exists {
		return "", appErrors.New(appErrors.KindNotInitialised, "store root directory does not exist")
	}

	path := s.versionPath()
	present, err := afero.Exists(s.fs, path)
	if err != nil {
		return "", appErrors.Wrap(appErrors.KindIoError, "check version file", err)
	}
	if !present {
		logger.Debug("no version record found, assuming pre-0.6 schema", zap.String("root", s.rootDir))
		return eventsourcing.Pre0_6, nil
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return "", appErrors.Wrap(appErrors.KindIoError, "read version file", err)
	}
	var v eventsourcing.KeyStoreVersion
	if err := json.Unmarshal(data, &v); err != nil {
		return "", appErrors.Wrap(appErrors.KindJsonError, "parse version file", err)
	}
	return v, nil
}

// SetVersion overwrites the store-wide schema tag.
func (s *Store[A]) SetVersion(version eventsourcing.KeyStoreVersion) error {
	if err := s.fs.MkdirAll(s.rootDir, 0o755); err != nil {
		return appErrors.Wrap(appErrors.KindIoError, "create store root directory", err)
	}
	return s.writeAtomic(s.rootDir, s.versionPath(), version)
}

// HasKey reports whether a value is present at key for id.
func (s *Store[A]) HasKey(id eventsourcing.Handle, key string) bool {
	exists, _ := afero.Exists(s.fs, s.filePath(id, key))
	return exists
}

// HasAggregate reports whether any state is present for id.
func (s *Store[A]) HasAggregate(id eventsourcing.Handle) bool {
	exists, _ := afero.DirExists(s.fs, s.dirForAggregate(id))
	return exists
}

// Aggregates enumerates every handle present in the store. Malformed
// directory entries are silently skipped — best-effort enumeration per
// spec §4.A.3.
func (s *Store[A]) Aggregates() ([]eventsourcing.Handle, error) {
	entries, err := afero.ReadDir(s.fs, s.rootDir)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.KindIoError, "list store root directory", err)
	}
	var handles []eventsourcing.Handle
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		h, err := eventsourcing.NewHandle(entry.Name())
		if err != nil {
			continue
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// Store serializes value as pretty JSON and writes it atomically to key's
// slot under id, overwriting any previous value.
func (s *Store[A]) Store(id eventsourcing.Handle, key string, value any) error {
	dir := s.dirForAggregate(id)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return appErrors.Wrap(appErrors.KindIoError, "create aggregate directory", err)
	}
	return s.writeAtomic(dir, s.filePath(id, key), value)
}

// writeAtomic marshals value and writes it via a sibling temp file plus
// rename, so a reader never observes a partial write (spec §5). If the
// rename fails, the temp file's removal error (if any) is joined with the
// rename error via multierr so neither failure is silently dropped.
func (s *Store[A]) writeAtomic(dir, finalPath string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return appErrors.Wrap(appErrors.KindJsonError, "marshal value", err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "*.tmp")
	if err != nil {
		return appErrors.Wrap(appErrors.KindIoError, "create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return appErrors.Wrap(appErrors.KindIoError, "write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return appErrors.Wrap(appErrors.KindIoError, "close temp file", err)
	}

	if err := s.fs.Rename(tmpName, finalPath); err != nil {
		removeErr := s.fs.Remove(tmpName)
		combined := multierr.Append(err, removeErr)
		return appErrors.Wrap(appErrors.KindIoError, "rename temp file into place", combined)
	}
	return nil
}

// Get deserializes the value at key for id. A present-but-unparseable slot
// is treated as absent and logged at Warn — the store's one lenient
// recovery path, intentional so a corrupted snapshot never wedges replay
// (spec §4.A.5).
func (s *Store[A]) Get(id eventsourcing.Handle, key string, out any) (bool, error) {
	path := s.filePath(id, key)
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return false, appErrors.Wrap(appErrors.KindIoError, "check file", err)
	}
	if !exists {
		return false, nil
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return false, appErrors.Wrap(appErrors.KindIoError, "read file", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("could not deserialize stored value, falling back",
			zap.String("path", path), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Drop deletes the value at key for id.
func (s *Store[A]) Drop(id eventsourcing.Handle, key string) error {
	path := s.filePath(id, key)
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return appErrors.Wrap(appErrors.KindIoError, "check file", err)
	}
	if !exists {
		return appErrors.New(appErrors.KindKeyUnknown, fmt.Sprintf("key %q does not exist", key))
	}
	if err := s.fs.Remove(path); err != nil {
		return appErrors.Wrap(appErrors.KindIoError, "remove file", err)
	}
	return nil
}

// GetEvent deserializes the event at version for id, strictly: a
// present-but-unparseable slot is a JsonError, not a lenient None (spec
// §4.A.7).
func (s *Store[A]) GetEvent(id eventsourcing.Handle, version uint64, out any) (bool, error) {
	return s.getStrict(s.filePath(id, s.KeyForEvent(version)), out)
}

func (s *Store[A]) getStrict(path string, out any) (bool, error) {
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return false, appErrors.Wrap(appErrors.KindIoError, "check file", err)
	}
	if !exists {
		return false, nil
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return false, appErrors.Wrap(appErrors.KindIoError, "read file", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, appErrors.Wrap(appErrors.KindJsonError, "parse file", err)
	}
	return true, nil
}

// StoreEvent writes event, rejecting a duplicate (handle, version) pair
// with KeyExists (spec §4.A.8, §3.2 invariant 4).
func (s *Store[A]) StoreEvent(event eventsourcing.StorableEvent) error {
	id := event.EventHandle()
	key := s.KeyForEvent(event.EventVersion())
	if s.HasKey(id, key) {
		return appErrors.New(appErrors.KindKeyExists, fmt.Sprintf("event key %q already exists", key))
	}
	return s.Store(id, key, event)
}

// StoreCommand writes cmd, rejecting a duplicate (handle, sequence) pair
// with KeyExists (spec §4.A.9, §3.2 invariant 5).
func (s *Store[A]) StoreCommand(cmd eventsourcing.StorableCommand) error {
	id := cmd.CommandHandle()
	key := s.KeyForCommand(cmd.CommandSequence())
	if s.HasKey(id, key) {
		return appErrors.New(appErrors.KindKeyExists, fmt.Sprintf("command key %q already exists", key))
	}
	return s.Store(id, key, cmd)
}

// GetAggregate reconstructs the current state of id: snapshot (if present
// and parseable) or the init event, then replays every later event in
// order (spec §4.A.10).
func (s *Store[A]) GetAggregate(id eventsourcing.Handle) (A, bool, error) {
	var zero A

	var aggregate A
	found, err := s.Get(id, s.KeyForSnapshot(), &aggregate)
	if err != nil {
		return zero, false, err
	}

	if !found {
		var initEvent eventsourcing.Event[any]
		hasInit, err := s.GetEvent(id, 0, &initEvent)
		if err != nil {
			return zero, false, err
		}
		if !hasInit {
			return zero, false, nil
		}
		aggregate, err = s.initFn(initEvent)
		if err != nil {
			return zero, false, appErrors.Wrap(appErrors.KindInitError, "apply init event", err)
		}
	}

	for {
		next := aggregate.Version() + 1
		var ev eventsourcing.Event[any]
		has, err := s.GetEvent(id, next, &ev)
		if err != nil {
			return zero, false, err
		}
		if !has {
			break
		}
		aggregate.Apply(ev)
	}
	return aggregate, true, nil
}

// StoreSnapshot unconditionally overwrites the snapshot slot for id.
func (s *Store[A]) StoreSnapshot(id eventsourcing.Handle, aggregate A) error {
	return s.Store(id, s.KeyForSnapshot(), aggregate)
}

// getInfo loads StoredValueInfo for id, treating an absent slot as the
// zero-value info of a never-touched aggregate.
func (s *Store[A]) getInfo(id eventsourcing.Handle) (eventsourcing.StoredValueInfo, error) {
	var info eventsourcing.StoredValueInfo
	found, err := s.Get(id, s.KeyForInfo(), &info)
	if err != nil {
		return eventsourcing.StoredValueInfo{}, err
	}
	if !found {
		return eventsourcing.NewStoredValueInfo(), nil
	}
	return info, nil
}

// SaveInfo overwrites the info slot for id — exposed for callers driving
// the load → validate → store_command → store_event(s) → store_snapshot?
// sequence described in spec §5, who must keep info in step with the log.
func (s *Store[A]) SaveInfo(id eventsourcing.Handle, info eventsourcing.StoredValueInfo) error {
	return s.Store(id, s.KeyForInfo(), info)
}

// CommandHistory returns the page of command history matching crit (spec
// §4.A.12). Every sequence 1..=last_command must have a command slot;
// a missing one is an invariant violation (CommandNotFound). Total is the
// filtered count before pagination; offset >= total is CommandOffSetError,
// not an empty page — a deliberately preserved quirk, see spec §9.
func (s *Store[A]) CommandHistory(id eventsourcing.Handle, crit eventsourcing.CommandHistoryCriteria) (eventsourcing.CommandHistory, error) {
	info, err := s.getInfo(id)
	if err != nil {
		return eventsourcing.CommandHistory{}, err
	}

	var filtered []eventsourcing.CommandHistoryRecord
	for seq := uint64(1); seq <= info.LastCommand; seq++ {
		var stored eventsourcing.StoredCommand[json.RawMessage]
		path := s.filePath(id, s.KeyForCommand(seq))
		has, err := s.getStrict(path, &stored)
		if err != nil {
			return eventsourcing.CommandHistory{}, err
		}
		if !has {
			return eventsourcing.CommandHistory{}, appErrors.New(appErrors.KindCommandNotFound,
				fmt.Sprintf("command sequence %d missing for handle %q", seq, id))
		}
		record := stored.ToHistoryRecord()
		if crit.ShouldInclude(record) {
			filtered = append(filtered, record)
		}
	}

	total := len(filtered)
	offset := crit.Offset
	if offset >= total {
		return eventsourcing.CommandHistory{}, appErrors.New(appErrors.KindCommandOffSetError,
			fmt.Sprintf("offset %d is not less than total %d", offset, total))
	}

	records := filtered[offset:]
	if crit.Rows != nil && *crit.Rows < len(records) {
		records = records[:*crit.Rows]
	}

	return eventsourcing.CommandHistory{Offset: offset, Total: total, Records: records}, nil
}

// KeysAscendingMatching lists file names under id's directory containing
// substring, sorted lexicographically. Advisory only — lexicographic
// order does not match numeric event/command order (spec §6.1).
func (s *Store[A]) KeysAscendingMatching(id eventsourcing.Handle, substring string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dirForAggregate(id))
	if err != nil {
		return nil, nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.Contains(entry.Name(), substring) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
