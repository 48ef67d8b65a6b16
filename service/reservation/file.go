package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mikeydub/go-storefront/service/persist"
)

// ErrConcurrentWrite is returned when the snapshot changed on disk between read and write
type ErrConcurrentWrite struct {
	Path     string
	Expected int64
	Found    int64
}

func (e ErrConcurrentWrite) Error() string {
	return fmt.Sprintf("reservation file %s was modified concurrently (expected version %d, found %d)", e.Path, e.Expected, e.Found)
}

type snapshot struct {
	Version      int64               `json:"version"`
	Reservations map[int]Reservation `json:"reservations"`
}

// FileStore persists reservations as a JSON snapshot. Every write is a read-modify-write under the
// store's mutex and is replaced atomically with a rename.
//
// FileStore is only safe when one process at a time writes the path. The version check
// before each write catches most writes from another process, but the file is not locked, so one
// landing between that check and the rename is lost. Use the redis or postgres store when more
// than one instance shares reservations.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (f *FileStore) Reserve(ctx context.Context, id int, holder persist.EthereumAddress, until time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap, err := f.read()
	if err != nil {
		return false, err
	}

	if r, ok := snap.Reservations[id]; ok && r.Blocks(holder, f.now()) {
		return false, nil
	}

	snap.Reservations[id] = Reservation{Holder: holder, Until: until}
	if err := f.write(snap); err != nil {
		return false, err
	}
	return true, nil
}

func (f *FileStore) Release(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap, err := f.read()
	if err != nil {
		return err
	}

	if _, ok := snap.Reservations[id]; !ok {
		return nil
	}

	delete(snap.Reservations, id)
	return f.write(snap)
}

func (f *FileStore) Reserved(ctx context.Context, now time.Time) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap, err := f.read()
	if err != nil {
		return nil, err
	}
	return unexpired(snap.Reservations, now), nil
}

func (f *FileStore) read() (snapshot, error) {
	snap := snapshot{Reservations: map[int]Reservation{}}

	bs, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return snap, nil
	}
	if err != nil {
		return snap, err
	}

	if err := json.Unmarshal(bs, &snap); err != nil {
		return snap, fmt.Errorf("corrupt reservation file %s: %w", f.path, err)
	}
	if snap.Reservations == nil {
		snap.Reservations = map[int]Reservation{}
	}
	return snap, nil
}

func (f *FileStore) write(snap snapshot) error {
	onDisk, err := f.read()
	if err != nil {
		return err
	}
	if onDisk.Version != snap.Version {
		return ErrConcurrentWrite{Path: f.path, Expected: snap.Version, Found: onDisk.Version}
	}

	// Expired entries are dropped on every write so the file stays small
	now := f.now()
	for id, r := range snap.Reservations {
		if !r.Until.After(now) {
			delete(snap.Reservations, id)
		}
	}
	snap.Version++

	bs, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(bs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.path)
}
