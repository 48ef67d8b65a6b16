package reservation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mikeydub/go-storefront/service/persist"
)

// Store records which catalog items have an outstanding mint authorization and for whom.
// Reserve is an atomic compare-and-set: it succeeds if the id has no unexpired reservation, or if the
// unexpired reservation belongs to the same holder, in which case its expiry is replaced.
type Store interface {
	Reserve(ctx context.Context, id int, holder persist.EthereumAddress, until time.Time) (bool, error)
	Release(ctx context.Context, id int) error
	Reserved(ctx context.Context, now time.Time) ([]int, error)
}

// Reservation is one outstanding authorization
type Reservation struct {
	Holder persist.EthereumAddress `json:"holder"`
	Until  time.Time               `json:"until"`
}

// Blocks reports whether the reservation keeps holder from reserving the same id at now
func (r Reservation) Blocks(holder persist.EthereumAddress, now time.Time) bool {
	return r.Until.After(now) && !SameHolder(r.Holder, holder)
}

// SameHolder compares addresses without regard to checksum casing
func SameHolder(a, b persist.EthereumAddress) bool {
	return strings.EqualFold(a.String(), b.String())
}

// ErrUnknownStore is returned when RESERVATION_STORE names no known store
type ErrUnknownStore struct {
	Name string
}

func (e ErrUnknownStore) Error() string {
	return fmt.Sprintf("unknown reservation store: %s", e.Name)
}

// MemoryStore keeps reservations in process
type MemoryStore struct {
	mu           sync.Mutex
	reservations map[int]Reservation
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reservations: map[int]Reservation{}, now: time.Now}
}

func (m *MemoryStore) Reserve(ctx context.Context, id int, holder persist.EthereumAddress, until time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.reservations[id]; ok && r.Blocks(holder, m.now()) {
		return false, nil
	}

	m.reservations[id] = Reservation{Holder: holder, Until: until}
	return true, nil
}

func (m *MemoryStore) Release(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reservations, id)
	return nil
}

func (m *MemoryStore) Reserved(ctx context.Context, now time.Time) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return unexpired(m.reservations, now), nil
}

func unexpired(reservations map[int]Reservation, now time.Time) []int {
	ids := []int{}
	for id, r := range reservations {
		if r.Until.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}
