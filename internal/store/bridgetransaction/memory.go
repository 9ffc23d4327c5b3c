package bridgetransaction

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
)

// memoryEntry holds one record. mu serialises writers for this id only;
// readers load snapshot without locking.
type memoryEntry struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[model.BridgeTransaction]
}

type memoryStore struct {
	// mu guards the index maps, never a record's contents
	mu       sync.RWMutex
	records  map[int64]*memoryEntry
	byHash   map[string]int64
	byWallet map[string][]int64
	lastID   int64
	now      func() time.Time
}

type MemoryOption func(*memoryStore)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *memoryStore) {
		s.now = now
	}
}

func NewMemory(opts ...MemoryOption) IStore {
	s := &memoryStore{
		records:  make(map[int64]*memoryEntry),
		byHash:   make(map[string]int64),
		byWallet: make(map[string][]int64),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *memoryStore) Create(_ context.Context, record *model.BridgeTransaction) (*model.BridgeTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := prepareForCreate(record, s.now().UTC())
	if err != nil {
		return nil, err
	}

	hashKey := model.NormalizeKey(rec.TransactionHash)
	if _, exists := s.byHash[hashKey]; exists {
		return nil, duplicateHashError(rec.TransactionHash)
	}

	s.lastID++
	rec.ID = s.lastID

	entry := &memoryEntry{}
	entry.snapshot.Store(rec)

	walletKey := model.NormalizeKey(rec.WalletAddress)
	s.records[rec.ID] = entry
	s.byHash[hashKey] = rec.ID
	s.byWallet[walletKey] = append(s.byWallet[walletKey], rec.ID)

	return rec.Clone(), nil
}

func (s *memoryStore) entry(id int64) *memoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id]
}

func (s *memoryStore) GetByID(_ context.Context, id int64) (*model.BridgeTransaction, error) {
	e := s.entry(id)
	if e == nil {
		return nil, notFoundByID(id)
	}
	return e.snapshot.Load().Clone(), nil
}

func (s *memoryStore) GetByHash(_ context.Context, hash string) (*model.BridgeTransaction, error) {
	s.mu.RLock()
	id, ok := s.byHash[model.NormalizeKey(hash)]
	e := s.records[id]
	s.mu.RUnlock()

	if !ok || e == nil {
		return nil, notFoundByHash(hash)
	}
	return e.snapshot.Load().Clone(), nil
}

func (s *memoryStore) ListByWallet(_ context.Context, walletAddress string) ([]*model.BridgeTransaction, error) {
	s.mu.RLock()
	ids := s.byWallet[model.NormalizeKey(walletAddress)]
	out := make([]*model.BridgeTransaction, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.records[id].snapshot.Load().Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (s *memoryStore) UpdateStatus(_ context.Context, id int64, status model.TransactionStatus, confirmations *int) (*model.BridgeTransaction, bool, error) {
	e := s.entry(id)
	if e == nil {
		return nil, false, notFoundByID(id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, changed, err := model.ApplyTransition(e.snapshot.Load(), status, confirmations, s.now().UTC())
	if err != nil {
		return nil, false, err
	}
	if changed {
		e.snapshot.Store(next)
	}
	return next.Clone(), changed, nil
}

func (s *memoryStore) ListActive(_ context.Context) ([]*model.BridgeTransaction, error) {
	s.mu.RLock()
	out := make([]*model.BridgeTransaction, 0)
	for _, e := range s.records {
		rec := e.snapshot.Load()
		if !rec.IsTerminal() {
			out = append(out, rec.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}
