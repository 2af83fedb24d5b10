package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

type storedTransaction struct {
	Transaction
	seq int64
}

type inMemoryStore struct {
	mu           sync.RWMutex
	nextID       int64
	seq          int64
	accounts     map[int64]Account
	byNumber     map[string]int64
	transactions map[int64][]storedTransaction

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewInMemory creates a concurrency-safe in-memory store useful for unit tests
// and local development.
func NewInMemory() Store {
	return &inMemoryStore{
		accounts:     make(map[int64]Account),
		byNumber:     make(map[string]int64),
		transactions: make(map[int64][]storedTransaction),
		locks:        make(map[int64]*sync.Mutex),
	}
}

func (s *inMemoryStore) accountLock(id int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	return mu
}

func (s *inMemoryStore) CreateAccount(_ context.Context, acc Account) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byNumber[acc.Number]; exists {
		return Account{}, ErrDuplicateAccountNumber
	}

	s.nextID++
	acc.ID = s.nextID
	now := time.Now().UTC()
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = now
	}
	acc.UpdatedAt = now

	s.accounts[acc.ID] = acc
	s.byNumber[acc.Number] = acc.ID
	return acc, nil
}

func (s *inMemoryStore) Account(_ context.Context, id int64) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return acc, nil
}

func (s *inMemoryStore) AccountByNumber(_ context.Context, number string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNumber[number]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return s.accounts[id], nil
}

func (s *inMemoryStore) RecentTransactions(_ context.Context, accountID int64, limit int) ([]Transaction, error) {
	s.mu.RLock()
	stored := append([]storedTransaction(nil), s.transactions[accountID]...)
	s.mu.RUnlock()

	sort.Slice(stored, func(i, j int) bool {
		if !stored[i].CreatedAt.Equal(stored[j].CreatedAt) {
			return stored[i].CreatedAt.After(stored[j].CreatedAt)
		}
		return stored[i].seq > stored[j].seq
	})
	if limit > 0 && len(stored) > limit {
		stored = stored[:limit]
	}

	out := make([]Transaction, len(stored))
	for i, st := range stored {
		out[i] = st.Transaction
	}
	return out, nil
}

func (s *inMemoryStore) WithinAccount(ctx context.Context, id int64, fn func(ctx context.Context, u Unit) error) error {
	// accounts are never removed, so only known ids get a lock
	if _, err := s.Account(ctx, id); err != nil {
		return err
	}
	lock := s.accountLock(id)
	lock.Lock()
	defer lock.Unlock()

	acc, err := s.Account(ctx, id)
	if err != nil {
		return err
	}

	u := &memoryUnit{account: acc}
	if err := fn(ctx, u); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range u.pending {
		s.seq++
		s.transactions[id] = append(s.transactions[id], storedTransaction{Transaction: tx, seq: s.seq})
	}
	if u.dirty {
		u.account.UpdatedAt = time.Now().UTC()
		s.accounts[id] = u.account
	}
	return nil
}

// memoryUnit buffers writes until the owning WithinAccount call commits them.
type memoryUnit struct {
	account Account
	dirty   bool
	pending []Transaction
}

func (u *memoryUnit) Account() Account { return u.account }

func (u *memoryUnit) SaveAccount(_ context.Context, acc Account) error {
	// id and number are immutable once assigned
	acc.ID = u.account.ID
	acc.Number = u.account.Number
	u.account = acc
	u.dirty = true
	return nil
}

func (u *memoryUnit) AppendTransaction(_ context.Context, tx Transaction) error {
	tx.AccountID = u.account.ID
	u.pending = append(u.pending, tx)
	return nil
}
