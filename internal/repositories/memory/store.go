package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
)

// Store is an in-memory implementation of every repository port and of the
// unit of work. It is safe for concurrent use; data is lost on restart.
//
// Units of work run on a private copy of the data that replaces the shared
// copy only when the unit commits. Writes made outside a unit of work are
// single-operation units.
type Store struct {
	mu    sync.RWMutex // guards state
	state *memState

	txMu sync.Mutex // serializes writers

	faultMu sync.Mutex
	fault   func(op string) error
}

type memState struct {
	linkedAccounts map[string]domain.LinkedAccount
	bankAccounts   map[string]domain.BankAccount
	transactions   map[string]domain.Transaction
	categories     map[string]domain.Category
	budgets        map[string]domain.Budget
	goals          map[string]domain.Goal
}

func newMemState() *memState {
	return &memState{
		linkedAccounts: make(map[string]domain.LinkedAccount),
		bankAccounts:   make(map[string]domain.BankAccount),
		transactions:   make(map[string]domain.Transaction),
		categories:     make(map[string]domain.Category),
		budgets:        make(map[string]domain.Budget),
		goals:          make(map[string]domain.Goal),
	}
}

// clone copies the maps. Entries are values whose pointer fields are never
// written through, so a shallow copy is enough.
func (s *memState) clone() *memState {
	return &memState{
		linkedAccounts: maps.Clone(s.linkedAccounts),
		bankAccounts:   maps.Clone(s.bankAccounts),
		transactions:   maps.Clone(s.transactions),
		categories:     maps.Clone(s.categories),
		budgets:        maps.Clone(s.budgets),
		goals:          maps.Clone(s.goals),
	}
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{state: newMemState()}
}

// NewRepositoryProvider exposes the store through the repository ports.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	repo := &repo{store: store}
	return portsrepo.RepositoryProvider{
		LinkedAccountRepo: repo,
		TransactionRepo:   repo,
		CategoryRepo:      repo,
		BudgetRepo:        repo,
		UnitOfWork:        store,
	}
}

// SetFault installs a hook called before every write and before commit with
// the operation name ("SaveTransaction", "AdvanceCursor", "commit", ...).
// A non-nil return aborts the operation with that error. Pass nil to clear.
func (s *Store) SetFault(fn func(op string) error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.fault = fn
}

func (s *Store) inject(op string) error {
	s.faultMu.Lock()
	fn := s.fault
	s.faultMu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(op)
}

// RunInTx implements the UnitOfWork interface.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, store portsrepo.LedgerTxStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.state.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &repo{store: s, state: work}); err != nil {
		return err
	}
	if err := s.inject("commit"); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = work
	s.mu.Unlock()
	return nil
}

// repo implements the repository facades either on the shared data or,
// inside a unit of work, on the unit's private copy.
type repo struct {
	store *Store
	state *memState // nil outside a unit of work
}

var (
	_ portsrepo.LedgerTxStore                 = (*repo)(nil)
	_ portsrepo.LinkedAccountRepositoryFacade = (*repo)(nil)
	_ portsrepo.TransactionRepositoryFacade   = (*repo)(nil)
	_ portsrepo.CategoryRepositoryFacade      = (*repo)(nil)
	_ portsrepo.BudgetRepositoryFacade        = (*repo)(nil)
	_ portsrepo.UnitOfWork                    = (*Store)(nil)
)

func (r *repo) LinkedAccounts() portsrepo.LinkedAccountRepositoryFacade { return r }
func (r *repo) Transactions() portsrepo.TransactionRepositoryFacade     { return r }
func (r *repo) Categories() portsrepo.CategoryRepositoryFacade          { return r }
func (r *repo) Budgets() portsrepo.BudgetRepositoryFacade               { return r }

func (r *repo) read(fn func(s *memState) error) error {
	if r.state != nil {
		return fn(r.state)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return fn(r.store.state)
}

func (r *repo) write(op string, fn func(s *memState) error) error {
	if err := r.store.inject(op); err != nil {
		return err
	}
	if r.state != nil {
		return fn(r.state)
	}

	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	r.store.mu.RLock()
	next := r.store.state.clone()
	r.store.mu.RUnlock()

	if err := fn(next); err != nil {
		return err
	}

	r.store.mu.Lock()
	r.store.state = next
	r.store.mu.Unlock()
	return nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
