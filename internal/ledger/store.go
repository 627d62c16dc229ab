package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/Proton-105/shulk-bot/pkg/metrics"
)

// Change describes a mutation decided inside the ledger's critical section.
type Change struct {
	Delta int64
	// ClaimAt overwrites last_claim when set. Ignored in the shulk namespace.
	ClaimAt *time.Time
}

// UpdateFunc inspects the current record under the ledger lock and returns
// the change to apply. Returning an error aborts the mutation untouched.
type UpdateFunc func(current Account) (Change, error)

// Store is the in-memory ledger of both namespaces backed by Storage.
//
// Every mutation, for any user in any namespace, runs under one mutex that
// is held until the whole snapshot has been persisted. Reads never wait for
// that mutex; they only synchronize on the map itself and observe either the
// state before or after an in-flight mutation.
type Store struct {
	storage Storage
	log     *slog.Logger

	mu sync.Mutex

	dataMu sync.RWMutex
	data   *Snapshot
}

// NewStore creates an empty, unloaded Store.
func NewStore(storage Storage, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	return &Store{
		storage: storage,
		log:     log,
	}
}

// Load reads the persisted snapshot. When nothing was persisted yet, both
// namespaces start empty and that empty state is persisted immediately.
// A corrupt ledger is returned as an error wrapping ErrCorruptLedger.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.storage.Load(ctx)
	switch {
	case err == nil:
		snapshot.normalize()
		s.setData(snapshot)
		s.log.InfoContext(ctx, "ledger loaded",
			slog.Int("economy_accounts", len(snapshot.Economy)),
			slog.Int("shulk_accounts", len(snapshot.Shulk)),
		)
	case errors.Is(err, ErrLedgerNotFound):
		s.setData(NewSnapshot())
		if err := s.persistLocked(ctx); err != nil {
			return fmt.Errorf("initialize ledger: %w", err)
		}
		s.log.InfoContext(ctx, "ledger initialized empty")
	default:
		return fmt.Errorf("load ledger: %w", err)
	}

	s.reportSizes()
	return nil
}

// Read returns the record for userID, or the zero record when absent. It
// never mutates the ledger.
func (s *Store) Read(ns Namespace, userID int64) Account {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	return s.readLocked(ns, userKey(userID))
}

// ApplyDelta adds delta to the user's balance, overwrites last_claim when
// claimAt is given, clamps shulk balances at zero and persists the ledger
// before returning the new record.
func (s *Store) ApplyDelta(ctx context.Context, ns Namespace, userID int64, delta int64, claimAt *time.Time) (Account, error) {
	return s.Update(ctx, ns, userID, func(Account) (Change, error) {
		return Change{Delta: delta, ClaimAt: claimAt}, nil
	})
}

// Update runs fn and applies its change inside the ledger's critical section.
func (s *Store) Update(ctx context.Context, ns Namespace, userID int64, fn UpdateFunc) (Account, error) {
	if err := ns.Validate(); err != nil {
		return Account{}, err
	}
	if fn == nil {
		return Account{}, errors.New("update func is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded() {
		return Account{}, ErrNotLoaded
	}

	key := userKey(userID)
	current := s.Read(ns, userID)

	change, err := fn(current)
	if err != nil {
		return current, err
	}

	next, err := applyChange(ns, current, change)
	if err != nil {
		metrics.RecordLedgerMutation(string(ns), "rejected", 0)
		return current, err
	}

	s.dataMu.Lock()
	s.writeLocked(ns, key, next)
	s.dataMu.Unlock()

	start := time.Now()
	if err := s.persistLocked(ctx); err != nil {
		metrics.RecordLedgerMutation(string(ns), "persist_failed", time.Since(start))
		// The in-memory ledger already holds the new record; the file does not.
		s.log.ErrorContext(ctx, "ledger persist failed after mutation",
			slog.String("namespace", string(ns)),
			slog.Int64("user_id", userID),
			slog.Int64("delta", change.Delta),
			slog.Any("error", err),
		)
		return Account{}, fmt.Errorf("persist ledger: %w", err)
	}
	metrics.RecordLedgerMutation(string(ns), "ok", time.Since(start))
	s.reportSizes()

	s.log.DebugContext(ctx, "ledger mutated",
		slog.String("namespace", string(ns)),
		slog.Int64("user_id", userID),
		slog.Int64("delta", change.Delta),
		slog.Int64("balance", next.Balance),
	)

	return next, nil
}

// Len returns the number of stored accounts in ns.
func (s *Store) Len(ns Namespace) int {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	if s.data == nil {
		return 0
	}

	switch ns {
	case NamespaceEconomy:
		return len(s.data.Economy)
	case NamespaceShulk:
		return len(s.data.Shulk)
	default:
		return 0
	}
}

func applyChange(ns Namespace, current Account, change Change) (Account, error) {
	next := current

	balance, ok := addInt64(current.Balance, change.Delta)
	if !ok {
		return current, fmt.Errorf("%w: %d%+d", ErrBalanceOverflow, current.Balance, change.Delta)
	}
	next.Balance = balance

	switch ns {
	case NamespaceEconomy:
		if change.ClaimAt != nil {
			next.LastClaim = FormatClaimTime(*change.ClaimAt)
		}
	case NamespaceShulk:
		if next.Balance < 0 {
			next.Balance = 0
		}
		next.LastClaim = ""
	}

	return next, nil
}

func addInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func (s *Store) readLocked(ns Namespace, key string) Account {
	if s.data == nil {
		return Account{}
	}

	switch ns {
	case NamespaceEconomy:
		entry, ok := s.data.Economy[key]
		if !ok {
			return Account{}
		}
		return Account{Balance: entry.Balance, LastClaim: entry.ClaimText()}
	case NamespaceShulk:
		return Account{Balance: s.data.Shulk[key]}
	default:
		return Account{}
	}
}

func (s *Store) writeLocked(ns Namespace, key string, account Account) {
	switch ns {
	case NamespaceEconomy:
		entry := s.data.Economy[key]
		entry.Balance = account.Balance
		if account.LastClaim != entry.ClaimText() {
			entry.LastClaim = EncodeClaim(account.LastClaim)
		}
		s.data.Economy[key] = entry
	case NamespaceShulk:
		s.data.Shulk[key] = account.Balance
	}
}

func (s *Store) persistLocked(ctx context.Context) error {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	return s.storage.Save(ctx, s.data)
}

func (s *Store) setData(snapshot *Snapshot) {
	s.dataMu.Lock()
	s.data = snapshot
	s.dataMu.Unlock()
}

func (s *Store) loaded() bool {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.data != nil
}

func (s *Store) reportSizes() {
	metrics.SetLedgerAccounts(string(NamespaceEconomy), s.Len(NamespaceEconomy))
	metrics.SetLedgerAccounts(string(NamespaceShulk), s.Len(NamespaceShulk))
}
