package ledger

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrLedgerNotFound is returned by Storage.Load when nothing has been persisted yet.
var ErrLedgerNotFound = errors.New("ledger file not found")

// Snapshot is the full persisted state of both namespaces.
type Snapshot struct {
	Economy map[string]EconomyEntry `json:"economy"`
	Shulk   map[string]int64        `json:"shulk"`
}

// EconomyEntry is the persisted form of a primary-currency account.
// LastClaim holds the stored JSON verbatim, so a value of the wrong type
// loads and is written back untouched until the next claim replaces it.
type EconomyEntry struct {
	Balance   int64           `json:"balance"`
	LastClaim json.RawMessage `json:"last_claim"`
}

var jsonNull = []byte("null")

// ClaimText returns last_claim as text: the value of a JSON string, the raw
// JSON of any other non-null value, and "" for null or absent.
func (e EconomyEntry) ClaimText() string {
	raw := bytes.TrimSpace(e.LastClaim)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}

// EncodeClaim renders a last_claim value as a JSON string. An empty value
// encodes as null.
func EncodeClaim(value string) json.RawMessage {
	if value == "" {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Economy: make(map[string]EconomyEntry),
		Shulk:   make(map[string]int64),
	}
}

func (s *Snapshot) normalize() {
	if s.Economy == nil {
		s.Economy = make(map[string]EconomyEntry)
	}
	if s.Shulk == nil {
		s.Shulk = make(map[string]int64)
	}
}

// Storage defines the persistence contract for ledger snapshots.
type Storage interface {
	// Load returns the persisted snapshot or ErrLedgerNotFound.
	Load(ctx context.Context) (*Snapshot, error)
	// Save durably replaces the persisted snapshot.
	Save(ctx context.Context, snapshot *Snapshot) error
}

const recentDigests = 4

// FileStorage persists snapshots as an indented JSON document, replacing the
// whole file atomically on every save.
type FileStorage struct {
	path string

	mu     sync.Mutex
	recent [][sha256.Size]byte
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates a FileStorage for path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: filepath.Clean(path)}
}

// Path returns the ledger file location.
func (f *FileStorage) Path() string {
	return f.path
}

// Load reads and decodes the ledger file.
func (f *FileStorage) Load(_ context.Context) (*Snapshot, error) {
	// #nosec G304: path comes from configuration
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrLedgerNotFound
		}
		return nil, fmt.Errorf("read ledger %q: %w", f.path, err)
	}

	snapshot, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptLedger, f.path, err)
	}

	f.remember(sha256.Sum256(data))

	return snapshot, nil
}

// Save encodes snapshot and atomically replaces the ledger file with it.
func (f *FileStorage) Save(_ context.Context, snapshot *Snapshot) error {
	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}

	// Recorded before the rename so the file watcher never sees our own
	// content as foreign.
	f.remember(sha256.Sum256(data))

	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace ledger %q: %w", f.path, err)
	}

	syncDir(dir)

	return nil
}

// IsOwnContent reports whether data matches one of the most recent snapshots
// this storage loaded or wrote.
func (f *FileStorage) IsOwnContent(data []byte) bool {
	digest := sha256.Sum256(data)

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, known := range f.recent {
		if known == digest {
			return true
		}
	}
	return false
}

// HealthCheck verifies the ledger file's directory is reachable and the file,
// when present, is a regular file.
func (f *FileStorage) HealthCheck(_ context.Context) error {
	info, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if _, dirErr := os.Stat(filepath.Dir(f.path)); dirErr != nil {
				return fmt.Errorf("ledger directory: %w", dirErr)
			}
			return nil
		}
		return fmt.Errorf("stat ledger: %w", err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("ledger path %q is not a regular file", f.path)
	}
	return nil
}

func (f *FileStorage) remember(digest [sha256.Size]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.recent = append(f.recent, digest)
	if len(f.recent) > recentDigests {
		f.recent = f.recent[len(f.recent)-recentDigests:]
	}
}

// EncodeSnapshot renders snapshot with two-space indentation and without
// escaping non-ASCII or HTML characters.
func EncodeSnapshot(snapshot *Snapshot) ([]byte, error) {
	if snapshot == nil {
		snapshot = NewSnapshot()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeSnapshot parses a ledger document. Missing namespaces decode as empty.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	snapshot.normalize()

	return &snapshot, nil
}

func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
