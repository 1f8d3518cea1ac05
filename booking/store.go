package booking

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Storage keys mirrored from the web client.
const (
	keyPendingOrder    = "radikal_pending_order"
	keySelectedOutfits = "radikal_selected_outfits"
	keyBookingProgress = "radikal_booking_progress"
)

// PendingOrderTTL is how long an interrupted submission stays resumable.
const PendingOrderTTL = 24 * time.Hour

// KVStore is the injected durable key-value backend. Implementations must
// be safe for the single-client, sequential access pattern the checkout
// flow uses; no cross-client coordination is expected.
type KVStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// MemStore is an in-memory KVStore, used in tests and as a non-durable
// fallback.
type MemStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{items: make(map[string][]byte)}
}

func (m *MemStore) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.items[key] = v
	return nil
}

func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// FileStore is a KVStore persisting each key as a JSON file under a
// directory. This is the durable analogue of the web client's local
// storage.
type FileStore struct {
	dir string
}

// NewFileStore creates the backing directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (f *FileStore) Set(key string, value []byte) error {
	return os.WriteFile(f.path(key), value, 0o644)
}

func (f *FileStore) Delete(key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// PendingOrderState is the durable checkpoint of an in-flight submission.
// It is the single source of truth for what has already succeeded and is
// consulted before every retry to avoid duplicate submission or upload.
type PendingOrderState struct {
	OrderID       string    `json:"orderId"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
	OrderDataSent bool      `json:"orderDataSent"`
	UploadedFiles []string  `json:"uploadedFiles"`
	Fingerprint   string    `json:"fingerprint,omitempty"` // of the derived upload keys
}

// HasUploaded reports whether a file key is already confirmed uploaded.
func (p *PendingOrderState) HasUploaded(key string) bool {
	for _, k := range p.UploadedFiles {
		if k == key {
			return true
		}
	}
	return false
}

// MarkUploaded records a confirmed upload, keeping the set duplicate-free.
func (p *PendingOrderState) MarkUploaded(key string) {
	if p.HasUploaded(key) {
		return
	}
	p.UploadedFiles = append(p.UploadedFiles, key)
}

// SelectedOutfits is the wardrobe handoff record: outfits chosen on the
// browsing page, picked up again by the booking flow.
type SelectedOutfits struct {
	Outfits    []Outfit  `json:"outfits"`
	SelectedAt time.Time `json:"selectedAt"`
	SessionID  string    `json:"sessionId,omitempty"`
}

// ProgressSnapshot is the wizard state carried across a navigation
// boundary and back.
type ProgressSnapshot struct {
	SessionID   string    `json:"sessionId"`
	FormData    FormData  `json:"formData"`
	CurrentStep Step      `json:"currentStep"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Store wraps a KVStore with the booking flow's record types and TTL
// rules. Every load fails safe: a broken backend or corrupt record reads
// as absent, never as an error that could crash the checkout.
type Store struct {
	kv  KVStore
	now func() time.Time
}

// NewStore wraps a KVStore.
func NewStore(kv KVStore) *Store {
	return &Store{kv: kv, now: time.Now}
}

// SetClock overrides the store's clock (for tests).
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// SavePendingOrder overwrites the submission checkpoint.
func (s *Store) SavePendingOrder(state *PendingOrderState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.kv.Set(keyPendingOrder, data)
}

// LoadPendingOrder returns the checkpoint, or nil if absent, expired or
// unreadable. An expired record is deleted as a side effect.
func (s *Store) LoadPendingOrder() *PendingOrderState {
	data, ok, err := s.kv.Get(keyPendingOrder)
	if err != nil || !ok {
		if err != nil {
			log.Printf("booking: failed to read pending order: %v", err)
		}
		return nil
	}

	var state PendingOrderState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("booking: discarding corrupt pending order: %v", err)
		s.kv.Delete(keyPendingOrder)
		return nil
	}

	if s.now().After(state.ExpiresAt) {
		s.kv.Delete(keyPendingOrder)
		return nil
	}
	return &state
}

// ClearPendingOrder removes the checkpoint.
func (s *Store) ClearPendingOrder() {
	if err := s.kv.Delete(keyPendingOrder); err != nil {
		log.Printf("booking: failed to clear pending order: %v", err)
	}
}

// SaveSelectedOutfits stores the wardrobe selection. No TTL; cleared
// explicitly when consumed or reset.
func (s *Store) SaveSelectedOutfits(sel *SelectedOutfits) error {
	if sel.SelectedAt.IsZero() {
		sel.SelectedAt = s.now()
	}
	data, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	return s.kv.Set(keySelectedOutfits, data)
}

// LoadSelectedOutfits returns the wardrobe selection or nil.
func (s *Store) LoadSelectedOutfits() *SelectedOutfits {
	data, ok, err := s.kv.Get(keySelectedOutfits)
	if err != nil || !ok {
		return nil
	}
	var sel SelectedOutfits
	if err := json.Unmarshal(data, &sel); err != nil {
		return nil
	}
	return &sel
}

// ClearSelectedOutfits removes the wardrobe selection.
func (s *Store) ClearSelectedOutfits() {
	s.kv.Delete(keySelectedOutfits)
}

// SaveProgress stores the wizard snapshot.
func (s *Store) SaveProgress(snap *ProgressSnapshot) error {
	snap.LastUpdated = s.now()
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.kv.Set(keyBookingProgress, data)
}

// LoadProgress returns the wizard snapshot or nil.
func (s *Store) LoadProgress() *ProgressSnapshot {
	data, ok, err := s.kv.Get(keyBookingProgress)
	if err != nil || !ok {
		return nil
	}
	var snap ProgressSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil
	}
	return &snap
}

// ClearProgress removes the wizard snapshot.
func (s *Store) ClearProgress() {
	s.kv.Delete(keyBookingProgress)
}
