// Package app wires the screening engines, history store, and report
// pipeline into the flows the front end drives.
package app

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"visioncheck/domain/vision"
	"visioncheck/ports"
)

// HistoryKey is the storage key the persisted result list lives under.
const HistoryKey = "aiVisionTestHistory"

// HistoryCap bounds the persisted list. The newest record always
// survives an append; the oldest is evicted.
const HistoryCap = 50

// HistoryStore keeps the capped, newest-first list of completed
// screenings. Persistence failures degrade to in-memory state and a
// log line; they never surface to callers.
type HistoryStore struct {
	mu      sync.Mutex
	store   ports.KVStore
	log     *zap.Logger
	records []vision.StoredTestResult
	loaded  bool
}

// NewHistoryStore creates a history store over the given backend.
func NewHistoryStore(store ports.KVStore, log *zap.Logger) *HistoryStore {
	return &HistoryStore{store: store, log: log}
}

// Append prepends a record and persists the trimmed list.
func (h *HistoryStore) Append(record vision.StoredTestResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.load()

	h.records = append([]vision.StoredTestResult{record}, h.records...)
	if len(h.records) > HistoryCap {
		h.records = h.records[:HistoryCap]
	}
	h.persist()
}

// GetAll returns the stored records, newest first. The returned slice
// is the caller's to mutate.
func (h *HistoryStore) GetAll() []vision.StoredTestResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.load()

	out := make([]vision.StoredTestResult, len(h.records))
	copy(out, h.records)
	return out
}

// Recent returns up to n most-recent records of one test type, newest
// first. Used to give the report request its trend context.
func (h *HistoryStore) Recent(testType vision.TestType, n int) []vision.StoredTestResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.load()

	var out []vision.StoredTestResult
	for _, record := range h.records {
		if record.TestType != testType {
			continue
		}
		out = append(out, record)
		if len(out) == n {
			break
		}
	}
	return out
}

// Clear empties the history. Clearing an empty history is a no-op.
func (h *HistoryStore) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = nil
	h.loaded = true
	if err := h.store.Delete(HistoryKey); err != nil {
		h.log.Warn("history clear failed", zap.Error(err))
	}
}

// load pulls the persisted list into memory once. A missing key is an
// empty history; a corrupt or unreadable one logs and degrades to
// empty rather than blocking new results.
func (h *HistoryStore) load() {
	if h.loaded {
		return
	}
	h.loaded = true

	raw, ok, err := h.store.Get(HistoryKey)
	if err != nil {
		h.log.Warn("history load failed", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var records []vision.StoredTestResult
	if err := json.Unmarshal(raw, &records); err != nil {
		h.log.Warn("history is corrupt, starting fresh", zap.Error(err))
		return
	}
	if len(records) > HistoryCap {
		records = records[:HistoryCap]
	}
	h.records = records
}

func (h *HistoryStore) persist() {
	raw, err := json.Marshal(h.records)
	if err != nil {
		h.log.Warn("history encode failed", zap.Error(err))
		return
	}
	if err := h.store.Set(HistoryKey, raw); err != nil {
		h.log.Warn("history persist failed", zap.Error(err))
	}
}
