package reportstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"slices"
	"sync"

	"github.com/yanqian/carbonlens/internal/domain/footprint"
)

// MemoryStore keeps archived reports in memory. Useful for tests and local dev.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]storedReport
}

type storedReport struct {
	data        []byte
	contentType string
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]storedReport)}
}

// Put stores the report and returns metadata.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) (footprint.StoredReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := md5.Sum(data)
	s.reports[key] = storedReport{data: slices.Clone(data), contentType: contentType}
	return footprint.StoredReport{
		Key:  key,
		Size: int64(len(data)),
		ETag: hex.EncodeToString(sum[:]),
	}, nil
}

// Get returns a stored report and its content type.
func (s *MemoryStore) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[key]
	if !ok {
		return nil, "", false
	}
	return slices.Clone(r.data), r.contentType, true
}

var _ footprint.ReportArchive = (*MemoryStore)(nil)
