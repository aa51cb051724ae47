package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/model"
)

// Store is a process-lifetime, append-only collection of embedding records
// with linear-scan retrieval. It is NOT persisted: a restart loses all
// vectors. That limitation is inherited from the source system and accepted;
// conversation and file metadata survive in the repository.
//
// All vectors in one store share the same dimensionality. The first insert
// fixes it; later inserts with a different length are rejected.
type Store struct {
	mu      sync.RWMutex
	dim     int
	records []*Record
	seq     int
}

// NewStore creates an empty memory store
func NewStore() *Store {
	return &Store{}
}

// Insert appends a record. If the record has no ID, a unique one is
// assigned. Returns the stored record.
func (s *Store) Insert(rec *Record) (*Record, error) {
	if len(rec.Vector) == 0 {
		return nil, goerr.New("record has no vector")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dim == 0 {
		s.dim = len(rec.Vector)
	} else if len(rec.Vector) != s.dim {
		return nil, goerr.Wrap(model.ErrDimensionMismatch, "record vector length differs from store",
			goerr.V("store_dim", s.dim), goerr.V("record_dim", len(rec.Vector)))
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.seq = s.seq
	s.seq++

	s.records = append(s.records, rec)
	return rec, nil
}

// QueryByConversation returns all records of a conversation in insertion order
func (s *Store) QueryByConversation(id model.ConversationID) []*Record {
	return s.Query(ByConversation(id))
}

// QueryAll returns every record in insertion order, used for
// cross-conversation memory recall
func (s *Store) QueryAll() []*Record {
	return s.Query()
}

// Query returns records matching all filters, in insertion order
func (s *Store) Query(filters ...Filter) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	for _, rec := range s.records {
		if matchRecord(rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}

// DeleteByConversation removes all records of a conversation and returns
// how many were removed. Removing an unknown conversation is a no-op.
func (s *Store) DeleteByConversation(id model.ConversationID) int {
	return s.DeleteWhere(ByConversation(id))
}

// DeleteWhere removes all records matching the filter and returns the count
func (s *Store) DeleteWhere(filter Filter) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	removed := 0
	for _, rec := range s.records {
		if filter(rec) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return removed
}

// Count returns the number of stored records
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Dimension returns the vector dimensionality, or 0 for an empty store
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

func matchRecord(rec *Record, filters []Filter) bool {
	for _, f := range filters {
		if !f(rec) {
			return false
		}
	}
	return true
}
