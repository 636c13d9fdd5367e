package boards

import (
	"context"
	"sync"
	"time"
)

const defaultSuppressGrace = 30 * time.Second

// deleteSuppressor remembers mirror message IDs the bot is about to delete itself,
// so the delete events discord sends back for them are not treated as external deletes
type deleteSuppressor struct {
	mutex   sync.Mutex
	pending map[string]time.Time
	grace   time.Duration
	now     func() time.Time
}

func newDeleteSuppressor(grace time.Duration) *deleteSuppressor {
	if grace <= 0 {
		grace = defaultSuppressGrace
	}
	return &deleteSuppressor{
		pending: make(map[string]time.Time),
		grace:   grace,
		now:     time.Now,
	}
}

func (s *deleteSuppressor) add(messageIDs ...string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	expires := s.now().Add(s.grace)
	for _, messageID := range messageIDs {
		s.pending[messageID] = expires
	}
}

func (s *deleteSuppressor) remove(messageIDs ...string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, messageID := range messageIDs {
		delete(s.pending, messageID)
	}
}

// consume reports whether the delete of messageID was issued by the bot and clears the entry
func (s *deleteSuppressor) consume(messageID string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	expires, ok := s.pending[messageID]
	if !ok {
		return false
	}
	delete(s.pending, messageID)
	return !s.now().After(expires)
}

// sweep drops expired entries and returns how many were dropped
func (s *deleteSuppressor) sweep() (dropped int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	now := s.now()
	for messageID, expires := range s.pending {
		if now.After(expires) {
			delete(s.pending, messageID)
			dropped++
		}
	}
	return dropped
}

func (s *deleteSuppressor) size() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.pending)
}

func (s *deleteSuppressor) run(ctx context.Context) {
	ticker := time.NewTicker(s.grace)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}
