// Package artifacts keeps the most recent screenshot produced by any run so it
// can be served after the run completes.
package artifacts

import (
	"sync"
	"time"
)

// Artifact is an encoded image and when it was stored.
type Artifact struct {
	Data      []byte
	MIMEType  string
	StoredAt  time.Time
	SourceURL string
}

// Store holds the latest artifact in memory. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	latest *Artifact
	now    func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Set replaces the latest artifact. data is copied.
func (s *Store) Set(sourceURL string, data []byte, mimeType string) {
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &Artifact{
		Data:      buf,
		MIMEType:  mimeType,
		StoredAt:  s.now(),
		SourceURL: sourceURL,
	}
}

// Latest returns the most recent artifact, or false if none was stored yet.
func (s *Store) Latest() (Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Artifact{}, false
	}
	return *s.latest, true
}
