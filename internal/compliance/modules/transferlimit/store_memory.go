package transferlimit

import (
	"context"
	"sync"
	"time"

	"tokengate/pkg/domain"
)

// InMemoryWindowStore keeps window counters in a map guarded by a mutex.
// Windows roll lazily: a read or write past the stored boundary resets the
// counter before applying.
type InMemoryWindowStore struct {
	mu      sync.Mutex
	windows map[domain.PrincipalID]*principalWindows
}

type principalWindows struct {
	dayStart   time.Time
	daySum     uint64
	monthStart time.Time
	monthSum   uint64
}

func NewInMemoryWindowStore() *InMemoryWindowStore {
	return &InMemoryWindowStore{windows: make(map[domain.PrincipalID]*principalWindows)}
}

func (s *InMemoryWindowStore) Sums(_ context.Context, principal domain.PrincipalID, now time.Time) (Sums, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.roll(principal, now)
	return Sums{Daily: w.daySum, Monthly: w.monthSum}, nil
}

func (s *InMemoryWindowStore) Add(_ context.Context, principal domain.PrincipalID, amount uint64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.roll(principal, now)
	w.daySum += amount
	w.monthSum += amount
	return nil
}

// roll resets any window whose boundary has passed.
func (s *InMemoryWindowStore) roll(principal domain.PrincipalID, now time.Time) *principalWindows {
	w, ok := s.windows[principal]
	if !ok {
		w = &principalWindows{dayStart: dayStart(now), monthStart: monthStart(now)}
		s.windows[principal] = w
	}
	if day := dayStart(now); day.After(w.dayStart) {
		w.dayStart = day
		w.daySum = 0
	}
	if month := monthStart(now); month.After(w.monthStart) {
		w.monthStart = month
		w.monthSum = 0
	}
	return w
}
