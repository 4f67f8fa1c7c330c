// Package trips holds the session's trip plans and the currently viewed plan.
package trips

import (
	"sync"

	"github.com/theirongolddev/tripbudget/internal/estimator"
	"github.com/theirongolddev/tripbudget/internal/model"
)

// Store is an append-only, insertion-ordered collection of plans plus a
// "current" pointer. Plans live for the life of the Store.
type Store struct {
	mu      sync.RWMutex
	est     *estimator.Estimator
	plans   []model.TripPlan
	index   map[string]int
	current int // index into plans, -1 when unset
}

// NewStore returns an empty store that estimates plans with est.
func NewStore(est *estimator.Estimator) *Store {
	return &Store{
		est:     est,
		index:   make(map[string]int),
		current: -1,
	}
}

// Create estimates req, appends the plan, makes it current, and returns it.
func (s *Store) Create(req model.TripRequest) model.TripPlan {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan := s.est.Estimate(req)
	s.plans = append(s.plans, plan)
	idx := len(s.plans) - 1
	if _, dup := s.index[plan.ID]; !dup {
		s.index[plan.ID] = idx
	}
	s.current = idx
	return plan
}

// Select makes the plan with id current. Unknown ids leave current unchanged.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.index[id]; ok {
		s.current = idx
	}
}

// ClearCurrent unsets the current plan.
func (s *Store) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = -1
}

// Current returns the current plan, if any.
func (s *Store) Current() (model.TripPlan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current < 0 {
		return model.TripPlan{}, false
	}
	return s.plans[s.current], true
}

// Get looks a plan up by id.
func (s *Store) Get(id string) (model.TripPlan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.index[id]
	if !ok {
		return model.TripPlan{}, false
	}
	return s.plans[idx], true
}

// List returns a copy of all plans in insertion order.
func (s *Store) List() []model.TripPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TripPlan, len(s.plans))
	copy(out, s.plans)
	return out
}

// Len returns the number of stored plans.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.plans)
}

// Stats aggregates the dashboard quick stats over all plans.
func (s *Store) Stats() model.DashboardStats {
	return Aggregate(s.List())
}
