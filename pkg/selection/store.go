package selection

import (
	"sync"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

// Criteria is the four selection sets at one point in time.
type Criteria struct {
	Programs Set[model.Key]
	Partners Set[model.Key]
	Sectors  Set[model.Key]
	Markers  Set[model.Key]
}

// Get returns the set for dim.
func (c Criteria) Get(dim model.Dimension) Set[model.Key] {
	switch dim {
	case model.DimPrograms:
		return c.Programs
	case model.DimPartners:
		return c.Partners
	case model.DimSectors:
		return c.Sectors
	case model.DimMarkers:
		return c.Markers
	default:
		return Set[model.Key]{}
	}
}

// With returns a copy of c with dim's set replaced.
func (c Criteria) With(dim model.Dimension, s Set[model.Key]) Criteria {
	switch dim {
	case model.DimPrograms:
		c.Programs = s
	case model.DimPartners:
		c.Partners = s
	case model.DimSectors:
		c.Sectors = s
	case model.DimMarkers:
		c.Markers = s
	}
	return c
}

// IsEmpty reports whether no dimension has a selection.
func (c Criteria) IsEmpty() bool {
	return c.Programs.IsEmpty() && c.Partners.IsEmpty() && c.Sectors.IsEmpty() && c.Markers.IsEmpty()
}

// CriteriaFromKeys sorts keys into their dimensions by kind. Malformed keys
// are returned separately.
func CriteriaFromKeys(keys []string) (Criteria, []string) {
	var c Criteria
	var bad []string
	for _, raw := range keys {
		k := model.Key(raw)
		dim := k.Kind().Dimension()
		if dim == "" {
			bad = append(bad, raw)
			continue
		}
		c = c.With(dim, c.Get(dim).With(k))
	}
	return c, bad
}

// Change describes one store update.
type Change struct {
	// Dimension is empty when every dimension changed at once.
	Dimension model.Dimension
	// Generation is bumped when the context changes.
	Generation     uint64
	ContextChanged bool
}

// Store is the shared selection state of the application: one selection set
// per dimension plus the region/date context they were made in. It is safe for
// concurrent use. Subscribers run synchronously after the lock is released.
type Store struct {
	mu       sync.RWMutex
	criteria Criteria
	context  model.Context
	gen      uint64
	subs     []func(Change)
}

// NewStore returns an empty store scoped to ctx.
func NewStore(ctx model.Context) *Store {
	return &Store{context: ctx}
}

// Selection returns the current set for dim.
func (s *Store) Selection(dim model.Dimension) Set[model.Key] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria.Get(dim)
}

// SetSelection replaces dim's set.
func (s *Store) SetSelection(dim model.Dimension, set Set[model.Key]) {
	s.update(dim, func(Set[model.Key]) Set[model.Key] { return set })
}

// Toggle adds or removes a single key in dim.
func (s *Store) Toggle(dim model.Dimension, key model.Key, on bool) {
	s.update(dim, func(cur Set[model.Key]) Set[model.Key] {
		if on {
			return cur.With(key)
		}
		return cur.Without(key)
	})
}

func (s *Store) update(dim model.Dimension, fn func(Set[model.Key]) Set[model.Key]) {
	s.mu.Lock()
	cur := s.criteria.Get(dim)
	next := fn(cur)
	if cur.Equal(next) {
		s.mu.Unlock()
		return
	}
	s.criteria = s.criteria.With(dim, next)
	ch := Change{Dimension: dim, Generation: s.gen}
	s.mu.Unlock()
	s.notify(ch)
}

// ClearAll empties every dimension.
func (s *Store) ClearAll() {
	s.mu.Lock()
	if s.criteria.IsEmpty() {
		s.mu.Unlock()
		return
	}
	s.criteria = Criteria{}
	ch := Change{Generation: s.gen}
	s.mu.Unlock()
	s.notify(ch)
}

// Context returns the region/date scope.
func (s *Store) Context() model.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.context
}

// Generation returns the number of context changes so far.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// SetContext switches the region/date scope. A different context clears every
// selection, since the option lists they refer to are about to be refetched.
// It reports whether anything changed.
func (s *Store) SetContext(ctx model.Context) bool {
	s.mu.Lock()
	if ctx == s.context {
		s.mu.Unlock()
		return false
	}
	s.context = ctx
	s.criteria = Criteria{}
	s.gen++
	ch := Change{Generation: s.gen, ContextChanged: true}
	s.mu.Unlock()
	s.notify(ch)
	return true
}

// Snapshot returns all four sets at once.
func (s *Store) Snapshot() Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// Subscribe registers fn for change notifications and returns a func that
// removes it.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.subs) {
			s.subs[idx] = nil
		}
	}
}

func (s *Store) notify(ch Change) {
	s.mu.RLock()
	subs := make([]func(Change), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()
	for _, fn := range subs {
		if fn != nil {
			fn(ch)
		}
	}
}
