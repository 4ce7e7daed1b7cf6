package selection

import (
	"slices"
	"sync"
	"testing"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

func TestSetCopyOnWrite(t *testing.T) {
	a := NewSet(3, 1, 2)
	b := a.With(4)
	if a.Has(4) || !b.Has(4) {
		t.Fatal("With mutated the receiver")
	}
	c := b.Without(1, 9)
	if !b.Has(1) || c.Has(1) {
		t.Fatal("Without mutated the receiver")
	}
	if got := c.Keys(); !slices.Equal(got, []int{2, 3, 4}) {
		t.Errorf("Keys = %v", got)
	}
	if a.With(1).Len() != 3 {
		t.Error("adding an existing key changed the set")
	}
	if !b.ContainsAll(a) || a.ContainsAll(b) || !a.ContainsAll(Set[int]{}) {
		t.Error("ContainsAll mismatch")
	}
	if !a.Intersects(NewSet(2, 8)) || a.Intersects(NewSet(8)) {
		t.Error("Intersects mismatch")
	}
	if got := a.Union(NewSet(9)).String(); got != "{1, 2, 3, 9}" {
		t.Errorf("Union = %s", got)
	}
	even := b.Filter(func(k int) bool { return k%2 == 0 })
	if !even.Equal(NewSet(2, 4)) {
		t.Errorf("Filter = %v", even)
	}
	var zero Set[int]
	if !zero.IsEmpty() || zero.Has(1) || zero.String() != "{}" {
		t.Error("zero set misbehaves")
	}
}

func TestStoreToggleAndSnapshot(t *testing.T) {
	s := NewStore(model.Context{})
	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	s.Toggle(model.DimSectors, "sector-1", true)
	s.Toggle(model.DimSectors, "sector-1", true)
	s.Toggle(model.DimPartners, "partner-2", true)

	snap := s.Snapshot()
	if !snap.Sectors.Has("sector-1") || !snap.Partners.Has("partner-2") || !snap.Markers.IsEmpty() {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(changes) != 2 {
		t.Errorf("expected 2 notifications (no-op toggle skipped), got %d", len(changes))
	}

	s.Toggle(model.DimSectors, "sector-1", false)
	if !s.Selection(model.DimSectors).IsEmpty() {
		t.Error("toggle off failed")
	}
	// The earlier snapshot is unaffected.
	if !snap.Sectors.Has("sector-1") {
		t.Error("snapshot shares state with the store")
	}

	s.ClearAll()
	if !s.Snapshot().IsEmpty() {
		t.Error("ClearAll left selections")
	}
}

func TestStoreContextResetsSelections(t *testing.T) {
	s := NewStore(model.Context{Region: "P1"})
	s.Toggle(model.DimMarkers, "marker-1", true)

	var got Change
	unsub := s.Subscribe(func(c Change) { got = c })
	if s.SetContext(model.Context{Region: "P1"}) {
		t.Error("same context reported as a change")
	}
	if !s.SetContext(model.Context{Region: "P2"}) {
		t.Fatal("new context not applied")
	}
	if !s.Snapshot().IsEmpty() {
		t.Error("selections survived a context change")
	}
	if !got.ContextChanged || got.Generation != 1 || s.Generation() != 1 {
		t.Errorf("change = %+v, generation %d", got, s.Generation())
	}

	unsub()
	got = Change{}
	s.Toggle(model.DimMarkers, "marker-1", true)
	if got != (Change{}) {
		t.Error("unsubscribed callback still called")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore(model.Context{})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k := model.NewKey(model.KindPartner, i)
			s.Toggle(model.DimPartners, k, true)
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()
	if n := s.Selection(model.DimPartners).Len(); n != 20 {
		t.Errorf("recorded %d selections, want 20", n)
	}
}

func TestCriteriaFromKeys(t *testing.T) {
	c, bad := CriteriaFromKeys([]string{"sector-1", "subsector-4", "component-9", "nonsense"})
	if !c.Sectors.Equal(NewSet[model.Key]("sector-1", "subsector-4")) {
		t.Errorf("sectors = %v", c.Sectors)
	}
	if !c.Programs.Has("component-9") {
		t.Errorf("programs = %v", c.Programs)
	}
	if !slices.Equal(bad, []string{"nonsense"}) {
		t.Errorf("bad = %v", bad)
	}
}
