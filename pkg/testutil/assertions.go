package testutil

import (
	"slices"
	"testing"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

// ProgramIDs returns the ids of programs in order.
func ProgramIDs(programs []model.Program) []int {
	out := make([]int, len(programs))
	for i, p := range programs {
		out[i] = p.ID
	}
	return out
}

// AssertProgramIDs verifies the exact ids, in order.
func AssertProgramIDs(t *testing.T, programs []model.Program, want ...int) {
	t.Helper()
	if got := ProgramIDs(programs); !slices.Equal(got, want) {
		t.Errorf("program ids = %v, want %v", got, want)
	}
}

// AssertNoDuplicateIDs verifies all program ids are unique.
func AssertNoDuplicateIDs(t *testing.T, programs []model.Program) {
	t.Helper()
	seen := make(map[int]bool)
	for _, p := range programs {
		if seen[p.ID] {
			t.Errorf("duplicate program id: %d", p.ID)
		}
		seen[p.ID] = true
	}
}

// AssertConsistent verifies every program's sub-sectors belong to its sectors
// according to subSectors.
func AssertConsistent(t *testing.T, programs []model.Program, subSectors []model.SubSector) {
	t.Helper()
	parent := make(map[int]int, len(subSectors))
	for _, s := range subSectors {
		parent[s.ID] = s.SectorID
	}
	for _, p := range programs {
		for _, sub := range p.SubSectorIDs {
			if !slices.Contains(p.SectorIDs, parent[sub]) {
				t.Errorf("program %d: sub-sector %d outside its sectors %v", p.ID, sub, p.SectorIDs)
			}
		}
	}
}
