package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

func TestCatalogDeterministic(t *testing.T) {
	a := NewDefault().Catalog()
	b := NewDefault().Catalog()
	if len(a.Programs) != 24 {
		t.Fatalf("expected 24 programs, got %d", len(a.Programs))
	}
	for i := range a.Programs {
		if a.Programs[i].Budget != b.Programs[i].Budget || a.Programs[i].Code != b.Programs[i].Code {
			t.Fatalf("program %d differs between runs", i)
		}
	}
	AssertNoDuplicateIDs(t, a.Programs)
	AssertConsistent(t, a.Programs, a.SubSectors)
}

func TestWriteFixturesPages(t *testing.T) {
	dir := t.TempDir()
	g := NewDefault()
	cat := g.Catalog()
	if err := WriteFixtures(dir, "http://fixtures/api", 10, cat, g.Indicators("poverty")); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"programs.json", "programs.2.json", "programs.3.json", "sectors.json", "region-indicators.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "programs.4.json")); err == nil {
		t.Error("unexpected fourth programs page")
	}

	data, err := os.ReadFile(filepath.Join(dir, "programs.2.json"))
	if err != nil {
		t.Fatal(err)
	}
	var page model.Page[model.Program]
	if err := json.Unmarshal(data, &page); err != nil {
		t.Fatal(err)
	}
	if page.Count != 24 || len(page.Results) != 10 {
		t.Errorf("page 2: count %d, %d results", page.Count, len(page.Results))
	}
	if page.Next == nil || !strings.HasSuffix(*page.Next, "/programs/?page=3") {
		t.Errorf("next = %v", page.Next)
	}
	if page.Previous == nil || !strings.HasSuffix(*page.Previous, "?page=1") {
		t.Errorf("previous = %v", page.Previous)
	}
}
