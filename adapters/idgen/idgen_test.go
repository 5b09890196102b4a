package idgen_test

import (
	"testing"

	"github.com/lionscafe/api/adapters/idgen"
)

func TestUUID_Unique(t *testing.T) {
	gen := idgen.UUID{}
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.New()
		if len(id) != 36 {
			t.Fatalf("id %q is not UUID-shaped", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestSequential(t *testing.T) {
	gen := idgen.NewSequential("ord_")
	if got := gen.New(); got != "ord_1" {
		t.Errorf("first id = %q, want ord_1", got)
	}
	if got := gen.New(); got != "ord_2" {
		t.Errorf("second id = %q, want ord_2", got)
	}
}
