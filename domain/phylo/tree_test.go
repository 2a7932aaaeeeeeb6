package phylo

import (
	"math"
	"reflect"
	"testing"
)

func mustParse(t *testing.T, s string) *Tree {
	t.Helper()
	tree, err := ParseNewick(s)
	if err != nil {
		t.Fatalf("ParseNewick(%q) failed: %v", s, err)
	}
	return tree
}

func TestTree_Tips(t *testing.T) {
	tree := mustParse(t, "((A:1,B:1):1,(C:1,D:1):1);")
	got := tree.Tips()
	want := []string{"A", "B", "C", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tips() = %v, want %v", got, want)
	}
}

func TestTree_DropTip(t *testing.T) {
	tests := []struct {
		name     string
		newick   string
		drop     string
		wantTips []string
	}{
		{
			name:     "drop from cherry collapses internal node",
			newick:   "((A:1,B:1):1,C:2);",
			drop:     "B",
			wantTips: []string{"A", "C"},
		},
		{
			name:     "drop outer tip keeps cherry",
			newick:   "((A:1,B:1):1,C:2);",
			drop:     "C",
			wantTips: []string{"A", "B"},
		},
		{
			name:     "drop from balanced four-tip tree",
			newick:   "((A:1,B:1):1,(C:1,D:1):1);",
			drop:     "D",
			wantTips: []string{"A", "B", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustParse(t, tt.newick)
			before := tree.Tips()

			reduced, err := tree.DropTip(tt.drop)
			if err != nil {
				t.Fatalf("DropTip(%q) failed: %v", tt.drop, err)
			}
			if got := reduced.Tips(); !reflect.DeepEqual(got, tt.wantTips) {
				t.Errorf("reduced tips = %v, want %v", got, tt.wantTips)
			}
			// Original tree must stay untouched.
			if got := tree.Tips(); !reflect.DeepEqual(got, before) {
				t.Errorf("original tree mutated: tips = %v, want %v", got, before)
			}
			// No unary internal node may survive the pruning.
			var walk func(n *Node)
			walk = func(n *Node) {
				if !n.IsTip() && len(n.Children) == 1 {
					t.Errorf("unary internal node left after DropTip")
				}
				for _, c := range n.Children {
					walk(c)
				}
			}
			walk(reduced.Root)
		})
	}
}

func TestTree_DropTip_MergesBranchLengths(t *testing.T) {
	tree := mustParse(t, "((A:1,B:1):0.5,C:1.5);")
	reduced, err := tree.DropTip("B")
	if err != nil {
		t.Fatalf("DropTip failed: %v", err)
	}
	heights := reduced.TipHeights()
	// A's path absorbs the spliced internal branch: 1 + 0.5.
	if math.Abs(heights["A"]-1.5) > 1e-12 {
		t.Errorf("height of A = %v, want 1.5", heights["A"])
	}
	if math.Abs(heights["C"]-1.5) > 1e-12 {
		t.Errorf("height of C = %v, want 1.5", heights["C"])
	}
}

func TestTree_DropTip_Unknown(t *testing.T) {
	tree := mustParse(t, "(A:1,B:1);")
	if _, err := tree.DropTip("Z"); err == nil {
		t.Error("expected error dropping unknown tip")
	}
}

func TestTree_IsUltrametric(t *testing.T) {
	tests := []struct {
		name   string
		newick string
		want   bool
	}{
		{"equal tip heights", "((A:1,B:1):1,(C:1,D:1):1);", true},
		{"unequal tip heights", "((A:1,B:2):1,C:3);", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustParse(t, tt.newick)
			if got := tree.IsUltrametric(1e-8); got != tt.want {
				t.Errorf("IsUltrametric = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMulti_SharedTips(t *testing.T) {
	a := mustParse(t, "((A:1,B:1):1,C:2);")
	b := mustParse(t, "((C:1,A:1):1,B:2);")
	c := mustParse(t, "((A:1,B:1):1,D:2);")

	if _, err := (Multi{a, b}).SharedTips(); err != nil {
		t.Errorf("matching tip sets rejected: %v", err)
	}
	if _, err := (Multi{a, c}).SharedTips(); err == nil {
		t.Error("expected error for mismatched tip sets")
	}
	if _, err := (Multi{}).SharedTips(); err == nil {
		t.Error("expected error for empty collection")
	}
}
