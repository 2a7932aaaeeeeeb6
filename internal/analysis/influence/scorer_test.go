package influence

import (
	"reflect"
	"testing"
)

func scoreTable() *Table {
	return &Table{Rows: []Row{
		{Species: "A", SDIFIntercept: 0.4, SDIFEstimate: -3.1},
		{Species: "B", SDIFIntercept: -2.5, SDIFEstimate: 0.2},
		{Species: "C", SDIFIntercept: 1.9, SDIFEstimate: 2.2},
		{Species: "D", SDIFIntercept: 4.0, SDIFEstimate: -0.1},
	}}
}

func TestScore(t *testing.T) {
	got := Score(scoreTable(), 2.0)

	if got.Cutoff != 2.0 {
		t.Errorf("cutoff = %v, want 2.0", got.Cutoff)
	}
	// Descending by absolute standardized difference, strictly above cutoff.
	if !reflect.DeepEqual(got.ByIntercept, []string{"D", "B"}) {
		t.Errorf("ByIntercept = %v, want [D B]", got.ByIntercept)
	}
	if !reflect.DeepEqual(got.ByEstimate, []string{"A", "C"}) {
		t.Errorf("ByEstimate = %v, want [A C]", got.ByEstimate)
	}
}

func TestScore_CutoffIsExclusive(t *testing.T) {
	table := &Table{Rows: []Row{
		{Species: "A", SDIFIntercept: 2.0, SDIFEstimate: 2.0},
		{Species: "B", SDIFIntercept: -2.0001, SDIFEstimate: 1.0},
	}}
	got := Score(table, 2.0)
	if !reflect.DeepEqual(got.ByIntercept, []string{"B"}) {
		t.Errorf("ByIntercept = %v, want [B]: value exactly at the cutoff must not qualify", got.ByIntercept)
	}
	if len(got.ByEstimate) != 0 {
		t.Errorf("ByEstimate = %v, want empty", got.ByEstimate)
	}
}

func TestScore_ListsAreIndependent(t *testing.T) {
	got := Score(scoreTable(), 0.3)
	// All four species exceed 0.3 on both axes, but in different orders.
	if !reflect.DeepEqual(got.ByIntercept, []string{"D", "B", "C", "A"}) {
		t.Errorf("ByIntercept = %v", got.ByIntercept)
	}
	if !reflect.DeepEqual(got.ByEstimate, []string{"A", "C", "B", "D"}) {
		t.Errorf("ByEstimate = %v", got.ByEstimate)
	}
}

func TestScore_LeavesTableUntouched(t *testing.T) {
	table := scoreTable()
	want := make([]Row, len(table.Rows))
	copy(want, table.Rows)
	Score(table, 1.0)
	if !reflect.DeepEqual(table.Rows, want) {
		t.Error("Score reordered the caller's table rows")
	}
}
