package treesim_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"phylosensi/domain/core"
	"phylosensi/domain/model"
	"phylosensi/domain/phylo"
	"phylosensi/internal/analysis/treesim"
	"phylosensi/internal/testkit"
)

func logisticSpec(t *testing.T) model.RegressionSpec {
	t.Helper()
	spec, err := model.NewRegressionSpec("bin", "x", model.LogisticMPLE, model.FitOptions{})
	if err != nil {
		t.Fatalf("spec: %v", err)
	}
	return spec
}

func multiFixture(t *testing.T, kit *testkit.Kit, nSpecies, nTrees int) (*model.AlignedDataset, phylo.Multi) {
	t.Helper()
	species := testkit.SpeciesNames(nSpecies)
	traits := testkit.Traits(species, 11)
	trees := testkit.RandomTrees(species, nTrees, 3)
	ds, pruned, err := kit.Matcher().MatchMulti(logisticSpec(t), traits, trees)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	return ds, pruned
}

func TestEngine_Run_DrawsDistinctTrees(t *testing.T) {
	kit := testkit.NewKit()
	spec := logisticSpec(t)
	ds, trees := multiFixture(t, kit, 16, 20)

	engine := treesim.NewEngine(kit.Fitter, kit.RNG())
	table, errlog, indices, err := engine.Run(context.Background(), spec, ds, trees, 10, 42)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(indices) != 10 {
		t.Fatalf("drew %d indices, want 10", len(indices))
	}
	seen := make(map[int]bool)
	for _, idx := range indices {
		if seen[idx] {
			t.Errorf("tree index %d drawn twice", idx)
		}
		seen[idx] = true
		if idx < 0 || idx >= len(trees) {
			t.Errorf("tree index %d out of range", idx)
		}
	}
	if len(table.Rows) != 10 {
		t.Errorf("got %d rows, want 10", len(table.Rows))
	}
	if errlog.Len() != 0 {
		t.Errorf("unexpected fit failures: %v", errlog.Keys())
	}
	for i, row := range table.Rows {
		if row.TreeIndex != indices[i] {
			t.Errorf("row %d keyed by tree %d, want %d", i, row.TreeIndex, indices[i])
		}
		if row.N != ds.Len() {
			t.Errorf("row %d has n=%d, want %d", i, row.N, ds.Len())
		}
	}
}

func TestEngine_Run_SeedDeterminism(t *testing.T) {
	kit := testkit.NewKit()
	spec := logisticSpec(t)
	ds, trees := multiFixture(t, kit, 12, 15)
	engine := treesim.NewEngine(kit.Fitter, kit.RNG())

	first, _, firstIdx, err := engine.Run(context.Background(), spec, ds, trees, 8, 7)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, _, secondIdx, err := engine.Run(context.Background(), spec, ds, trees, 8, 7)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(firstIdx, secondIdx) {
		t.Errorf("same seed drew different trees: %v vs %v", firstIdx, secondIdx)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same seed produced different estimate tables")
	}

	_, _, otherIdx, err := engine.Run(context.Background(), spec, ds, trees, 8, 8)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if reflect.DeepEqual(firstIdx, otherIdx) {
		t.Error("different seeds drew identical tree samples")
	}
}

func TestEngine_Run_TooManyTrees(t *testing.T) {
	kit := testkit.NewKit()
	spec := logisticSpec(t)
	ds, trees := multiFixture(t, kit, 8, 5)

	engine := treesim.NewEngine(kit.Fitter, kit.RNG())
	_, _, _, err := engine.Run(context.Background(), spec, ds, trees, 6, 1)
	if !errors.Is(err, core.ErrTooManyTrees) {
		t.Fatalf("error = %v, want ErrTooManyTrees", err)
	}

	_, _, _, err = engine.Run(context.Background(), spec, ds, trees, 0, 1)
	if !core.IsConstructionError(err) {
		t.Fatalf("error = %v, want construction error for n.tree=0", err)
	}
}

func TestEngine_Run_IsolatesFailures(t *testing.T) {
	kit := testkit.NewKit()
	spec := logisticSpec(t)
	ds, trees := multiFixture(t, kit, 10, 12)

	// Every third fit fails; the batch must carry on.
	calls := 0
	kit.Fitter.Hook = func(model.RegressionSpec, *model.AlignedDataset) error {
		calls++
		if calls%3 == 0 {
			return fmt.Errorf("optimizer diverged")
		}
		return nil
	}

	engine := treesim.NewEngine(kit.Fitter, kit.RNG())
	table, errlog, indices, err := engine.Run(context.Background(), spec, ds, trees, 12, 5)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if want := 12 - 12/3; len(table.Rows) != want {
		t.Errorf("got %d rows, want %d", len(table.Rows), want)
	}
	if errlog.Len() != 12/3 {
		t.Errorf("error log has %d entries, want %d", errlog.Len(), 12/3)
	}
	if len(indices) != 12 {
		t.Errorf("indices shrank to %d; failed draws must stay recorded", len(indices))
	}
}

func TestEngine_Run_AllFailed(t *testing.T) {
	kit := testkit.NewKit()
	spec := logisticSpec(t)
	ds, trees := multiFixture(t, kit, 8, 6)
	kit.Fitter.Hook = func(model.RegressionSpec, *model.AlignedDataset) error {
		return fmt.Errorf("forced failure")
	}

	engine := treesim.NewEngine(kit.Fitter, kit.RNG())
	_, errlog, _, err := engine.Run(context.Background(), spec, ds, trees, 6, 1)
	if !errors.Is(err, core.ErrAllFitsFailed) {
		t.Fatalf("error = %v, want ErrAllFitsFailed", err)
	}
	if errlog.Len() != 6 {
		t.Errorf("error log has %d entries, want 6", errlog.Len())
	}
}
