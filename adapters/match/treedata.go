package match

import (
	"fmt"
	"log"
	"math"

	"phylosensi/domain/core"
	"phylosensi/domain/model"
	"phylosensi/domain/phylo"
)

// TreeData aligns trait tables against phylogenies: species missing from
// either side are dropped from both, and rows with non-finite trait values
// are treated as unmatched. Implements ports.DataTreeMatcher.
type TreeData struct{}

// NewTreeData creates a new matcher.
func NewTreeData() *TreeData {
	return &TreeData{}
}

// Match aligns the spec's response and predictor columns against one tree.
func (m *TreeData) Match(spec model.RegressionSpec, traits *model.TraitTable, tree *phylo.Tree) (*model.AlignedDataset, error) {
	response, err := traits.Column(spec.Response)
	if err != nil {
		return nil, err
	}
	predictor, err := traits.Column(spec.Predictor)
	if err != nil {
		return nil, err
	}

	rowIndex := make(map[string]int, len(traits.Species))
	for i, sp := range traits.Species {
		if usable(response[i]) && usable(predictor[i]) {
			rowIndex[sp] = i
		}
	}

	var dropTips []string
	for _, tip := range tree.Tips() {
		if _, ok := rowIndex[tip]; !ok {
			dropTips = append(dropTips, tip)
		}
	}
	if len(dropTips) == tree.NTips() {
		return nil, core.ErrNoOverlap
	}

	reduced := tree
	if len(dropTips) > 0 {
		reduced, err = tree.DropTips(dropTips)
		if err != nil {
			return nil, fmt.Errorf("pruning unmatched tips: %w", err)
		}
		log.Printf("[Match] dropped %d tree tips without usable trait rows", len(dropTips))
	}

	tips := reduced.Tips()
	droppedRows := len(rowIndex) - len(tips)
	if droppedRows > 0 {
		log.Printf("[Match] dropped %d trait rows without a matching tip", droppedRows)
	}

	ds := &model.AlignedDataset{
		Species:   make([]string, len(tips)),
		Response:  make([]float64, len(tips)),
		Predictor: make([]float64, len(tips)),
		Tree:      reduced,
	}
	for i, tip := range tips {
		row := rowIndex[tip]
		ds.Species[i] = tip
		ds.Response[i] = response[row]
		ds.Predictor[i] = predictor[row]
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// MatchMulti aligns against a candidate-tree collection. All trees must
// share one tip set; unmatched tips are pruned from every tree so each draw
// later needs only a row reorder.
func (m *TreeData) MatchMulti(spec model.RegressionSpec, traits *model.TraitTable, trees phylo.Multi) (*model.AlignedDataset, phylo.Multi, error) {
	if _, err := trees.SharedTips(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrTipSetMismatch, err)
	}

	ds, err := m.Match(spec, traits, trees[0])
	if err != nil {
		return nil, nil, err
	}

	keep := make(map[string]bool, len(ds.Species))
	for _, sp := range ds.Species {
		keep[sp] = true
	}
	reduced := make(phylo.Multi, len(trees))
	reduced[0] = ds.Tree
	for i, tree := range trees[1:] {
		var drop []string
		for _, tip := range tree.Tips() {
			if !keep[tip] {
				drop = append(drop, tip)
			}
		}
		pruned := tree
		if len(drop) > 0 {
			pruned, err = tree.DropTips(drop)
			if err != nil {
				return nil, nil, fmt.Errorf("pruning tree %d: %w", i+1, err)
			}
		}
		reduced[i+1] = pruned
	}
	return ds, reduced, nil
}

func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
