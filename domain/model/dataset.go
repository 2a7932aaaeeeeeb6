package model

import (
	"fmt"

	"phylosensi/domain/core"
	"phylosensi/domain/phylo"
)

// TraitTable holds raw trait measurements keyed by species identifier,
// before any alignment against a tree.
type TraitTable struct {
	Species []string             `json:"species"`
	Columns map[string][]float64 `json:"columns"`
}

// Len returns the row count.
func (t *TraitTable) Len() int {
	return len(t.Species)
}

// Column returns one named trait column.
func (t *TraitTable) Column(name string) ([]float64, error) {
	col, ok := t.Columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrColumnNotFound, name)
	}
	if len(col) != len(t.Species) {
		return nil, fmt.Errorf("column %q has %d values for %d species", name, len(col), len(t.Species))
	}
	return col, nil
}

// AlignedDataset is a trait table and tree reduced to a shared species set,
// rows ordered by the tree's tip order. Created once per analysis and read
// only afterwards.
type AlignedDataset struct {
	Species   []string    `json:"species"`
	Response  []float64   `json:"response"`
	Predictor []float64   `json:"predictor"`
	Tree      *phylo.Tree `json:"-"`
}

// Len returns the species count.
func (d *AlignedDataset) Len() int {
	return len(d.Species)
}

// Validate checks the row/tip invariants: equal counts, unique identifiers,
// one-to-one tip correspondence.
func (d *AlignedDataset) Validate() error {
	if len(d.Response) != len(d.Species) || len(d.Predictor) != len(d.Species) {
		return fmt.Errorf("%w: %d species, %d response, %d predictor rows",
			core.ErrDataTreeMismatch, len(d.Species), len(d.Response), len(d.Predictor))
	}
	seen := make(map[string]bool, len(d.Species))
	for _, sp := range d.Species {
		if seen[sp] {
			return fmt.Errorf("%w: duplicate species %q", core.ErrDataTreeMismatch, sp)
		}
		seen[sp] = true
	}
	tips := d.Tree.Tips()
	if len(tips) != len(d.Species) {
		return fmt.Errorf("%w: %d rows vs %d tips", core.ErrDataTreeMismatch, len(d.Species), len(tips))
	}
	for _, tip := range tips {
		if !seen[tip] {
			return fmt.Errorf("%w: tip %q has no trait row", core.ErrDataTreeMismatch, tip)
		}
	}
	return nil
}

// WithoutSpecies builds the reduced dataset for one leave-one-out iteration:
// the trait row is dropped and the tip pruned from a copy of the tree. The
// receiver is never mutated.
func (d *AlignedDataset) WithoutSpecies(label string) (*AlignedDataset, error) {
	idx := -1
	for i, sp := range d.Species {
		if sp == label {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", core.ErrSpeciesNotFound, label)
	}
	reducedTree, err := d.Tree.DropTip(label)
	if err != nil {
		return nil, err
	}
	out := &AlignedDataset{
		Species:   make([]string, 0, len(d.Species)-1),
		Response:  make([]float64, 0, len(d.Species)-1),
		Predictor: make([]float64, 0, len(d.Species)-1),
		Tree:      reducedTree,
	}
	for i := range d.Species {
		if i == idx {
			continue
		}
		out.Species = append(out.Species, d.Species[i])
		out.Response = append(out.Response, d.Response[i])
		out.Predictor = append(out.Predictor, d.Predictor[i])
	}
	return out, nil
}

// ReorderTo returns a copy whose rows follow the given tree's tip order.
// The fitter requires row order to track the candidate tree's topology, not
// just its label set.
func (d *AlignedDataset) ReorderTo(tree *phylo.Tree) (*AlignedDataset, error) {
	index := make(map[string]int, len(d.Species))
	for i, sp := range d.Species {
		index[sp] = i
	}
	tips := tree.Tips()
	if len(tips) != len(d.Species) {
		return nil, fmt.Errorf("%w: %d tips vs %d rows", core.ErrDataTreeMismatch, len(tips), len(d.Species))
	}
	out := &AlignedDataset{
		Species:   make([]string, len(tips)),
		Response:  make([]float64, len(tips)),
		Predictor: make([]float64, len(tips)),
		Tree:      tree,
	}
	for i, tip := range tips {
		j, ok := index[tip]
		if !ok {
			return nil, fmt.Errorf("%w: tip %q has no trait row", core.ErrDataTreeMismatch, tip)
		}
		out.Species[i] = d.Species[j]
		out.Response[i] = d.Response[j]
		out.Predictor[i] = d.Predictor[j]
	}
	return out, nil
}
