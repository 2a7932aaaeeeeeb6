package testkit

import (
	"fmt"
	"math/rand"

	"phylosensi/domain/model"
	"phylosensi/domain/phylo"
)

// SpeciesNames returns n synthetic species identifiers.
func SpeciesNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("sp%02d", i+1)
	}
	return names
}

// UltrametricTree builds a balanced tree over the given species where every
// root-to-tip path has the same length.
func UltrametricTree(species []string) *phylo.Tree {
	height := 1.0
	for m := len(species); m > 1; m = (m + 1) / 2 {
		height++
	}
	return &phylo.Tree{Root: buildBalanced(species, height)}
}

func buildBalanced(species []string, height float64) *phylo.Node {
	if len(species) == 1 {
		return &phylo.Node{Label: species[0], Length: height}
	}
	mid := len(species) / 2
	return &phylo.Node{
		Length: 1,
		Children: []*phylo.Node{
			buildBalanced(species[:mid], height-1),
			buildBalanced(species[mid:], height-1),
		},
	}
}

// CaterpillarTree builds a pectinate tree with unit branch lengths; tip
// depths differ, so the tree is not ultrametric.
func CaterpillarTree(species []string) *phylo.Tree {
	node := &phylo.Node{Label: species[0], Length: 1}
	for _, sp := range species[1:] {
		node = &phylo.Node{
			Length: 1,
			Children: []*phylo.Node{
				node,
				{Label: sp, Length: 1},
			},
		}
	}
	node.Length = 0
	return &phylo.Tree{Root: node}
}

// RandomTrees builds a deterministic candidate-tree collection: each tree
// is balanced over a different seeded shuffle of the same species set.
func RandomTrees(species []string, count int, seed int64) phylo.Multi {
	trees := make(phylo.Multi, count)
	for i := 0; i < count; i++ {
		shuffled := make([]string, len(species))
		copy(shuffled, species)
		r := rand.New(rand.NewSource(seed + int64(i)))
		r.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		trees[i] = UltrametricTree(shuffled)
	}
	return trees
}

// Traits generates a deterministic trait table with a continuous predictor
// "x", a correlated response "y", and a binary response "bin" for logistic
// fits.
func Traits(species []string, seed int64) *model.TraitTable {
	r := rand.New(rand.NewSource(seed))
	n := len(species)
	x := make([]float64, n)
	y := make([]float64, n)
	bin := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = r.NormFloat64()
		y[i] = 2.0 + 1.5*x[i] + 0.3*r.NormFloat64()
		if x[i] > 0 {
			bin[i] = 1
		}
	}
	return &model.TraitTable{
		Species: append([]string(nil), species...),
		Columns: map[string][]float64{"x": x, "y": y, "bin": bin},
	}
}
