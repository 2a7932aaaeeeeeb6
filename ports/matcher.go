package ports

import (
	"phylosensi/domain/model"
	"phylosensi/domain/phylo"
)

// DataTreeMatcher aligns a trait table against phylogeny tip labels,
// dropping unmatched rows and tips on both sides, so the resampling core
// only ever sees identifier-consistent data.
type DataTreeMatcher interface {
	// Match aligns the named trait columns against one tree.
	Match(spec model.RegressionSpec, traits *model.TraitTable, tree *phylo.Tree) (*model.AlignedDataset, error)

	// MatchMulti aligns against a candidate-tree collection, verifying all
	// trees share one tip set. The returned dataset follows the first
	// tree's tip order.
	MatchMulti(spec model.RegressionSpec, traits *model.TraitTable, trees phylo.Multi) (*model.AlignedDataset, phylo.Multi, error)
}
