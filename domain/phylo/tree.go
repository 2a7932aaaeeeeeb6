package phylo

import (
	"fmt"
	"math"
)

// Node is one vertex of a rooted phylogenetic tree. Tips carry species
// labels; internal nodes may be unlabeled.
type Node struct {
	Label    string
	Length   float64 // branch length to the parent, 0 at the root
	Children []*Node
}

// IsTip reports whether the node is a leaf.
func (n *Node) IsTip() bool {
	return len(n.Children) == 0
}

// Tree is a rooted phylogenetic tree with branch lengths.
type Tree struct {
	Root *Node
}

// Tips returns tip labels in left-to-right traversal order. This order is
// the canonical row order for aligned trait data.
func (t *Tree) Tips() []string {
	var tips []string
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsTip() {
			tips = append(tips, n.Label)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if t.Root != nil {
		walk(t.Root)
	}
	return tips
}

// NTips returns the number of tips.
func (t *Tree) NTips() int {
	return len(t.Tips())
}

// HasTip reports whether a tip with the given label exists.
func (t *Tree) HasTip(label string) bool {
	for _, tip := range t.Tips() {
		if tip == label {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	var copyNode func(n *Node) *Node
	copyNode = func(n *Node) *Node {
		out := &Node{Label: n.Label, Length: n.Length}
		for _, c := range n.Children {
			out.Children = append(out.Children, copyNode(c))
		}
		return out
	}
	if t.Root == nil {
		return &Tree{}
	}
	return &Tree{Root: copyNode(t.Root)}
}

// DropTip returns a copy of the tree with the named tip removed. An internal
// node left with a single child is spliced out and its branch length merged
// into the surviving child, so the reduced tree carries no degenerate
// structure. Dropping promotes the remaining child to root when the root
// itself becomes unary.
func (t *Tree) DropTip(label string) (*Tree, error) {
	if !t.HasTip(label) {
		return nil, fmt.Errorf("drop tip: %q not present", label)
	}
	out := t.Clone()

	var prune func(n *Node) *Node
	prune = func(n *Node) *Node {
		if n.IsTip() {
			if n.Label == label {
				return nil
			}
			return n
		}
		kept := n.Children[:0]
		for _, c := range n.Children {
			if pc := prune(c); pc != nil {
				kept = append(kept, pc)
			}
		}
		n.Children = kept
		if len(n.Children) == 1 {
			// Splice the unary node, merging branch lengths.
			child := n.Children[0]
			child.Length += n.Length
			return child
		}
		return n
	}

	root := prune(out.Root)
	if root == nil {
		return nil, fmt.Errorf("drop tip: removing %q empties the tree", label)
	}
	root.Length = 0
	out.Root = root
	return out, nil
}

// DropTips removes several tips at once, pruning after each removal.
func (t *Tree) DropTips(labels []string) (*Tree, error) {
	out := t
	for _, label := range labels {
		reduced, err := out.DropTip(label)
		if err != nil {
			return nil, err
		}
		out = reduced
	}
	return out, nil
}

// TipHeights returns the root-to-tip path length per tip label.
func (t *Tree) TipHeights() map[string]float64 {
	heights := make(map[string]float64)
	var walk func(n *Node, depth float64)
	walk = func(n *Node, depth float64) {
		depth += n.Length
		if n.IsTip() {
			heights[n.Label] = depth
			return
		}
		for _, c := range n.Children {
			walk(c, depth)
		}
	}
	if t.Root != nil {
		walk(t.Root, -t.Root.Length)
	}
	return heights
}

// IsUltrametric reports whether all root-to-tip path lengths agree within a
// relative tolerance of the tree height.
func (t *Tree) IsUltrametric(tol float64) bool {
	heights := t.TipHeights()
	if len(heights) == 0 {
		return false
	}
	min, max := math.Inf(1), math.Inf(-1)
	for _, h := range heights {
		min = math.Min(min, h)
		max = math.Max(max, h)
	}
	if max == 0 {
		return true
	}
	return (max-min)/max <= tol
}

// Multi is a collection of candidate trees, e.g. a posterior sample or
// bootstrap replicates over the same species.
type Multi []*Tree

// SharedTips verifies every tree carries the identical tip set and returns
// that set's labels in the first tree's order.
func (m Multi) SharedTips() ([]string, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("empty tree collection")
	}
	ref := m[0].Tips()
	refSet := make(map[string]bool, len(ref))
	for _, tip := range ref {
		refSet[tip] = true
	}
	for i, tree := range m[1:] {
		tips := tree.Tips()
		if len(tips) != len(ref) {
			return nil, fmt.Errorf("tree %d has %d tips, expected %d", i+1, len(tips), len(ref))
		}
		for _, tip := range tips {
			if !refSet[tip] {
				return nil, fmt.Errorf("tree %d carries unknown tip %q", i+1, tip)
			}
		}
	}
	return ref, nil
}
