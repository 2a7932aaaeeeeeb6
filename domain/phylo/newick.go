package phylo

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseNewick reads a single rooted tree from Newick notation, e.g.
// "((A:1,B:1):0.5,C:1.5);". Internal node labels are kept, support values
// are treated as labels, and a trailing semicolon is optional.
func ParseNewick(s string) (*Tree, error) {
	p := &newickParser{input: strings.TrimSpace(s)}
	root, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == ';' {
		p.pos++
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("newick: trailing input at offset %d", p.pos)
	}
	if root.IsTip() && root.Label == "" {
		return nil, fmt.Errorf("newick: empty tree")
	}
	return &Tree{Root: root}, nil
}

// ParseNewickAll reads one tree per non-empty line, the common on-disk
// layout for posterior tree samples.
func ParseNewickAll(s string) (Multi, error) {
	var trees Multi
	for i, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tree, err := ParseNewick(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		trees = append(trees, tree)
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("newick: no trees found")
	}
	return trees, nil
}

type newickParser struct {
	input string
	pos   int
}

func (p *newickParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *newickParser) parseNode() (*Node, error) {
	p.skipSpace()
	node := &Node{}

	if p.pos < len(p.input) && p.input[p.pos] == '(' {
		p.pos++ // consume '('
		for {
			child, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			p.skipSpace()
			if p.pos >= len(p.input) {
				return nil, fmt.Errorf("newick: unclosed clade")
			}
			if p.input[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.input[p.pos] == ')' {
				p.pos++
				break
			}
			return nil, fmt.Errorf("newick: unexpected %q at offset %d", p.input[p.pos], p.pos)
		}
	}

	node.Label = p.parseLabel()

	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == ':' {
		p.pos++
		length, err := p.parseLength()
		if err != nil {
			return nil, err
		}
		node.Length = length
	}
	return node, nil
}

func (p *newickParser) parseLabel() string {
	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == '\'' {
		// Quoted label, single quotes escaped by doubling.
		p.pos++
		var b strings.Builder
		for p.pos < len(p.input) {
			c := p.input[p.pos]
			if c == '\'' {
				if p.pos+1 < len(p.input) && p.input[p.pos+1] == '\'' {
					b.WriteByte('\'')
					p.pos += 2
					continue
				}
				p.pos++
				break
			}
			b.WriteByte(c)
			p.pos++
		}
		return b.String()
	}
	start := p.pos
	for p.pos < len(p.input) && !strings.ContainsRune("(),:;", rune(p.input[p.pos])) {
		p.pos++
	}
	return strings.TrimSpace(p.input[start:p.pos])
}

func (p *newickParser) parseLength() (float64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) && !strings.ContainsRune("(),:;", rune(p.input[p.pos])) {
		p.pos++
	}
	raw := strings.TrimSpace(p.input[start:p.pos])
	length, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("newick: bad branch length %q at offset %d", raw, start)
	}
	return length, nil
}

// Newick serializes the tree back to Newick notation with branch lengths.
func (t *Tree) Newick() string {
	var b strings.Builder
	var write func(n *Node, root bool)
	write = func(n *Node, root bool) {
		if !n.IsTip() {
			b.WriteByte('(')
			for i, c := range n.Children {
				if i > 0 {
					b.WriteByte(',')
				}
				write(c, false)
			}
			b.WriteByte(')')
		}
		b.WriteString(quoteLabel(n.Label))
		if !root {
			b.WriteString(fmt.Sprintf(":%g", n.Length))
		}
	}
	if t.Root != nil {
		write(t.Root, true)
	}
	b.WriteByte(';')
	return b.String()
}

func quoteLabel(label string) string {
	if strings.ContainsAny(label, "(),:; '") {
		return "'" + strings.ReplaceAll(label, "'", "''") + "'"
	}
	return label
}
