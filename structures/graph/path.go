package graph

const (
	// PathSignature is the signature byte for a Path object
	PathSignature = 0x50
)

// Path Represents a Path structure: an alternating chain of nodes and
// relationships. Sequence holds signed indices into the other two lists,
// a negative relationship index marks reversed traversal.
type Path struct {
	Nodes         []Node
	Relationships []UnboundRelationship
	Sequence      []int
}

// Signature gets the signature byte for the struct
func (p Path) Signature() int {
	return PathSignature
}

// AllFields gets the fields to encode for the struct
func (p Path) AllFields() []interface{} {
	nodes := make([]interface{}, len(p.Nodes))
	for i, node := range p.Nodes {
		nodes[i] = node
	}
	rels := make([]interface{}, len(p.Relationships))
	for i, rel := range p.Relationships {
		rels[i] = rel
	}
	seq := make([]interface{}, len(p.Sequence))
	for i, s := range p.Sequence {
		seq[i] = s
	}
	return []interface{}{nodes, rels, seq}
}
