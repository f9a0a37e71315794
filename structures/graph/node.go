package graph

const (
	// NodeSignature is the signature byte for a Node object
	NodeSignature = 0x4E
)

// Node Represents a Node structure: a graph vertex carrying its labels and
// property map. NodeIdentity is only unique within a single database.
type Node struct {
	NodeIdentity int64
	Labels       []string
	Properties   map[string]interface{}
}

// Signature gets the signature byte for the struct
func (n Node) Signature() int {
	return NodeSignature
}

// AllFields gets the fields to encode for the struct
func (n Node) AllFields() []interface{} {
	labels := make([]interface{}, len(n.Labels))
	for i, l := range n.Labels {
		labels[i] = l
	}
	return []interface{}{n.NodeIdentity, labels, n.Properties}
}
