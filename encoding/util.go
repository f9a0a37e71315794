package encoding

import (
	"github.com/graphshift/go-bolt/errors"
	"github.com/graphshift/go-bolt/structures/graph"
)

func fieldInt(v interface{}, what string) (int64, error) {
	x, ok := v.(int64)
	if !ok {
		return 0, errors.NewDecodeError("expected %s to be an integer, got %T %+v", what, v, v)
	}
	return x, nil
}

func fieldString(v interface{}, what string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.NewDecodeError("expected %s to be a string, got %T %+v", what, v, v)
	}
	return s, nil
}

func fieldSlice(v interface{}, what string) ([]interface{}, error) {
	s, ok := v.([]interface{})
	if !ok {
		return nil, errors.NewDecodeError("expected %s to be a list, got %T %+v", what, v, v)
	}
	return s, nil
}

func fieldMap(v interface{}, what string) (map[string]interface{}, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.NewDecodeError("expected %s to be a map, got %T %+v", what, v, v)
	}
	return m, nil
}

func fieldStringSlice(v interface{}, what string) ([]string, error) {
	raw, err := fieldSlice(v, what)
	if err != nil {
		return nil, err
	}
	return sliceInterfaceToString(raw)
}

func sliceInterfaceToString(from []interface{}) ([]string, error) {
	to := make([]string, len(from))
	for i, item := range from {
		str, ok := item.(string)
		if !ok {
			return nil, errors.NewDecodeError("expected string list item, got %T", item)
		}
		to[i] = str
	}
	return to, nil
}

func sliceInterfaceToInt(from []interface{}) ([]int, error) {
	to := make([]int, len(from))
	for i, item := range from {
		x, ok := item.(int64)
		if !ok {
			return nil, errors.NewDecodeError("expected integer list item, got %T", item)
		}
		to[i] = int(x)
	}
	return to, nil
}

func sliceInterfaceToNode(from []interface{}) ([]graph.Node, error) {
	to := make([]graph.Node, len(from))
	for i, item := range from {
		node, ok := item.(graph.Node)
		if !ok {
			return nil, errors.NewDecodeError("expected node list item, got %T", item)
		}
		to[i] = node
	}
	return to, nil
}

func sliceInterfaceToUnboundRelationship(from []interface{}) ([]graph.UnboundRelationship, error) {
	to := make([]graph.UnboundRelationship, len(from))
	for i, item := range from {
		rel, ok := item.(graph.UnboundRelationship)
		if !ok {
			return nil, errors.NewDecodeError("expected relationship list item, got %T", item)
		}
		to[i] = rel
	}
	return to, nil
}
