package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/errors"
)

// Document is the serialized form of a graph.
type Document struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is the serialized form of a [chain.Node].
type Node struct {
	ID       string         `json:"id" bson:"id"`
	Type     string         `json:"type" bson:"type"`
	Position chain.Position `json:"position" bson:"position"`
	Data     *NodeData      `json:"data,omitempty" bson:"data,omitempty"`
}

// NodeData is the serialized form of [chain.NodeData].
type NodeData struct {
	Label       string `json:"label" bson:"label"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Color       string `json:"color,omitempty" bson:"color,omitempty"`
}

// Edge is the serialized form of a [chain.Edge].
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Type   string `json:"type,omitempty" bson:"type,omitempty"`
}

// Encode converts g into a document, keeping insertion order.
func Encode(g *chain.Graph) Document {
	nodes, edges := g.Nodes(), g.Edges()
	doc := Document{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	for i, n := range nodes {
		doc.Nodes[i] = EncodeNode(n)
	}
	for i, e := range edges {
		doc.Edges[i] = EncodeEdge(e)
	}
	return doc
}

// EncodeNode returns the serialized form of n.
func EncodeNode(n chain.Node) Node {
	return Node{
		ID:       n.ID,
		Type:     string(n.Type),
		Position: n.Position,
		Data:     &NodeData{Label: n.Data.Label, Description: n.Data.Description, Color: n.Data.Color},
	}
}

// EncodeEdge returns the serialized form of e.
func EncodeEdge(e chain.Edge) Edge {
	return Edge{ID: e.ID, Source: e.Source, Target: e.Target, Type: string(e.Type)}
}

// WriteJSON encodes g as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g *chain.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Encode(g)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode")
	}
	return nil
}

// Marshal returns the indented JSON document for g.
func Marshal(g *chain.Graph) ([]byte, error) {
	b, err := json.MarshalIndent(Encode(g), "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode")
	}
	return b, nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *chain.Graph, path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "close %s", path)
	}
	return nil
}
