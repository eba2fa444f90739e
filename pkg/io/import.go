package io

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"os"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/errors"
)

// Result is the outcome of an import.
type Result struct {
	Graph *chain.Graph
	// DroppedEdges counts edges whose source or target was not imported,
	// and edges whose id is already used by an edge between other nodes.
	DroppedEdges int
	// SkippedNodes counts nodes without an id or with a repeated id.
	SkippedNodes int
	// RewrittenEdges counts imported edges whose id was replaced by the
	// canonical e-<source>-<target> form.
	RewrittenEdges int
}

// Partial reports whether anything in the document was left out or
// changed on the way in.
func (r Result) Partial() bool {
	return r.DroppedEdges > 0 || r.SkippedNodes > 0 || r.RewrittenEdges > 0
}

// envelope distinguishes a missing array from an empty one.
type envelope struct {
	Nodes *[]Node `json:"nodes"`
	Edges *[]Edge `json:"edges"`
}

// Decode builds a graph from doc applying the lenient import rules
// described in the package documentation. It never fails.
func Decode(doc Document) Result {
	var res Result
	b := chain.NewBuilder()

	for _, n := range doc.Nodes {
		if n.ID == "" || b.HasNode(n.ID) {
			res.SkippedNodes++
			continue
		}
		typ, ok := chain.ParseNodeType(n.Type)
		if !ok {
			typ = chain.Custom
		}
		data := chain.NodeData{Label: typ.DisplayName()}
		if n.Data != nil {
			data = chain.NodeData{Label: n.Data.Label, Description: n.Data.Description, Color: n.Data.Color}
		}
		if err := b.AddNode(chain.Node{ID: n.ID, Type: typ, Position: n.Position, Data: data}); err != nil {
			res.SkippedNodes++
		}
	}

	for _, e := range doc.Edges {
		added, err := b.AddEdge(e.Source, e.Target, chain.EdgeType(e.Type))
		if err != nil {
			res.DroppedEdges++
			continue
		}
		if e.ID != "" && e.ID != added.ID {
			res.RewrittenEdges++
		}
	}

	res.Graph = b.Graph()
	return res
}

// ReadJSON decodes a JSON document from r into a graph.
//
// It fails with ErrCodeParse if the input is not JSON or lacks the nodes
// or edges array; every other defect is tolerated and counted in the
// [Result]. ReadJSON does not close r.
func ReadJSON(r io.Reader) (Result, error) {
	var env envelope
	dec := json.NewDecoder(r)
	if err := dec.Decode(&env); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeParse, err, "decode")
	}
	if _, err := dec.Token(); err != io.EOF {
		return Result{}, errors.New(errors.ErrCodeParse, "unexpected data after the document")
	}
	if env.Nodes == nil {
		return Result{}, errors.New(errors.ErrCodeParse, `document has no "nodes" array`)
	}
	if env.Edges == nil {
		return Result{}, errors.New(errors.ErrCodeParse, `document has no "edges" array`)
	}
	return Decode(Document{Nodes: *env.Nodes, Edges: *env.Edges}), nil
}

// Unmarshal is [ReadJSON] over a byte slice.
func Unmarshal(data []byte) (Result, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads the JSON file at path. A missing file fails with
// ErrCodeDocumentNotFound.
func ImportJSON(path string) (Result, error) {
	f, err := Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	return ReadJSON(f)
}

// Open opens the document file at path for reading. A missing file fails
// with ErrCodeDocumentNotFound; any other failure, such as a permission
// error, with ErrCodeInvalidPath.
func Open(path string) (*os.File, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeDocumentNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	return f, nil
}
