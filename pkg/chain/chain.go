package chain

import (
	"maps"
	"slices"

	"github.com/matzehuels/valuechain/pkg/errors"
)

// Graph is an immutable set of nodes and edges.
//
// The zero value is an empty graph and is ready to use. All methods that
// change the graph return a new *Graph; the receiver is never modified.
type Graph struct {
	nodes     []Node
	edges     []Edge
	nodeIndex map[string]int // node ID -> index into nodes
	edgeIndex map[string]int // edge ID -> index into edges
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[string]int),
	}
}

// Clear returns an empty graph. It exists so callers can express "clear"
// in the same vocabulary as the other operations.
func (g *Graph) Clear() *Graph { return New() }

// =============================================================================
// Queries
// =============================================================================

// Nodes returns a copy of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	if g == nil {
		return nil
	}
	return slices.Clone(g.nodes)
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	if g == nil {
		return nil
	}
	return slices.Clone(g.edges)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return len(g.edges)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (Edge, bool) {
	if g == nil {
		return Edge{}, false
	}
	i, ok := g.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// HasEdge reports whether an edge with the given id exists.
func (g *Graph) HasEdge(id string) bool {
	_, ok := g.Edge(id)
	return ok
}

// IncidentEdges returns every edge that has nodeID as source or target.
func (g *Graph) IncidentEdges(nodeID string) []Edge {
	if g == nil {
		return nil
	}
	var out []Edge
	for _, e := range g.edges {
		if e.Source == nodeID || e.Target == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// Node Operations
// =============================================================================

// AddNode returns a graph with a new node of type t at pos and the node's
// fresh id. A nil data gives the node its type's display name as label and
// no color override.
//
// Returns ErrCodeInvalidNodeType for types outside [NodeTypes].
func (g *Graph) AddNode(t NodeType, pos Position, data *NodeData) (*Graph, string, error) {
	if !t.Valid() {
		return g, "", errors.New(errors.ErrCodeInvalidNodeType, "unknown node type %q", t)
	}
	d := NodeData{Label: t.DisplayName()}
	if data != nil {
		d = *data
	}

	id := NewNodeID(t)
	for g.HasNode(id) {
		id = NewNodeID(t)
	}

	out := g.clone()
	out.appendNode(Node{ID: id, Type: t, Position: pos, Data: d})
	return out, id, nil
}

// InsertNode returns a graph containing n as given, keeping its id.
// It is used to restore nodes created elsewhere (import, merges, undo).
//
// Returns ErrCodeInvalidInput for an empty id, a duplicate id or an
// unknown type.
func (g *Graph) InsertNode(n Node) (*Graph, error) {
	if err := g.checkInsert(n); err != nil {
		return g, err
	}
	out := g.clone()
	out.appendNode(n)
	return out, nil
}

// UpdateNode merges p into the data of node id. Position and type are
// never touched.
//
// Returns ErrCodeNodeNotFound if the node does not exist.
func (g *Graph) UpdateNode(id string, p Patch) (*Graph, error) {
	i, ok := g.lookupNode(id)
	if !ok {
		return g, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	out := g.clone()
	out.nodes[i].Data = p.apply(out.nodes[i].Data)
	return out, nil
}

// MoveNode sets the position of node id.
//
// Returns ErrCodeNodeNotFound if the node does not exist.
func (g *Graph) MoveNode(id string, pos Position) (*Graph, error) {
	i, ok := g.lookupNode(id)
	if !ok {
		return g, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	out := g.clone()
	out.nodes[i].Position = pos
	return out, nil
}

// RemoveNode returns a graph without node id and without every edge that
// references it. Removing an unknown id returns the receiver unchanged.
func (g *Graph) RemoveNode(id string) *Graph {
	if _, ok := g.lookupNode(id); !ok {
		return g
	}
	out := g.clone()
	out.nodes = slices.DeleteFunc(out.nodes, func(n Node) bool { return n.ID == id })
	out.edges = slices.DeleteFunc(out.edges, func(e Edge) bool { return e.Source == id || e.Target == id })
	out.reindex()
	return out
}

// =============================================================================
// Edge Operations
// =============================================================================

// AddEdge returns a graph containing the edge source→target and the edge
// itself. An empty edge type defaults to [Floating]. If the edge already
// exists the receiver and the existing edge are returned.
//
// Returns ErrCodeInvalidReference if either endpoint does not exist and
// ErrCodeInvalidInput for a self-loop or when the edge's id is already
// taken by an edge between other nodes (see [EdgeID]).
func (g *Graph) AddEdge(source, target string, t EdgeType) (*Graph, Edge, error) {
	if err := g.checkEndpoints(source, target); err != nil {
		return g, Edge{}, err
	}
	existing, ok, err := g.edgeFor(source, target)
	if err != nil {
		return g, Edge{}, err
	}
	if ok {
		return g, existing, nil
	}
	if t == "" {
		t = Floating
	}
	e := Edge{ID: EdgeID(source, target), Source: source, Target: target, Type: t}
	out := g.clone()
	out.appendEdge(e)
	return out, e, nil
}

// RemoveEdge returns a graph without edge id. Removing an unknown id
// returns the receiver unchanged.
func (g *Graph) RemoveEdge(id string) *Graph {
	if !g.HasEdge(id) {
		return g
	}
	out := g.clone()
	out.edges = slices.DeleteFunc(out.edges, func(e Edge) bool { return e.ID == id })
	out.reindex()
	return out
}

// =============================================================================
// Batches
// =============================================================================

// Merge adds a batch of nodes and edges produced outside the editor (for
// example by a generator) in one step. Either the whole batch is applied or
// none of it: any invalid node, or any edge whose endpoints exist neither
// in the graph nor in the batch, rejects the merge and returns the
// receiver. Edges already present are skipped.
func (g *Graph) Merge(nodes []Node, edges []Edge) (*Graph, error) {
	b := NewBuilderFrom(g)
	for _, n := range nodes {
		if err := b.AddNode(n); err != nil {
			return g, errors.Wrap(errors.GetCode(err), err, "merge node %q", n.ID)
		}
	}
	for _, e := range edges {
		if _, err := b.AddEdge(e.Source, e.Target, e.Type); err != nil {
			return g, errors.Wrap(errors.GetCode(err), err, "merge edge %s->%s", e.Source, e.Target)
		}
	}
	return b.Graph(), nil
}

// =============================================================================
// Comparison
// =============================================================================

// Equal reports whether a and b contain the same nodes and the same edges,
// regardless of insertion order.
func Equal(a, b *Graph) bool {
	if a.NodeCount() != b.NodeCount() || a.EdgeCount() != b.EdgeCount() {
		return false
	}
	for _, n := range a.Nodes() {
		m, ok := b.Node(n.ID)
		if !ok || m != n {
			return false
		}
	}
	for _, e := range a.Edges() {
		f, ok := b.Edge(e.ID)
		if !ok || f != e {
			return false
		}
	}
	return true
}

// =============================================================================
// Internal Implementation
// =============================================================================

func (g *Graph) lookupNode(id string) (int, bool) {
	if g == nil {
		return 0, false
	}
	i, ok := g.nodeIndex[id]
	return i, ok
}

func (g *Graph) checkInsert(n Node) error {
	if n.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "node id must not be empty")
	}
	if g.HasNode(n.ID) {
		return errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", n.ID)
	}
	if !n.Type.Valid() {
		return errors.New(errors.ErrCodeInvalidNodeType, "unknown node type %q", n.Type)
	}
	return nil
}

func (g *Graph) checkEndpoints(source, target string) error {
	if !g.HasNode(source) {
		return errors.New(errors.ErrCodeInvalidReference, "unknown source node %q", source)
	}
	if !g.HasNode(target) {
		return errors.New(errors.ErrCodeInvalidReference, "unknown target node %q", target)
	}
	if source == target {
		return errors.New(errors.ErrCodeInvalidInput, "node %q cannot connect to itself", source)
	}
	return nil
}

// edgeFor looks up the edge source→target by its id. The id only joins the
// endpoints with dashes, so an edge between other nodes may hold it
// ("a"→"b-c" and "a-b"→"c"); that is reported as a conflict.
func (g *Graph) edgeFor(source, target string) (Edge, bool, error) {
	id := EdgeID(source, target)
	e, ok := g.Edge(id)
	if !ok {
		return Edge{}, false, nil
	}
	if e.Source != source || e.Target != target {
		return Edge{}, false, errors.New(errors.ErrCodeInvalidInput,
			"edge id %s is already used by %s -> %s", id, e.Source, e.Target)
	}
	return e, true, nil
}

func (g *Graph) clone() *Graph {
	if g == nil {
		return New()
	}
	out := &Graph{
		nodes:     slices.Clone(g.nodes),
		edges:     slices.Clone(g.edges),
		nodeIndex: maps.Clone(g.nodeIndex),
		edgeIndex: maps.Clone(g.edgeIndex),
	}
	if out.nodeIndex == nil {
		out.nodeIndex = make(map[string]int)
	}
	if out.edgeIndex == nil {
		out.edgeIndex = make(map[string]int)
	}
	return out
}

func (g *Graph) appendNode(n Node) {
	g.nodeIndex[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

func (g *Graph) appendEdge(e Edge) {
	g.edgeIndex[e.ID] = len(g.edges)
	g.edges = append(g.edges, e)
}

func (g *Graph) reindex() {
	g.nodeIndex = make(map[string]int, len(g.nodes))
	for i, n := range g.nodes {
		g.nodeIndex[n.ID] = i
	}
	g.edgeIndex = make(map[string]int, len(g.edges))
	for i, e := range g.edges {
		g.edgeIndex[e.ID] = i
	}
}
