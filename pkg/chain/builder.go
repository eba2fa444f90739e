package chain

// Builder assembles a graph in place. It enforces the same invariants as
// [Graph] but mutates its internal state, which keeps bulk construction
// linear instead of copying the graph on every insertion.
//
// The zero value is not usable; use [NewBuilder] or [NewBuilderFrom].
// Builder is not safe for concurrent use.
type Builder struct {
	g *Graph
}

// NewBuilder returns a builder for an empty graph.
func NewBuilder() *Builder {
	return &Builder{g: New()}
}

// NewBuilderFrom returns a builder seeded with the contents of g.
// g itself is not modified.
func NewBuilderFrom(g *Graph) *Builder {
	return &Builder{g: g.clone()}
}

// AddNode adds n keeping its id. See [Graph.InsertNode] for the errors.
func (b *Builder) AddNode(n Node) error {
	if err := b.g.checkInsert(n); err != nil {
		return err
	}
	b.g.appendNode(n)
	return nil
}

// AddEdge adds the edge source→target, or returns the existing one.
// See [Graph.AddEdge] for the errors.
func (b *Builder) AddEdge(source, target string, t EdgeType) (Edge, error) {
	if err := b.g.checkEndpoints(source, target); err != nil {
		return Edge{}, err
	}
	existing, ok, err := b.g.edgeFor(source, target)
	if err != nil {
		return Edge{}, err
	}
	if ok {
		return existing, nil
	}
	if t == "" {
		t = Floating
	}
	e := Edge{ID: EdgeID(source, target), Source: source, Target: target, Type: t}
	b.g.appendEdge(e)
	return e, nil
}

// HasNode reports whether the builder already holds node id.
func (b *Builder) HasNode(id string) bool { return b.g.HasNode(id) }

// Graph returns an immutable snapshot of the graph built so far.
// The builder remains usable afterwards.
func (b *Builder) Graph() *Graph { return b.g.clone() }
