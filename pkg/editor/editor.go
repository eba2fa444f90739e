// Package editor owns the graph of one open document.
//
// [Editor] holds the current [chain.Graph] value and replaces it wholesale
// after every successful operation. Because graphs are immutable, undo and
// redo are stacks of earlier values. Operations that fail, or that return
// the graph they were given, leave both the graph and the history alone.
//
// Persistence and bulk producers are boundaries: [Editor.Save] never
// touches the graph, and [Editor.Load], [Editor.Import] and [Editor.Merge]
// replace it only once the whole result is available.
//
// An Editor is not safe for concurrent use.
package editor

import (
	"context"
	"io"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/color"
	"github.com/matzehuels/valuechain/pkg/connect"
	"github.com/matzehuels/valuechain/pkg/edit"
	"github.com/matzehuels/valuechain/pkg/errors"
	pkgio "github.com/matzehuels/valuechain/pkg/io"
	"github.com/matzehuels/valuechain/pkg/observability"
	"github.com/matzehuels/valuechain/pkg/store"
)

// DefaultHistoryLimit bounds the undo stack.
const DefaultHistoryLimit = 100

// Toolbar placement: new nodes start at (ToolbarOrigin, ToolbarOrigin) and
// shift by ToolbarStep on both axes for every node already present.
const (
	ToolbarOrigin = 100.0
	ToolbarStep   = 40.0
)

// Option configures an Editor.
type Option func(*Editor)

// WithHistoryLimit caps the number of undo steps kept. n <= 0 disables
// history.
func WithHistoryLimit(n int) Option {
	return func(e *Editor) { e.limit = n }
}

// WithStrictColor rejects color overrides that do not parse.
func WithStrictColor() Option {
	return func(e *Editor) { e.strictColor = true }
}

// Editor is the single owner of a document's graph.
type Editor struct {
	graph       *chain.Graph
	undo        []*chain.Graph
	redo        []*chain.Graph
	limit       int
	strictColor bool
}

// New returns an editor for g. A nil g starts empty.
func New(g *chain.Graph, opts ...Option) *Editor {
	if g == nil {
		g = chain.New()
	}
	e := &Editor{graph: g, limit: DefaultHistoryLimit}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the current graph.
func (e *Editor) Graph() *chain.Graph { return e.graph }

// Apply runs op on the current graph and, if it succeeds with a different
// graph, makes the result current and records the previous graph for undo.
// name identifies the operation in observability events.
func (e *Editor) Apply(ctx context.Context, name string, op func(*chain.Graph) (*chain.Graph, error)) error {
	out, err := op(e.graph)
	if err != nil {
		return err
	}
	e.commit(ctx, name, out)
	return nil
}

func (e *Editor) commit(ctx context.Context, name string, out *chain.Graph) {
	if out == nil || out == e.graph {
		return
	}
	if e.limit > 0 {
		e.undo = append(e.undo, e.graph)
		if len(e.undo) > e.limit {
			e.undo = e.undo[len(e.undo)-e.limit:]
		}
	}
	e.redo = nil
	e.graph = out
	observability.Editor().OnMutation(ctx, name, out.NodeCount(), out.EdgeCount())
}

// =============================================================================
// History
// =============================================================================

// CanUndo reports whether there is a change to undo.
func (e *Editor) CanUndo() bool { return len(e.undo) > 0 }

// CanRedo reports whether there is an undone change to reapply.
func (e *Editor) CanRedo() bool { return len(e.redo) > 0 }

// Undo restores the graph before the last change.
// It returns false if there is nothing to undo.
func (e *Editor) Undo(ctx context.Context) bool {
	if !e.CanUndo() {
		return false
	}
	prev := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, e.graph)
	e.graph = prev
	observability.Editor().OnMutation(ctx, "undo", prev.NodeCount(), prev.EdgeCount())
	return true
}

// Redo reapplies the last undone change.
// It returns false if there is nothing to redo.
func (e *Editor) Redo(ctx context.Context) bool {
	if !e.CanRedo() {
		return false
	}
	next := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.undo = append(e.undo, e.graph)
	e.graph = next
	observability.Editor().OnMutation(ctx, "redo", next.NodeCount(), next.EdgeCount())
	return true
}

// =============================================================================
// Graph Operations
// =============================================================================

// NextPosition returns where the toolbar places the next node.
func (e *Editor) NextPosition() chain.Position {
	off := ToolbarStep * float64(e.graph.NodeCount())
	return chain.Position{X: ToolbarOrigin + off, Y: ToolbarOrigin + off}
}

// AddNode adds a node of type t. A nil pos uses [Editor.NextPosition]; a
// nil data uses the type's display name as label.
func (e *Editor) AddNode(ctx context.Context, t chain.NodeType, pos *chain.Position, data *chain.NodeData) (string, error) {
	p := e.NextPosition()
	if pos != nil {
		p = *pos
	}
	if data != nil {
		if err := errors.ValidateLabel(data.Label); err != nil {
			return "", err
		}
		c, err := color.Normalize(data.Color, e.strictColor)
		if err != nil {
			return "", err
		}
		d := *data
		d.Color = c
		data = &d
	}
	var id string
	err := e.Apply(ctx, "add-node", func(g *chain.Graph) (*chain.Graph, error) {
		out, newID, err := g.AddNode(t, p, data)
		id = newID
		return out, err
	})
	return id, err
}

// UpdateNode merges p into node id's data. Colors are normalized as in
// an edit session: "default" clears, preset names become hex values.
func (e *Editor) UpdateNode(ctx context.Context, id string, p chain.Patch) error {
	if p.Label != nil {
		if err := errors.ValidateLabel(*p.Label); err != nil {
			return err
		}
	}
	if p.Color != nil {
		c, err := color.Normalize(*p.Color, e.strictColor)
		if err != nil {
			return err
		}
		p.Color = &c
	}
	return e.Apply(ctx, "update-node", func(g *chain.Graph) (*chain.Graph, error) {
		return g.UpdateNode(id, p)
	})
}

// MoveNode sets node id's position.
func (e *Editor) MoveNode(ctx context.Context, id string, pos chain.Position) error {
	return e.Apply(ctx, "move-node", func(g *chain.Graph) (*chain.Graph, error) {
		return g.MoveNode(id, pos)
	})
}

// RemoveNode deletes node id and its edges. Unknown ids are ignored.
func (e *Editor) RemoveNode(ctx context.Context, id string) {
	_ = e.Apply(ctx, "remove-node", func(g *chain.Graph) (*chain.Graph, error) {
		return g.RemoveNode(id), nil
	})
}

// AddEdge connects source to target with a floating edge.
func (e *Editor) AddEdge(ctx context.Context, source, target string) (chain.Edge, error) {
	var edge chain.Edge
	err := e.Apply(ctx, "add-edge", func(g *chain.Graph) (*chain.Graph, error) {
		out, ed, err := g.AddEdge(source, target, chain.Floating)
		edge = ed
		return out, err
	})
	return edge, err
}

// RemoveEdge deletes edge id. Unknown ids are ignored.
func (e *Editor) RemoveEdge(ctx context.Context, id string) {
	_ = e.Apply(ctx, "remove-edge", func(g *chain.Graph) (*chain.Graph, error) {
		return g.RemoveEdge(id), nil
	})
}

// Connect links node id to its nearest neighbor in direction d. Unless
// force is set, d must be one of the sides the node's type exposes. The
// boolean is false when no neighbor qualified, which is not an error.
func (e *Editor) Connect(ctx context.Context, id string, d connect.Direction, force bool) (chain.Edge, bool, error) {
	var (
		edge  chain.Edge
		found bool
	)
	err := e.Apply(ctx, "connect", func(g *chain.Graph) (*chain.Graph, error) {
		if force {
			if !g.HasNode(id) {
				return g, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
			}
			if !d.Valid() {
				return g, errors.New(errors.ErrCodeInvalidDirection, "unknown direction %q", d)
			}
			out, ed, ok := connect.ConnectNearest(g, id, d)
			edge, found = ed, ok
			return out, nil
		}
		out, ed, ok, err := connect.ConnectAllowed(g, id, d)
		edge, found = ed, ok
		return out, err
	})
	return edge, found, err
}

// Clear empties the graph. It can be undone.
func (e *Editor) Clear(ctx context.Context) {
	if e.graph.NodeCount() == 0 && e.graph.EdgeCount() == 0 {
		return
	}
	e.commit(ctx, "clear", e.graph.Clear())
}

// Replace makes g the current graph, as one undoable step.
func (e *Editor) Replace(ctx context.Context, name string, g *chain.Graph) {
	if g == nil {
		g = chain.New()
	}
	e.commit(ctx, name, g)
}

// Merge adds an externally produced batch of nodes and edges. The batch is
// applied entirely or not at all; see [chain.Graph.Merge].
func (e *Editor) Merge(ctx context.Context, nodes []chain.Node, edges []chain.Edge) error {
	return e.Apply(ctx, "merge", func(g *chain.Graph) (*chain.Graph, error) {
		return g.Merge(nodes, edges)
	})
}

// =============================================================================
// Node Edit Sessions
// =============================================================================

// Edit starts an edit session on node id of the current graph.
func (e *Editor) Edit(id string) (*edit.Session, error) {
	var opts []edit.Option
	if e.strictColor {
		opts = append(opts, edit.WithStrictColor())
	}
	return edit.Begin(e.graph, id, opts...)
}

// Commit ends s and writes its fields into node s.Node().ID of the
// current graph. Changes made to the graph since the session began are
// kept. A session without changes records nothing.
func (e *Editor) Commit(ctx context.Context, s *edit.Session) error {
	if _, err := s.Commit(); err != nil {
		return err
	}
	if !s.Dirty() {
		return nil
	}
	d := s.Data()
	return e.Apply(ctx, "edit-node", func(g *chain.Graph) (*chain.Graph, error) {
		return g.UpdateNode(s.Node().ID, chain.Patch{
			Label:       chain.Str(d.Label),
			Description: chain.Str(d.Description),
			Color:       chain.Str(d.Color),
		})
	})
}

// Delete ends s by removing its node, and the node's edges, from the
// current graph.
func (e *Editor) Delete(ctx context.Context, s *edit.Session) error {
	if _, err := s.Delete(); err != nil {
		return err
	}
	e.RemoveNode(ctx, s.Node().ID)
	return nil
}

// =============================================================================
// Import, Export and Persistence
// =============================================================================

// Import replaces the graph with the document read from r. On a parse
// error the graph is unchanged.
func (e *Editor) Import(ctx context.Context, r io.Reader) (pkgio.Result, error) {
	res, err := pkgio.ReadJSON(r)
	return e.finishImport(ctx, "import", res, err)
}

// Export writes the current graph to w.
func (e *Editor) Export(w io.Writer) error {
	return pkgio.WriteJSON(e.graph, w)
}

// Save stores the current graph under id. The graph is never modified,
// whether or not the save succeeds.
func (e *Editor) Save(ctx context.Context, st store.Store, id string) error {
	return st.Save(ctx, store.NewSnapshot(id, e.graph))
}

// Load replaces the graph with document id from st. If the load fails the
// graph is unchanged.
func (e *Editor) Load(ctx context.Context, st store.Store, id string) (pkgio.Result, error) {
	snap, err := st.Load(ctx, id)
	if err != nil {
		return pkgio.Result{}, err
	}
	return e.finishImport(ctx, "load", snap.Graph(), nil)
}

func (e *Editor) finishImport(ctx context.Context, name string, res pkgio.Result, err error) (pkgio.Result, error) {
	if err != nil {
		observability.Editor().OnImport(ctx, 0, 0, 0, err)
		return pkgio.Result{}, err
	}
	observability.Editor().OnImport(ctx, res.Graph.NodeCount(), res.DroppedEdges, res.SkippedNodes, nil)
	e.Replace(ctx, name, res.Graph)
	return res, nil
}
