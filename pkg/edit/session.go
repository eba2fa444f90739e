// Package edit implements the node edit panel: a scratch copy of one
// node's label, description and color that is either committed back into
// the graph or thrown away.
//
// A [Session] is bound to the graph it was started on. Commit, Cancel and
// Delete each end the session; any call after that fails with
// ErrCodeSessionClosed. Sessions are not safe for concurrent use.
package edit

import (
	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/color"
	"github.com/matzehuels/valuechain/pkg/errors"
)

// Option configures a session.
type Option func(*Session)

// WithStrictColor makes SetColor reject strings that are neither presets
// nor parseable colors.
func WithStrictColor() Option {
	return func(s *Session) { s.strict = true }
}

// Session holds the edit state of a single node.
type Session struct {
	graph   *chain.Graph
	node    chain.Node
	scratch chain.NodeData
	strict  bool
	closed  bool
}

// Begin starts editing node id of g.
// Returns ErrCodeNodeNotFound if the node does not exist.
func Begin(g *chain.Graph, id string, opts ...Option) (*Session, error) {
	n, ok := g.Node(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	s := &Session{graph: g, node: n, scratch: n.Data}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Node returns the node as it was when the session began.
func (s *Session) Node() chain.Node { return s.node }

// Label returns the pending label.
func (s *Session) Label() string { return s.scratch.Label }

// Description returns the pending description.
func (s *Session) Description() string { return s.scratch.Description }

// Color returns the pending color override; empty means the type default.
func (s *Session) Color() string { return s.scratch.Color }

// Data returns all pending fields.
func (s *Session) Data() chain.NodeData { return s.scratch }

// Closed reports whether the session has ended.
func (s *Session) Closed() bool { return s.closed }

// Dirty reports whether any pending field differs from the node.
func (s *Session) Dirty() bool { return s.scratch != s.node.Data }

// SetLabel sets the pending label.
func (s *Session) SetLabel(label string) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := errors.ValidateLabel(label); err != nil {
		return err
	}
	s.scratch.Label = label
	return nil
}

// SetDescription sets the pending description.
func (s *Session) SetDescription(desc string) error {
	if err := s.check(); err != nil {
		return err
	}
	s.scratch.Description = desc
	return nil
}

// SetColor sets the pending color. "default" or "" clear the override, a
// preset name stores the preset's hex value, anything else is stored as
// typed unless the session is strict.
func (s *Session) SetColor(c string) error {
	if err := s.check(); err != nil {
		return err
	}
	v, err := color.Normalize(c, s.strict)
	if err != nil {
		return err
	}
	s.scratch.Color = v
	return nil
}

// Commit writes the pending fields into the node and ends the session.
// An unchanged session returns the original graph.
func (s *Session) Commit() (*chain.Graph, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	s.closed = true
	if !s.Dirty() {
		return s.graph, nil
	}
	return s.graph.UpdateNode(s.node.ID, chain.Patch{
		Label:       chain.Str(s.scratch.Label),
		Description: chain.Str(s.scratch.Description),
		Color:       chain.Str(s.scratch.Color),
	})
}

// Cancel discards the pending fields and returns the original graph.
func (s *Session) Cancel() (*chain.Graph, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	s.closed = true
	return s.graph, nil
}

// Delete removes the node, and every edge touching it, and ends the
// session.
func (s *Session) Delete() (*chain.Graph, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	s.closed = true
	return s.graph.RemoveNode(s.node.ID), nil
}

func (s *Session) check() error {
	if s.closed {
		return errors.New(errors.ErrCodeSessionClosed, "edit session for node %q has ended", s.node.ID)
	}
	return nil
}
