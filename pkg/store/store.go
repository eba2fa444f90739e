// Package store persists value-chain documents.
//
// A document is a named [Snapshot] of a graph. Backends:
//   - memory: in-process map, for tests and the API server's scratch mode
//   - file: one JSON file per document in a directory, for the CLI
//   - redis: one key per document, with optional expiry
//   - mongo: one MongoDB document per snapshot
//
// All backends implement [Store]. [Open] picks one from a [Config] and
// wraps it so every load and save is reported to the store hooks in
// package observability.
//
// # Usage
//
//	st, err := store.Open(ctx, store.Config{Backend: "file", Dir: dir})
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	if err := st.Save(ctx, store.NewSnapshot("acme", g)); err != nil {
//	    return err
//	}
//	snap, err := st.Load(ctx, "acme")
//
// A save either stores the whole snapshot or fails; callers keep their
// in-memory graph untouched until the store reports success.
package store

import (
	"context"
	"slices"
	"time"

	"github.com/matzehuels/valuechain/pkg/chain"
	pkgio "github.com/matzehuels/valuechain/pkg/io"
)

// Store is the interface for document storage backends.
type Store interface {
	// Load returns the snapshot stored under id.
	// Returns ErrCodeDocumentNotFound if there is none.
	Load(ctx context.Context, id string) (*Snapshot, error)

	// Save stores snap under snap.ID, replacing any previous version.
	Save(ctx context.Context, snap *Snapshot) error

	// Delete removes document id. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of all stored documents in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases the backend's resources.
	Close() error
}

// Snapshot is a stored graph.
type Snapshot struct {
	ID        string       `json:"id" bson:"_id"`
	Nodes     []pkgio.Node `json:"nodes" bson:"nodes"`
	Edges     []pkgio.Edge `json:"edges" bson:"edges"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`
}

// NewSnapshot captures g under id, stamped with the current time.
func NewSnapshot(id string, g *chain.Graph) *Snapshot {
	doc := pkgio.Encode(g)
	return &Snapshot{
		ID:        id,
		Nodes:     doc.Nodes,
		Edges:     doc.Edges,
		UpdatedAt: time.Now().UTC(),
	}
}

// Document returns the snapshot's nodes and edges as an import document.
func (s *Snapshot) Document() pkgio.Document {
	return pkgio.Document{Nodes: s.Nodes, Edges: s.Edges}
}

// Graph decodes the snapshot. Stored snapshots are always produced by
// [NewSnapshot], but data edited by hand goes through the same lenient
// rules as a JSON import.
func (s *Snapshot) Graph() pkgio.Result {
	return pkgio.Decode(s.Document())
}

func (s *Snapshot) clone() *Snapshot {
	out := *s
	out.Nodes = slices.Clone(s.Nodes)
	for i, n := range out.Nodes {
		if n.Data != nil {
			d := *n.Data
			out.Nodes[i].Data = &d
		}
	}
	out.Edges = slices.Clone(s.Edges)
	return &out
}
