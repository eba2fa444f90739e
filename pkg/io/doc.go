// Package io provides JSON import and export for value-chain diagrams.
//
// # JSON Format
//
// A document has two required top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "primary-1", "type": "primary",
//	     "position": {"x": 100, "y": 100},
//	     "data": {"label": "Operations", "color": "#3b82f6"}},
//	    {"id": "support-1", "type": "support",
//	     "position": {"x": 100, "y": 260},
//	     "data": {"label": "Procurement", "description": "Sourcing"}}
//	  ],
//	  "edges": [
//	    {"id": "e-support-1-primary-1", "source": "support-1",
//	     "target": "primary-1", "type": "floating"}
//	  ]
//	}
//
// Positions are written verbatim as JSON numbers. description and color
// are omitted when empty.
//
// # Import
//
// Use [ImportJSON] to read a file, [ReadJSON] for any io.Reader, or
// [Unmarshal] for a byte slice. Import is lenient:
//
//   - A document that is not JSON, or lacks the nodes or edges array, fails
//     with ErrCodeParse and yields no graph.
//   - Nodes without an id are skipped; repeated ids keep the first node.
//   - Unknown or missing node types become "custom".
//   - Edges whose source or target is not an imported node are dropped.
//   - Edge ids are recomputed from their endpoints, so repeated edges
//     collapse into one. Supplied ids that differ are counted as
//     rewritten.
//   - An edge whose canonical id is already held by an edge between other
//     nodes (possible because node ids may contain dashes) is dropped.
//
// Everything skipped, dropped or rewritten is counted in the returned
// [Result] so the caller can tell the user that the import was partial.
//
// # Export
//
// Use [ExportJSON] to write a file, [WriteJSON] for any io.Writer, or
// [Marshal] for a byte slice. Nodes and edges are written in graph
// insertion order. Importing an exported document reproduces the same
// graph.
//
// # Documents
//
// [Document] is the decoded wire form. Storage backends persist it
// directly (it carries bson tags as well) and convert with [Encode] and
// [Decode].
package io
