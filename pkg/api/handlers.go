package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/valuechain/pkg/buildinfo"
	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/color"
	"github.com/matzehuels/valuechain/pkg/connect"
	"github.com/matzehuels/valuechain/pkg/editor"
	"github.com/matzehuels/valuechain/pkg/errors"
	pkgio "github.com/matzehuels/valuechain/pkg/io"
	"github.com/matzehuels/valuechain/pkg/render/nodelink"
)

type addNodeRequest struct {
	Type     string          `json:"type"`
	Position *chain.Position `json:"position,omitempty"`
	Data     *pkgio.NodeData `json:"data,omitempty"`
}

type updateNodeRequest struct {
	Label       *string `json:"label,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

type addEdgeRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type connectResponse struct {
	Connected bool        `json:"connected"`
	Edge      *pkgio.Edge `json:"edge,omitempty"`
}

type importResponse struct {
	Nodes          int `json:"nodes"`
	Edges          int `json:"edges"`
	DroppedEdges   int `json:"dropped_edges"`
	SkippedNodes   int `json:"skipped_nodes"`
	RewrittenEdges int `json:"rewritten_edges"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type colorsResponse struct {
	Presets  []color.Preset    `json:"presets"`
	Defaults map[string]string `json:"defaults"`
}

// =============================================================================
// Service
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleColors(w http.ResponseWriter, r *http.Request) {
	defaults := make(map[string]string, len(chain.NodeTypes))
	for _, t := range chain.NodeTypes {
		defaults[string(t)] = color.TypeDefault(t)
	}
	writeJSON(w, http.StatusOK, colorsResponse{Presets: color.Presets, Defaults: defaults})
}

// =============================================================================
// Documents
// =============================================================================

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"graphs": ids})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	s.mutate(w, r, http.StatusOK, func(ctx context.Context, ed *editor.Editor) (any, error) {
		res, err := ed.Import(ctx, body)
		if err != nil {
			return nil, err
		}
		return importResponse{
			Nodes:          res.Graph.NodeCount(),
			Edges:          res.Graph.EdgeCount(),
			DroppedEdges:   res.DroppedEdges,
			SkippedNodes:   res.SkippedNodes,
			RewrittenEdges: res.RewrittenEdges,
		}, nil
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDocumentID(id); err != nil {
		writeError(w, err)
		return
	}
	unlock := s.lock(id)
	defer unlock()

	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, http.StatusNoContent, func(ctx context.Context, ed *editor.Editor) (any, error) {
		ed.Clear(ctx)
		return nil, nil
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	dot := nodelink.ToDOT(snap.Graph().Graph, nodelink.Options{Detailed: detailed})
	svg, err := nodelink.RenderSVG(r.Context(), dot)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// =============================================================================
// Nodes
// =============================================================================

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, ok := chain.ParseNodeType(req.Type)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeInvalidNodeType, "unknown node type %q", req.Type))
		return
	}
	var data *chain.NodeData
	if req.Data != nil {
		data = &chain.NodeData{Label: req.Data.Label, Description: req.Data.Description, Color: req.Data.Color}
	}
	s.mutate(w, r, http.StatusCreated, func(ctx context.Context, ed *editor.Editor) (any, error) {
		id, err := ed.AddNode(ctx, t, req.Position, data)
		if err != nil {
			return nil, err
		}
		return nodeResponse(ed.Graph(), id)
	})
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var req updateNodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	s.mutate(w, r, http.StatusOK, func(ctx context.Context, ed *editor.Editor) (any, error) {
		p := chain.Patch{Label: req.Label, Description: req.Description, Color: req.Color}
		if err := ed.UpdateNode(ctx, nodeID, p); err != nil {
			return nil, err
		}
		return nodeResponse(ed.Graph(), nodeID)
	})
}

func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	var pos chain.Position
	if err := decodeJSON(w, r, &pos); err != nil {
		writeError(w, err)
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	s.mutate(w, r, http.StatusOK, func(ctx context.Context, ed *editor.Editor) (any, error) {
		if err := ed.MoveNode(ctx, nodeID, pos); err != nil {
			return nil, err
		}
		return nodeResponse(ed.Graph(), nodeID)
	})
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	s.mutate(w, r, http.StatusNoContent, func(ctx context.Context, ed *editor.Editor) (any, error) {
		if !ed.Graph().HasNode(nodeID) {
			return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", nodeID)
		}
		ed.RemoveNode(ctx, nodeID)
		return nil, nil
	})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	d, err := connect.ParseDirection(chi.URLParam(r, "dir"))
	if err != nil {
		writeError(w, err)
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	nodeID := chi.URLParam(r, "nodeID")
	s.mutate(w, r, http.StatusOK, func(ctx context.Context, ed *editor.Editor) (any, error) {
		e, found, err := ed.Connect(ctx, nodeID, d, force)
		if err != nil {
			return nil, err
		}
		resp := connectResponse{Connected: found}
		if found {
			out := pkgio.EncodeEdge(e)
			resp.Edge = &out
		}
		return resp, nil
	})
}

// =============================================================================
// Edges
// =============================================================================

func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	var req addEdgeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.mutate(w, r, http.StatusCreated, func(ctx context.Context, ed *editor.Editor) (any, error) {
		e, err := ed.AddEdge(ctx, req.Source, req.Target)
		if err != nil {
			return nil, err
		}
		return pkgio.EncodeEdge(e), nil
	})
}

func (s *Server) handleRemoveEdge(w http.ResponseWriter, r *http.Request) {
	edgeID := chi.URLParam(r, "edgeID")
	s.mutate(w, r, http.StatusNoContent, func(ctx context.Context, ed *editor.Editor) (any, error) {
		if !ed.Graph().HasEdge(edgeID) {
			return nil, errors.New(errors.ErrCodeEdgeNotFound, "edge %q not found", edgeID)
		}
		ed.RemoveEdge(ctx, edgeID)
		return nil, nil
	})
}

// =============================================================================
// Helpers
// =============================================================================

// mutate runs op on document {id} under the document's lock and saves the
// result if the graph changed. A missing document starts empty. A nil
// result with a nil error writes status with no body.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, status int, op func(context.Context, *editor.Editor) (any, error)) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDocumentID(id); err != nil {
		writeError(w, err)
		return
	}
	unlock := s.lock(id)
	defer unlock()

	ed := editor.New(nil, s.editorOptions()...)
	if _, err := ed.Load(ctx, s.store, id); err != nil && !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		writeError(w, err)
		return
	}
	before := ed.Graph()

	out, err := op(ctx, ed)
	if err != nil {
		writeError(w, err)
		return
	}
	if ed.Graph() != before {
		if err := ed.Save(ctx, s.store, id); err != nil {
			writeError(w, err)
			return
		}
	}

	if out == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, out)
}

func nodeResponse(g *chain.Graph, id string) (pkgio.Node, error) {
	n, ok := g.Node(id)
	if !ok {
		return pkgio.Node{}, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	return pkgio.EncodeNode(n), nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(err), errorResponse{Code: string(code), Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
