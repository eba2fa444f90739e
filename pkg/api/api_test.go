package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/valuechain/pkg/chain"
	pkgio "github.com/matzehuels/valuechain/pkg/io"
	"github.com/matzehuels/valuechain/pkg/observability"
	"github.com/matzehuels/valuechain/pkg/store"
)

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, store.Store) {
	t.Helper()
	if cfg.Store == nil {
		cfg.Store = store.Instrument(store.NewMemoryStore(), store.BackendMemory)
	}
	srv := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(srv.Close)
	return srv, cfg.Store
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status = %d, want %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func TestHealthAndColors(t *testing.T) {
	srv, _ := newTestServer(t, Config{})

	resp := do(t, srv, "GET", "/healthz", "")
	expectStatus(t, resp, http.StatusOK)
	if got := decode[healthResponse](t, resp); got.Status != "ok" || got.Build.Version != "dev" {
		t.Errorf("health = %v", got)
	}

	resp = do(t, srv, "GET", "/colors", "")
	expectStatus(t, resp, http.StatusOK)
	colors := decode[colorsResponse](t, resp)
	if len(colors.Presets) == 0 || colors.Defaults["support"] != "#10b981" {
		t.Errorf("colors = %+v", colors)
	}
}

func TestNodeLifecycle(t *testing.T) {
	srv, st := newTestServer(t, Config{})

	resp := do(t, srv, "POST", "/graphs/acme/nodes", `{"type": "primary", "position": {"x": 100, "y": 100}, "data": {"label": "Inbound", "color": "red"}}`)
	expectStatus(t, resp, http.StatusCreated)
	a := decode[pkgio.Node](t, resp)
	if a.Data == nil || a.Data.Label != "Inbound" || a.Data.Color != "#ef4444" {
		t.Fatalf("created node = %+v", a)
	}

	resp = do(t, srv, "POST", "/graphs/acme/nodes", `{"type": "primary", "position": {"x": 250, "y": 110}}`)
	expectStatus(t, resp, http.StatusCreated)
	b := decode[pkgio.Node](t, resp)
	if b.Data.Label != "Primary Activity" {
		t.Errorf("default label = %q", b.Data.Label)
	}

	resp = do(t, srv, "PATCH", "/graphs/acme/nodes/"+b.ID, `{"description": "Ships goods"}`)
	expectStatus(t, resp, http.StatusOK)
	if got := decode[pkgio.Node](t, resp); got.Data.Description != "Ships goods" || got.Data.Label != "Primary Activity" {
		t.Errorf("patched node = %+v", got.Data)
	}

	resp = do(t, srv, "PUT", "/graphs/acme/nodes/"+b.ID+"/position", `{"x": 260, "y": 120}`)
	expectStatus(t, resp, http.StatusOK)
	if got := decode[pkgio.Node](t, resp); got.Position != (chain.Position{X: 260, Y: 120}) {
		t.Errorf("moved node = %+v", got.Position)
	}

	resp = do(t, srv, "POST", "/graphs/acme/nodes/"+a.ID+"/connect/right", "")
	expectStatus(t, resp, http.StatusOK)
	conn := decode[connectResponse](t, resp)
	if !conn.Connected || conn.Edge == nil || conn.Edge.Source != a.ID || conn.Edge.Target != b.ID {
		t.Fatalf("connect = %+v", conn)
	}

	snap, err := st.Load(context.Background(), "acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Nodes) != 2 || len(snap.Edges) != 1 {
		t.Errorf("stored %d nodes, %d edges", len(snap.Nodes), len(snap.Edges))
	}

	resp = do(t, srv, "DELETE", "/graphs/acme/nodes/"+a.ID, "")
	expectStatus(t, resp, http.StatusNoContent)
	snap, _ = st.Load(context.Background(), "acme")
	if len(snap.Nodes) != 1 || len(snap.Edges) != 0 {
		t.Errorf("after delete: %d nodes, %d edges", len(snap.Nodes), len(snap.Edges))
	}
}

func TestEdges(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	doc := `{"nodes": [
		{"id": "a", "type": "primary", "position": {"x": 0, "y": 0}, "data": {"label": "A"}},
		{"id": "b", "type": "support", "position": {"x": 0, "y": 200}, "data": {"label": "B"}}
	], "edges": []}`
	expectStatus(t, do(t, srv, "PUT", "/graphs/acme", doc), http.StatusOK)

	resp := do(t, srv, "POST", "/graphs/acme/edges", `{"source": "a", "target": "b"}`)
	expectStatus(t, resp, http.StatusCreated)
	if e := decode[pkgio.Edge](t, resp); e.ID != "e-a-b" || e.Type != "floating" {
		t.Errorf("edge = %+v", e)
	}

	resp = do(t, srv, "POST", "/graphs/acme/edges", `{"source": "a", "target": "ghost"}`)
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	if e := decode[errorResponse](t, resp); e.Code != "INVALID_REFERENCE" {
		t.Errorf("error code = %s", e.Code)
	}

	expectStatus(t, do(t, srv, "DELETE", "/graphs/acme/edges/e-a-b", ""), http.StatusNoContent)
	expectStatus(t, do(t, srv, "DELETE", "/graphs/acme/edges/e-a-b", ""), http.StatusNotFound)
}

func TestConnectGating(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	doc := `{"nodes": [
		{"id": "p", "type": "primary", "position": {"x": 0, "y": 0}},
		{"id": "s", "type": "support", "position": {"x": 0, "y": 200}}
	], "edges": []}`
	expectStatus(t, do(t, srv, "PUT", "/graphs/acme", doc), http.StatusOK)

	resp := do(t, srv, "POST", "/graphs/acme/nodes/p/connect/bottom", "")
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	if e := decode[errorResponse](t, resp); e.Code != "DIRECTION_NOT_ALLOWED" {
		t.Errorf("error code = %s", e.Code)
	}

	resp = do(t, srv, "POST", "/graphs/acme/nodes/p/connect/bottom?force=true", "")
	expectStatus(t, resp, http.StatusOK)
	if c := decode[connectResponse](t, resp); !c.Connected {
		t.Error("forced connect should link p to s")
	}

	resp = do(t, srv, "POST", "/graphs/acme/nodes/p/connect/left", "")
	expectStatus(t, resp, http.StatusOK)
	if c := decode[connectResponse](t, resp); c.Connected || c.Edge != nil {
		t.Errorf("connect with no candidate = %+v", c)
	}

	expectStatus(t, do(t, srv, "POST", "/graphs/acme/nodes/p/connect/up", ""), http.StatusBadRequest)
}

func TestImportReportsDrops(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	doc := `{"nodes": [
		{"id": "a", "type": "primary", "position": {"x": 0, "y": 0}},
		{"id": "a", "type": "primary", "position": {"x": 9, "y": 9}},
		{"id": "b", "type": "primary", "position": {"x": 200, "y": 0}}
	], "edges": [
		{"id": "x", "source": "a", "target": "gone"},
		{"id": "link-1", "source": "a", "target": "b"}
	]}`

	resp := do(t, srv, "PUT", "/graphs/acme", doc)
	expectStatus(t, resp, http.StatusOK)
	got := decode[importResponse](t, resp)
	want := importResponse{Nodes: 2, Edges: 1, DroppedEdges: 1, SkippedNodes: 1, RewrittenEdges: 1}
	if got != want {
		t.Errorf("import = %+v, want %+v", got, want)
	}

	resp = do(t, srv, "PUT", "/graphs/acme", `{"nodes": []}`)
	expectStatus(t, resp, http.StatusBadRequest)
	if e := decode[errorResponse](t, resp); e.Code != "PARSE_ERROR" {
		t.Errorf("error code = %s", e.Code)
	}

	resp = do(t, srv, "GET", "/graphs/acme", "")
	expectStatus(t, resp, http.StatusOK)
	if snap := decode[store.Snapshot](t, resp); len(snap.Nodes) != 2 {
		t.Error("failed import must not replace the stored document")
	}
}

func TestDocuments(t *testing.T) {
	srv, _ := newTestServer(t, Config{})

	resp := do(t, srv, "GET", "/graphs", "")
	expectStatus(t, resp, http.StatusOK)
	if got := decode[map[string][]string](t, resp); got["graphs"] == nil || len(got["graphs"]) != 0 {
		t.Errorf("empty list = %v", got)
	}

	expectStatus(t, do(t, srv, "GET", "/graphs/missing", ""), http.StatusNotFound)
	expectStatus(t, do(t, srv, "GET", "/graphs/..bad", ""), http.StatusBadRequest)

	expectStatus(t, do(t, srv, "POST", "/graphs/b/nodes", `{"type": "custom"}`), http.StatusCreated)
	expectStatus(t, do(t, srv, "POST", "/graphs/a/nodes", `{"type": "external"}`), http.StatusCreated)

	resp = do(t, srv, "GET", "/graphs", "")
	if got := decode[map[string][]string](t, resp); strings.Join(got["graphs"], ",") != "a,b" {
		t.Errorf("list = %v", got)
	}

	expectStatus(t, do(t, srv, "POST", "/graphs/a/clear", ""), http.StatusNoContent)
	resp = do(t, srv, "GET", "/graphs/a", "")
	if snap := decode[store.Snapshot](t, resp); len(snap.Nodes) != 0 {
		t.Error("clear left nodes")
	}

	expectStatus(t, do(t, srv, "DELETE", "/graphs/a", ""), http.StatusNoContent)
	expectStatus(t, do(t, srv, "GET", "/graphs/a", ""), http.StatusNotFound)
}

func TestValidation(t *testing.T) {
	srv, _ := newTestServer(t, Config{StrictColor: true})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"bad json", "POST", "/graphs/acme/nodes", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad type", "POST", "/graphs/acme/nodes", `{"type": "widget"}`, http.StatusBadRequest, "INVALID_NODE_TYPE"},
		{"bad color", "POST", "/graphs/acme/nodes", `{"type": "custom", "data": {"label": "X", "color": "nope"}}`, http.StatusBadRequest, "INVALID_COLOR"},
		{"unknown node", "PATCH", "/graphs/acme/nodes/ghost", `{"label": "X"}`, http.StatusNotFound, "NODE_NOT_FOUND"},
		{"unknown node move", "PUT", "/graphs/acme/nodes/ghost/position", `{"x": 1, "y": 2}`, http.StatusNotFound, "NODE_NOT_FOUND"},
		{"unknown node delete", "DELETE", "/graphs/acme/nodes/ghost", "", http.StatusNotFound, "NODE_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, tt.method, tt.path, tt.body)
			expectStatus(t, resp, tt.status)
			if e := decode[errorResponse](t, resp); e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	srv, st := newTestServer(t, Config{})

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest("POST", srv.URL+"/graphs/acme/nodes", strings.NewReader(`{"type": "custom"}`))
			resp, err := srv.Client().Do(req)
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	snap, err := st.Load(context.Background(), "acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Nodes) != n {
		t.Errorf("stored %d nodes, want %d", len(snap.Nodes), n)
	}
}

func TestDocumentLocksAreReleased(t *testing.T) {
	s := New(Config{Store: store.NewMemoryStore()})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	ids := []string{"acme", "globex", "initech"}
	var wg sync.WaitGroup
	for _, id := range ids {
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				req, _ := http.NewRequest("POST", srv.URL+"/graphs/"+id+"/nodes", strings.NewReader(`{"type": "custom"}`))
				resp, err := srv.Client().Do(req)
				if err == nil {
					resp.Body.Close()
				}
			}()
		}
	}
	wg.Wait()

	for _, id := range ids {
		resp := do(t, srv, "DELETE", "/graphs/"+id, "")
		resp.Body.Close()
	}
	if n := s.lockCount(); n != 0 {
		t.Errorf("%d document locks still held after all requests finished", n)
	}

	t.Run("waiters share one entry", func(t *testing.T) {
		unlock := s.lock("acme")
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.lock("acme")()
		}()
		for s.refs("acme") != 2 {
			time.Sleep(time.Millisecond)
		}
		if n := s.lockCount(); n != 1 {
			t.Errorf("lockCount = %d, want 1", n)
		}
		unlock()
		<-done
		if n := s.lockCount(); n != 0 {
			t.Errorf("lockCount = %d after release, want 0", n)
		}
	})
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	srv, _ := newTestServer(t, Config{})
	expectStatus(t, do(t, srv, "GET", "/healthz", ""), http.StatusOK)
	expectStatus(t, do(t, srv, "GET", "/graphs/none", ""), http.StatusNotFound)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.statuses) != 2 || hooks.statuses[0] != 200 || hooks.statuses[1] != 404 {
		t.Errorf("statuses = %v", hooks.statuses)
	}
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, Config{CORSOrigins: []string{"https://app.example.com"}})

	req, _ := http.NewRequest("OPTIONS", srv.URL+"/graphs", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

// refs returns how many requests hold or wait for the lock on id.
func (s *Server) refs(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[id]; ok {
		return l.refs
	}
	return 0
}

// lockCount returns the number of documents with requests in flight.
func (s *Server) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
