package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/errors"
	pkgio "github.com/matzehuels/valuechain/pkg/io"
)

// testEnv isolates config, store and document paths in a temp dir.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return filepath.Join(dir, "doc.json")
}

func run(t *testing.T, doc string, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--file", doc}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func mustRun(t *testing.T, doc string, args ...string) {
	t.Helper()
	if err := run(t, doc, args...); err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
}

func load(t *testing.T, doc string) *chain.Graph {
	t.Helper()
	res, err := pkgio.ImportJSON(doc)
	if err != nil {
		t.Fatal(err)
	}
	return res.Graph
}

func nodeIDs(g *chain.Graph) []string {
	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestInit(t *testing.T) {
	doc := testEnv(t)

	mustRun(t, doc, "init")
	if g := load(t, doc); g.NodeCount() != 0 {
		t.Error("init should write an empty document")
	}
	if err := run(t, doc, "init"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second init err = %v", err)
	}
	mustRun(t, doc, "init", "--force")
}

func TestNodeAndEdgeCommands(t *testing.T) {
	doc := testEnv(t)

	mustRun(t, doc, "node", "add", "primary", "--label", "Inbound", "--x", "100", "--y", "100")
	mustRun(t, doc, "node", "add", "primary", "--x", "250", "--y", "110")
	mustRun(t, doc, "node", "add", "support", "--x", "500", "--y", "500")

	g := load(t, doc)
	ids := nodeIDs(g)
	if len(ids) != 3 {
		t.Fatalf("nodes = %v", ids)
	}
	a, b, s := ids[0], ids[1], ids[2]
	if n, _ := g.Node(b); n.Data.Label != "Primary Activity" {
		t.Errorf("default label = %q", n.Data.Label)
	}
	if n, _ := g.Node(s); n.Type != chain.Support {
		t.Errorf("third node type = %s", n.Type)
	}

	mustRun(t, doc, "connect", a, "right")
	if !load(t, doc).HasEdge(chain.EdgeID(a, b)) {
		t.Fatal("connect right should link a to b")
	}
	if err := run(t, doc, "connect", a, "bottom"); !errors.Is(err, errors.ErrCodeDirectionNotAllowed) {
		t.Errorf("gated connect err = %v", err)
	}
	if err := run(t, doc, "connect", a, "sideways"); !errors.Is(err, errors.ErrCodeInvalidDirection) {
		t.Errorf("bad direction err = %v", err)
	}

	mustRun(t, doc, "node", "update", a, "--color", "red", "--description", "Receiving")
	if n, _ := load(t, doc).Node(a); n.Data.Color != "#ef4444" || n.Data.Description != "Receiving" || n.Data.Label != "Inbound" {
		t.Errorf("updated node = %+v", n.Data)
	}
	if err := run(t, doc, "node", "update", a); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty update err = %v", err)
	}

	mustRun(t, doc, "node", "move", a, "5", "6")
	if n, _ := load(t, doc).Node(a); n.Position != (chain.Position{X: 5, Y: 6}) {
		t.Errorf("moved to %+v", n.Position)
	}

	mustRun(t, doc, "edge", "add", s, a)
	mustRun(t, doc, "edge", "rm", chain.EdgeID(s, a))
	if err := run(t, doc, "edge", "rm", chain.EdgeID(s, a)); !errors.Is(err, errors.ErrCodeEdgeNotFound) {
		t.Errorf("second rm err = %v", err)
	}

	mustRun(t, doc, "node", "rm", b)
	g = load(t, doc)
	if g.NodeCount() != 2 || g.EdgeCount() != 0 {
		t.Errorf("after rm: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}

	mustRun(t, doc, "node", "ls")
	mustRun(t, doc, "edge", "ls")
}

func TestNodeAddToolbarPlacement(t *testing.T) {
	doc := testEnv(t)
	mustRun(t, doc, "node", "add", "primary")
	mustRun(t, doc, "node", "add", "support")

	nodes := load(t, doc).Nodes()
	if nodes[0].Position != (chain.Position{X: 100, Y: 100}) || nodes[1].Position != (chain.Position{X: 140, Y: 140}) {
		t.Errorf("positions = %+v, %+v", nodes[0].Position, nodes[1].Position)
	}
}

func TestNodeAddRejects(t *testing.T) {
	doc := testEnv(t)

	if err := run(t, doc, "node", "add", "widget"); !errors.Is(err, errors.ErrCodeInvalidNodeType) {
		t.Errorf("unknown type err = %v", err)
	}
	if err := run(t, doc, "node", "move", "ghost", "1", "2"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("move ghost err = %v", err)
	}
	if _, err := os.Stat(doc); !os.IsNotExist(err) {
		t.Error("failed commands must not create the document")
	}
}

func TestImportExportClear(t *testing.T) {
	doc := testEnv(t)
	src := filepath.Join(filepath.Dir(doc), "in.json")
	data := `{"nodes": [
		{"id": "a", "type": "primary", "position": {"x": 0, "y": 0}, "data": {"label": "A"}},
		{"id": "b", "type": "mystery", "position": {"x": 200, "y": 0}}
	], "edges": [
		{"id": "e1", "source": "a", "target": "b"},
		{"id": "e2", "source": "a", "target": "gone"}
	]}`
	if err := os.WriteFile(src, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	mustRun(t, doc, "import", src)
	g := load(t, doc)
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("imported %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	if n, _ := g.Node("b"); n.Type != chain.Custom {
		t.Errorf("unknown type imported as %s", n.Type)
	}

	bad := filepath.Join(filepath.Dir(doc), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"nodes": {}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(t, doc, "import", bad); !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("bad import err = %v", err)
	}
	if !chain.Equal(g, load(t, doc)) {
		t.Error("failed import changed the document")
	}

	if err := run(t, doc, "import", filepath.Join(filepath.Dir(doc), "missing.json")); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		t.Errorf("missing import err = %v", err)
	}
	if err := run(t, doc, "import", filepath.Join(src, "nested.json")); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("unreadable import err = %v", err)
	}

	out := filepath.Join(filepath.Dir(doc), "out.json")
	mustRun(t, doc, "export", out)
	if !chain.Equal(g, load(t, out)) {
		t.Error("export differs from the document")
	}

	mustRun(t, doc, "clear")
	if load(t, doc).NodeCount() != 0 {
		t.Error("clear left nodes")
	}
}

func TestPushPull(t *testing.T) {
	doc := testEnv(t)

	mustRun(t, doc, "node", "add", "external", "--label", "Regulation")
	want := load(t, doc)

	mustRun(t, doc, "push", "acme")
	mustRun(t, doc, "clear")
	mustRun(t, doc, "ls-remote")
	mustRun(t, doc, "pull", "acme")

	if !chain.Equal(want, load(t, doc)) {
		t.Error("pull did not restore the pushed document")
	}
	if err := run(t, doc, "pull", "missing"); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		t.Errorf("pull missing err = %v", err)
	}
	if err := run(t, doc, "push", "../escape"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("push unsafe id err = %v", err)
	}
}

func TestRenderDOT(t *testing.T) {
	doc := testEnv(t)
	mustRun(t, doc, "node", "add", "primary", "--label", "Operations")

	out := filepath.Join(filepath.Dir(doc), "chain.dot")
	mustRun(t, doc, "render", "-o", out)

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "digraph valuechain") || !strings.Contains(string(data), `label="Operations"`) {
		t.Errorf("render output:\n%s", data)
	}

	if err := run(t, doc, "render", "--format", "gif"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad format err = %v", err)
	}
}

func TestConfigFlag(t *testing.T) {
	doc := testEnv(t)
	cfg := filepath.Join(filepath.Dir(doc), "config.toml")
	if err := os.WriteFile(cfg, []byte("[editor]\nstrict_color = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := run(t, doc, "--config", cfg, "node", "add", "custom", "--color", "not-a-color")
	if !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Errorf("strict color err = %v", err)
	}
	mustRun(t, doc, "node", "add", "custom", "--color", "not-a-color")
}

func TestCompletion(t *testing.T) {
	doc := testEnv(t)
	mustRun(t, doc, "node", "add", "support", "--label", "HR")
	id := nodeIDs(load(t, doc))[0]

	c := New(io.Discard, LogInfo)
	c.file = doc

	ids, _ := c.completeNodeIDs(1)(nil, nil, "")
	if len(ids) != 1 || ids[0] != id+"\tHR" {
		t.Errorf("node ids = %v", ids)
	}
	if ids, _ := c.completeNodeIDs(1)(nil, []string{id}, ""); len(ids) != 0 {
		t.Errorf("second argument completed %v", ids)
	}

	dirs, _ := c.completeConnect(nil, []string{id}, "")
	if strings.Join(dirs, ",") != "top,bottom" {
		t.Errorf("support directions = %v", dirs)
	}
}
