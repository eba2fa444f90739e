package store

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/errors"
	"github.com/matzehuels/valuechain/pkg/observability"
)

func testGraph(t *testing.T) *chain.Graph {
	t.Helper()
	b := chain.NewBuilder()
	for _, n := range []chain.Node{
		{ID: "ops", Type: chain.Primary, Position: chain.Position{X: 10, Y: 20}, Data: chain.NodeData{Label: "Operations"}},
		{ID: "hr", Type: chain.Support, Position: chain.Position{X: 10, Y: 200}, Data: chain.NodeData{Label: "HR", Color: "#ec4899"}},
	} {
		if err := b.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := b.AddEdge("hr", "ops", chain.Floating); err != nil {
		t.Fatal(err)
	}
	return b.Graph()
}

// exerciseStore runs the behavior every backend must share.
func exerciseStore(t *testing.T, st Store) {
	ctx := context.Background()
	g := testGraph(t)

	if _, err := st.Load(ctx, "acme"); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		t.Fatalf("Load(missing) err = %v, want DOCUMENT_NOT_FOUND", err)
	}

	if err := st.Save(ctx, NewSnapshot("acme", g)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Save(ctx, NewSnapshot("beta", chain.New())); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, err := st.Load(ctx, "acme")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	res := snap.Graph()
	if !chain.Equal(g, res.Graph) {
		t.Error("loaded graph differs from saved graph")
	}
	if res.Partial() {
		t.Errorf("stored snapshot imported partially: %+v", res)
	}

	ids, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 || ids[0] != "acme" || ids[1] != "beta" {
		t.Errorf("List = %v, want [acme beta]", ids)
	}

	// Overwrite replaces the document.
	if err := st.Save(ctx, NewSnapshot("acme", g.RemoveNode("hr"))); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	snap, _ = st.Load(ctx, "acme")
	if len(snap.Nodes) != 1 || len(snap.Edges) != 0 {
		t.Errorf("after overwrite: %d nodes, %d edges", len(snap.Nodes), len(snap.Edges))
	}

	if err := st.Delete(ctx, "acme"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := st.Delete(ctx, "acme"); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
	if _, err := st.Load(ctx, "acme"); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		t.Errorf("Load after delete err = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	snap := NewSnapshot("acme", testGraph(t))
	if err := st.Save(ctx, snap); err != nil {
		t.Fatal(err)
	}
	snap.Nodes[0].Data.Label = "mutated"

	got, _ := st.Load(ctx, "acme")
	if got.Nodes[0].Data.Label != "Operations" {
		t.Error("store kept a reference to the caller's snapshot")
	}
}

func TestFileStore(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exerciseStore(t, st)
}

func TestFileStoreRejectsUnsafeIDs(t *testing.T) {
	ctx := context.Background()
	st, _ := NewFileStore(t.TempDir())
	for _, id := range []string{"", "../escape", "a/b", ".hidden"} {
		if err := st.Save(ctx, NewSnapshot(id, chain.New())); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Save(%q) err = %v, want INVALID_INPUT", id, err)
		}
	}
}

func TestFileStoreIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	st, _ := NewFileStore(dir)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600)
	_ = os.WriteFile(filepath.Join(dir, ".acme.123.tmp"), []byte("{}"), 0o600)
	_ = os.Mkdir(filepath.Join(dir, "sub.json"), 0o700)

	ids, err := st.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("List = %v, want empty", ids)
	}
}

func TestFileStoreCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	st, _ := NewFileStore(dir)
	_ = os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o600)
	if _, err := st.Load(context.Background(), "broken"); !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("err = %v, want PARSE_ERROR", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, Config{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("Open(memory): %v", err)
	}
	exerciseStore(t, st)

	st, err = Open(ctx, Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(default): %v", err)
	}
	if err := st.Save(ctx, NewSnapshot("acme", chain.New())); err != nil {
		t.Errorf("default backend Save: %v", err)
	}

	if _, err := Open(ctx, Config{Backend: "etcd"}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Open(etcd) err = %v, want UNSUPPORTED", err)
	}
}

type recordingStoreHooks struct {
	observability.NoopStoreHooks
	loads, saves int
	backend      string
	lastSize     int
}

func (h *recordingStoreHooks) OnLoad(_ context.Context, backend, _ string, _ time.Duration, _ error) {
	h.loads++
	h.backend = backend
}

func (h *recordingStoreHooks) OnSave(_ context.Context, backend, _ string, size int, _ time.Duration, _ error) {
	h.saves++
	h.backend = backend
	h.lastSize = size
}

func TestInstrumentReportsToHooks(t *testing.T) {
	hooks := &recordingStoreHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	st := Instrument(NewMemoryStore(), "memory")
	_ = st.Save(ctx, NewSnapshot("acme", testGraph(t)))
	_, _ = st.Load(ctx, "acme")
	_, _ = st.Load(ctx, "missing")

	if hooks.saves != 1 || hooks.loads != 2 {
		t.Errorf("saves=%d loads=%d, want 1 and 2", hooks.saves, hooks.loads)
	}
	if hooks.backend != "memory" || hooks.lastSize == 0 {
		t.Errorf("backend=%q size=%d", hooks.backend, hooks.lastSize)
	}

	if _, err := st.Load(ctx, "../etc"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("invalid id err = %v", err)
	}
	if hooks.loads != 2 {
		t.Error("invalid ids must not reach the backend")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()

	ctx := context.Background()
	boom := stderrors.New("boom")

	t.Run("succeeds after retries", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 3 {
				return Retryable(boom)
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return Retryable(boom)
		})
		if !stderrors.Is(err, boom) || calls != 3 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return boom
		})
		if err != boom || calls != 1 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("context cancel", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := RetryWithBackoff(cctx, func() error { return Retryable(boom) })
		if !stderrors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})

	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}
