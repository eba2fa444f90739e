package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/valuechain/pkg/chain"
)

func graph(t *testing.T) *chain.Graph {
	t.Helper()
	b := chain.NewBuilder()
	for _, n := range []chain.Node{
		{ID: "ops", Type: chain.Primary, Position: chain.Position{X: 100, Y: 50}, Data: chain.NodeData{Label: "Operations"}},
		{ID: "ext", Type: chain.External, Position: chain.Position{X: 300.5, Y: 0}, Data: chain.NodeData{Label: `Say "hi"`, Description: "line1\nline2"}},
		{ID: "hr", Type: chain.Support, Data: chain.NodeData{Label: "HR", Color: "white"}},
		{ID: "odd", Type: chain.Custom, Data: chain.NodeData{Label: "Odd", Color: "papayawhip"}},
	} {
		if err := b.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := b.AddEdge("ops", "ext", chain.Floating); err != nil {
		t.Fatal(err)
	}
	return b.Graph()
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(graph(t), Options{})

	for _, want := range []string{
		"digraph valuechain {",
		"layout=neato;",
		`"ops" [label="Operations", pos="100,-50!", fillcolor="#3b82f6", fontcolor="#ffffff"];`,
		`label="Say \"hi\""`,
		`pos="300.5,0!"`,
		`tooltip="line1\nline2"`,
		`"hr" [label="HR", pos="0,0!", fillcolor="#ffffff", fontcolor="#000000"];`,
		`fillcolor="#8b5cf6"`,
		`"ops" -> "ext" [id="e-ops-ext"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "-0!") {
		t.Error("zero y should not be written as -0")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(graph(t), Options{Detailed: true})
	if !strings.Contains(dot, `label="Operations\n(Primary Activity)"`) {
		t.Errorf("detailed label missing type:\n%s", dot)
	}
	if !strings.Contains(dot, `label="Say \"hi\"\n(External Factor)\nline1\nline2"`) {
		t.Errorf("detailed label missing description:\n%s", dot)
	}
}

func TestFillColor(t *testing.T) {
	tests := []struct {
		name string
		node chain.Node
		want string
	}{
		{"type default", chain.Node{Type: chain.Support}, "#10b981"},
		{"preset", chain.Node{Type: chain.Support, Data: chain.NodeData{Color: "red"}}, "#ef4444"},
		{"short hex", chain.Node{Type: chain.Support, Data: chain.NodeData{Color: "#fff"}}, "#ffffff"},
		{"rgb", chain.Node{Type: chain.Support, Data: chain.NodeData{Color: "rgb(255, 0, 0)"}}, "#ff0000"},
		{"unparseable", chain.Node{Type: chain.External, Data: chain.NodeData{Color: "??"}}, "#f59e0b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FillColor(tt.node); got != tt.want {
				t.Errorf("FillColor = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Error("svg without viewBox should pass through")
	}
}
