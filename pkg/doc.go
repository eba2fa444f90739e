// Package pkg provides the core libraries of valuechain, an editor for
// value-chain diagrams.
//
// # Overview
//
// A value chain is a set of typed activities (primary, support, external,
// custom) placed freely on a plane and joined by directed edges. The pkg
// directory is organized into four areas:
//
//  1. Model - [chain] (graph), [connect] (directional auto-connect), [color]
//  2. Editing - [editor] (history, hooks), [edit] (node edit sessions)
//  3. Persistence - [io] (JSON document format), [store] (memory, file, Redis, MongoDB)
//  4. Surfaces - [render] and [render/nodelink] (Graphviz), [api] (HTTP)
//
// Cross-cutting packages are [errors] (coded errors with HTTP mapping and
// input validation) and [observability] (hook interfaces for logging and
// metrics).
//
// # Architecture
//
// All state flows through an [editor.Editor], which owns the current
// immutable [chain.Graph]:
//
//	JSON document / store snapshot
//	         ↓
//	    [io] package (decode, drop dangling edges)
//	         ↓
//	    [editor] package (apply operations, undo/redo)
//	         ↓
//	    [io] / [store] / [render] (export, save, draw)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/valuechain/pkg/chain"
//	    "github.com/matzehuels/valuechain/pkg/connect"
//	    "github.com/matzehuels/valuechain/pkg/editor"
//	)
//
//	ctx := context.Background()
//	ed := editor.New(chain.New())
//
//	inbound, _ := ed.AddNode(ctx, chain.Primary, &chain.Position{X: 100, Y: 100}, nil)
//	_, _ = ed.AddNode(ctx, chain.Primary, &chain.Position{X: 300, Y: 100}, nil)
//
//	// Link inbound to whatever lies nearest to its right.
//	_, _, _ = ed.Connect(ctx, inbound, connect.Right, false)
//
//	_ = ed.Export(os.Stdout)
//
// # Testing
//
//	go test ./pkg/...                  # All tests
//	VALUECHAIN_TEST_REDIS=localhost:6379 go test ./pkg/store   # Include live Redis
//
// [chain]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/chain
// [connect]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/connect
// [color]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/color
// [editor]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/editor
// [edit]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/edit
// [io]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/io
// [store]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/store
// [render]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/render/nodelink
// [api]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/api
// [errors]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/observability
// [editor.Editor]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/editor#Editor
// [chain.Graph]: https://pkg.go.dev/github.com/matzehuels/valuechain/pkg/chain#Graph
package pkg
