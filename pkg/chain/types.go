package chain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NodeType is the kind of a value-chain node.
type NodeType string

const (
	// Primary is a primary activity (inbound logistics, operations, ...).
	Primary NodeType = "primary"
	// Support is a support activity (procurement, HR, infrastructure, ...).
	Support NodeType = "support"
	// External is a factor outside the company (suppliers, customers, ...).
	External NodeType = "external"
	// Custom is a free-form node that exposes every connector direction.
	Custom NodeType = "custom"
)

// NodeTypes lists every node type in toolbar order.
var NodeTypes = []NodeType{Primary, Support, External, Custom}

var displayNames = map[NodeType]string{
	Primary:  "Primary Activity",
	Support:  "Support Activity",
	External: "External Factor",
	Custom:   "Custom Node",
}

// Valid reports whether t is one of the four known node types.
func (t NodeType) Valid() bool {
	_, ok := displayNames[t]
	return ok
}

// DisplayName returns the human-readable name used as the default label.
func (t NodeType) DisplayName() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return displayNames[Custom]
}

// ParseNodeType parses s case-insensitively.
// The second return value is false for unknown types.
func ParseNodeType(s string) (NodeType, bool) {
	t := NodeType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Position is a point on the editor plane. Coordinates are unbounded and
// y grows downward.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the user-editable content of a node.
// An empty Color means "use the type default".
type NodeData struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// Node is a vertex of the value chain.
type Node struct {
	ID       string
	Type     NodeType
	Position Position
	Data     NodeData
}

// EdgeType selects how an edge attaches to its endpoints.
type EdgeType string

// Floating edges attach to the nearest side of each node instead of a
// fixed handle.
const Floating EdgeType = "floating"

// Edge is a directed connection from Source to Target.
type Edge struct {
	ID     string
	Source string
	Target string
	Type   EdgeType
}

// EdgeID returns the deterministic id of the edge source→target.
// Two edges with the same endpoints always share an id. Because node ids
// may contain dashes, two different edges can also map to one id; a graph
// keeps whichever came first and rejects the other.
func EdgeID(source, target string) string {
	return fmt.Sprintf("e-%s-%s", source, target)
}

// NewNodeID returns a fresh node id prefixed with the node type.
func NewNodeID(t NodeType) string {
	return fmt.Sprintf("%s-%s", t, uuid.NewString())
}

// Patch is a partial update of [NodeData]. Nil fields are left alone; a
// non-nil pointer to the empty string clears Description or Color.
type Patch struct {
	Label       *string
	Description *string
	Color       *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Label == nil && p.Description == nil && p.Color == nil
}

func (p Patch) apply(d NodeData) NodeData {
	if p.Label != nil {
		d.Label = *p.Label
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Color != nil {
		d.Color = *p.Color
	}
	return d
}

// Str returns a pointer to s, for building a [Patch] inline.
func Str(s string) *string { return &s }
