package color

import (
	"strings"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/errors"
)

// Default is the pseudo-preset that clears a node's color override.
const Default = "default"

// Preset is a named color offered by the node editor.
type Preset struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Presets lists the named colors in menu order.
var Presets = []Preset{
	{Name: "blue", Hex: "#3b82f6"},
	{Name: "green", Hex: "#10b981"},
	{Name: "amber", Hex: "#f59e0b"},
	{Name: "red", Hex: "#ef4444"},
	{Name: "violet", Hex: "#8b5cf6"},
	{Name: "pink", Hex: "#ec4899"},
	{Name: "slate", Hex: "#64748b"},
	{Name: "white", Hex: "#ffffff"},
	{Name: "black", Hex: "#111827"},
}

var typeDefaults = map[chain.NodeType]string{
	chain.Primary:  "#3b82f6",
	chain.Support:  "#10b981",
	chain.External: "#f59e0b",
	chain.Custom:   "#8b5cf6",
}

// TypeDefault returns the fill color of a node of type t without override.
// Unknown types get the custom default.
func TypeDefault(t chain.NodeType) string {
	if c, ok := typeDefaults[t]; ok {
		return c
	}
	return typeDefaults[chain.Custom]
}

// Lookup returns the hex value of preset name (case-insensitive).
func Lookup(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range Presets {
		if p.Name == name {
			return p.Hex, true
		}
	}
	return "", false
}

// Resolve returns the color a node of type t with override c is painted
// with: the type default for an empty override, the hex value for a preset
// name, and c verbatim otherwise.
func Resolve(t chain.NodeType, c string) string {
	if c == "" || strings.EqualFold(c, Default) {
		return TypeDefault(t)
	}
	if hex, ok := Lookup(c); ok {
		return hex
	}
	return c
}

// Normalize converts editor input into the value stored in node data:
// "" or "default" clear the override, preset names become their hex value,
// anything else is stored as typed. With strict set, strings that do not
// parse as colors are rejected with ErrCodeInvalidColor.
func Normalize(input string, strict bool) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, Default) {
		return "", nil
	}
	if hex, ok := Lookup(input); ok {
		return hex, nil
	}
	if strict && !Valid(input) {
		return "", errors.New(errors.ErrCodeInvalidColor, "invalid color %q (want #RRGGBB, #RGB, rgb(r,g,b) or a preset)", input)
	}
	return input, nil
}

// PresetName returns the preset whose hex equals c, if any.
func PresetName(c string) (string, bool) {
	for _, p := range Presets {
		if strings.EqualFold(p.Hex, c) {
			return p.Name, true
		}
	}
	return "", false
}
