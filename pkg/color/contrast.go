// Package color resolves node colors and picks readable label colors.
//
// Node colors arrive as user input: absent (use the type default), a preset
// name ("blue", "amber", ...), or an arbitrary CSS-like string. [Resolve]
// turns all three into the string the renderer paints with, and [IsLight]
// decides whether a label on that background should be dark or light.
//
// Parsing accepts "#RRGGBB", "#RGB" and "rgb(r, g, b)". Anything else is
// treated as light so unset or exotic colors render with dark text.
package color

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// lightThreshold is the perceived brightness above which a color counts as
// light, on the 0–255 channel scale.
const lightThreshold = 128

// Text colors returned by [TextColor].
const (
	DarkText  = "#000000"
	LightText = "#ffffff"
)

var rgbRe = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)

// Parse decodes s into a color. The second return value is false when s is
// not a hex or rgb() color. rgb() channels above 255 are clamped.
func Parse(s string) (colorful.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "#") {
		if (len(s) != 4 && len(s) != 7) || strings.Trim(s[1:], "0123456789abcdef") != "" {
			return colorful.Color{}, false
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, false
		}
		return c, true
	}
	m := rgbRe.FindStringSubmatch(s)
	if m == nil {
		return colorful.Color{}, false
	}
	var ch [3]float64
	for i := range ch {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return colorful.Color{}, false
		}
		ch[i] = float64(min(v, 255)) / 255.0
	}
	return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, true
}

// Valid reports whether s parses as a color.
func Valid(s string) bool {
	_, ok := Parse(s)
	return ok
}

// Brightness returns the perceived brightness 0.299R + 0.587G + 0.114B of s
// on the 0–255 scale. The second return value is false if s does not parse.
func Brightness(s string) (float64, bool) {
	c, ok := Parse(s)
	if !ok {
		return 0, false
	}
	r, g, b := c.RGB255()
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b), true
}

// IsLight reports whether s is a light background. Unparseable input is
// light.
func IsLight(s string) bool {
	b, ok := Brightness(s)
	if !ok {
		return true
	}
	return b > lightThreshold
}

// TextColor returns the label color that reads best on background bg.
func TextColor(bg string) string {
	if IsLight(bg) {
		return DarkText
	}
	return LightText
}
