package color

import (
	"testing"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/errors"
)

func TestIsLight(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"#000000", false},
		{"#FFFFFF", true},
		{"#ffffff", true},
		{"#fff", true},
		{"#000", false},
		{"#808080", false}, // exactly 128 is not light
		{"#818181", true},
		{"#3b82f6", false},
		{"#f59e0b", true},
		{"#8b5cf6", false},
		{"rgb(10,10,10)", false},
		{"rgb( 250 , 250 , 250 )", true},
		{"RGB(0, 0, 0)", false},
		{"rgb(300, 0, 0)", false},
		{"", true},
		{"not-a-color", true},
		{"#12345g", true},
		{"#1234567", true},
		{"red", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsLight(tt.in); got != tt.want {
				t.Errorf("IsLight(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextColor(t *testing.T) {
	if got := TextColor("#111827"); got != LightText {
		t.Errorf("TextColor(dark) = %s, want %s", got, LightText)
	}
	if got := TextColor("#ffffff"); got != DarkText {
		t.Errorf("TextColor(light) = %s, want %s", got, DarkText)
	}
	if got := TextColor("garbage"); got != DarkText {
		t.Errorf("TextColor(garbage) = %s, want %s", got, DarkText)
	}
}

func TestBrightness(t *testing.T) {
	b, ok := Brightness("rgb(255, 0, 0)")
	if !ok {
		t.Fatal("rgb(255, 0, 0) should parse")
	}
	if b < 76.2 || b > 76.3 {
		t.Errorf("Brightness(red) = %v, want 76.245", b)
	}
	if _, ok := Brightness("hsl(0, 0%, 0%)"); ok {
		t.Error("hsl() should not parse")
	}
}

func TestValid(t *testing.T) {
	for _, s := range []string{"#abc", "#AABBCC", "rgb(1,2,3)", " #abc "} {
		if !Valid(s) {
			t.Errorf("Valid(%q) = false", s)
		}
	}
	for _, s := range []string{"", "#ab", "abc", "rgb(1,2)", "#gggggg"} {
		if Valid(s) {
			t.Errorf("Valid(%q) = true", s)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		typ   chain.NodeType
		color string
		want  string
	}{
		{"primary default", chain.Primary, "", "#3b82f6"},
		{"support default", chain.Support, "", "#10b981"},
		{"external default", chain.External, "", "#f59e0b"},
		{"custom default", chain.Custom, "", "#8b5cf6"},
		{"unknown type", chain.NodeType("bogus"), "", "#8b5cf6"},
		{"default keyword", chain.Support, "default", "#10b981"},
		{"preset", chain.Primary, "Red", "#ef4444"},
		{"hex override", chain.Primary, "#123456", "#123456"},
		{"free-form kept", chain.Primary, "papayawhip", "papayawhip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.typ, tt.color); got != tt.want {
				t.Errorf("Resolve(%s, %q) = %q, want %q", tt.typ, tt.color, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		strict  bool
		want    string
		wantErr bool
	}{
		{"", false, "", false},
		{"default", false, "", false},
		{" DEFAULT ", true, "", false},
		{"amber", false, "#f59e0b", false},
		{"#abcdef", true, "#abcdef", false},
		{"rgb(1, 2, 3)", true, "rgb(1, 2, 3)", false},
		{"papayawhip", false, "papayawhip", false},
		{"papayawhip", true, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in, tt.strict)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q, %v) error = %v, wantErr %v", tt.in, tt.strict, err, tt.wantErr)
			}
			if err != nil {
				if code := errors.GetCode(err); code != errors.ErrCodeInvalidColor {
					t.Errorf("code = %s, want %s", code, errors.ErrCodeInvalidColor)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Presets {
		if seen[p.Name] {
			t.Errorf("duplicate preset %q", p.Name)
		}
		seen[p.Name] = true
		if !Valid(p.Hex) {
			t.Errorf("preset %q has invalid hex %q", p.Name, p.Hex)
		}
		if name, ok := PresetName(p.Hex); !ok || name != p.Name {
			t.Errorf("PresetName(%q) = %q, %v", p.Hex, name, ok)
		}
	}
	if _, ok := Lookup("default"); ok {
		t.Error("default must not be a preset")
	}
}
