// Package color parses toolkit color strings and implements the WCAG 2.1
// luminance and contrast math.
package color

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// RGB is an 8-bit sRGB color.
type RGB struct {
	R, G, B uint8
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) toColorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// ErrNoColor is returned for empty and "transparent" color strings.
var ErrNoColor = errors.New("no color")

var named = map[string]RGB{
	"white":            {255, 255, 255},
	"black":            {0, 0, 0},
	"gray":             {190, 190, 190},
	"grey":             {190, 190, 190},
	"red":              {255, 0, 0},
	"green":            {0, 255, 0},
	"blue":             {0, 0, 255},
	"yellow":           {255, 255, 0},
	"systembuttonface": {240, 240, 240},
	"systembuttontext": {0, 0, 0},
	"systemwindow":     {255, 255, 255},
	"systemwindowtext": {0, 0, 0},
}

// Parse accepts #RGB, #RRGGBB, Tk's 12-bit #RRRGGGBBB and 16-bit
// #RRRRGGGGBBBB forms, and a small set of named colors.
func Parse(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "transparent") {
		return RGB{}, ErrNoColor
	}
	if c, ok := named[strings.ToLower(s)]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return RGB{}, fmt.Errorf("unrecognized color %q", s)
	}

	switch len(s) - 1 {
	case 3, 6:
		c, err := colorful.Hex(s)
		if err != nil {
			return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return fromColorful(c), nil
	case 9:
		return parseWide(s[1:], 3, 4)
	case 12:
		return parseWide(s[1:], 4, 8)
	}
	return RGB{}, fmt.Errorf("invalid color %q", s)
}

func parseWide(digits string, width int, shift uint) (RGB, error) {
	var ch [3]uint8
	for i := range ch {
		v, err := strconv.ParseUint(digits[i*width:(i+1)*width], 16, 32)
		if err != nil {
			return RGB{}, fmt.Errorf("invalid color #%s: %w", digits, err)
		}
		ch[i] = uint8(v >> shift)
	}
	return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

func linearize(c uint8) float64 {
	v := float64(c) / 255
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// Luminance returns the WCAG 2.1 relative luminance of c.
func Luminance(c RGB) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

// ContrastRatio returns the WCAG contrast ratio between a and b, in [1, 21].
func ContrastRatio(a, b RGB) float64 {
	la, lb := Luminance(a), Luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// Suggest returns a foreground close to fg that reaches the required ratio
// against bg, blending in Lab space toward black or white. The second result
// is false when even pure black or white cannot reach the ratio.
func Suggest(fg, bg RGB, required float64) (RGB, bool) {
	if ContrastRatio(fg, bg) >= required {
		return fg, true
	}

	target := RGB{}
	if ContrastRatio(RGB{255, 255, 255}, bg) > ContrastRatio(target, bg) {
		target = RGB{255, 255, 255}
	}
	if ContrastRatio(target, bg) < required {
		return target, false
	}

	from, to := fg.toColorful(), target.toColorful()
	for step := 1; step <= 20; step++ {
		c := fromColorful(from.BlendLab(to, float64(step)/20))
		if ContrastRatio(c, bg) >= required {
			return c, true
		}
	}
	return target, true
}

// Mode is the toolkit appearance mode used to pick from light/dark pairs.
type Mode int

const (
	Light Mode = iota
	Dark
)

func (m Mode) String() string {
	if m == Dark {
		return "dark"
	}
	return "light"
}

// ParseMode accepts "light", "dark" and the toolkit's "system" (treated as light).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "light", "system":
		return Light, nil
	case "dark":
		return Dark, nil
	}
	return Light, fmt.Errorf("unknown appearance mode %q", s)
}

// Value is a color as a toolkit reports it: either one color, or a
// light/dark pair. A single color has Dark empty.
type Value struct {
	Light string
	Dark  string
}

// Single wraps one color.
func Single(c string) Value {
	return Value{Light: c}
}

// IsPair reports whether v carries distinct light and dark members.
func (v Value) IsPair() bool {
	return v.Dark != ""
}

// Resolve picks the member of v for mode m.
func Resolve(v Value, m Mode) string {
	if m == Dark && v.Dark != "" {
		return v.Dark
	}
	return v.Light
}

// UnmarshalJSON accepts "#fff", ["#fff", "#000"] or {"light": "#fff", "dark": "#000"}.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Single(s)
		return nil
	}
	var pair []string
	if err := json.Unmarshal(data, &pair); err == nil {
		return v.fromPair(pair)
	}
	var obj struct {
		Light string `json:"light"`
		Dark  string `json:"dark"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("color must be a string, a [light, dark] pair or an object: %w", err)
	}
	*v = Value{Light: obj.Light, Dark: obj.Dark}
	return nil
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*v = Single(node.Value)
		return nil
	case yaml.SequenceNode:
		var pair []string
		if err := node.Decode(&pair); err != nil {
			return err
		}
		return v.fromPair(pair)
	case yaml.MappingNode:
		var obj struct {
			Light string `yaml:"light"`
			Dark  string `yaml:"dark"`
		}
		if err := node.Decode(&obj); err != nil {
			return err
		}
		*v = Value{Light: obj.Light, Dark: obj.Dark}
		return nil
	}
	return fmt.Errorf("line %d: unsupported color value", node.Line)
}

func (v *Value) fromPair(pair []string) error {
	switch len(pair) {
	case 1:
		*v = Single(pair[0])
	case 2:
		*v = Value{Light: pair[0], Dark: pair[1]}
	default:
		return fmt.Errorf("color pair must have 1 or 2 members, got %d", len(pair))
	}
	return nil
}

// MarshalJSON writes a single color as a string and a pair as [light, dark].
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsPair() {
		return json.Marshal([]string{v.Light, v.Dark})
	}
	return json.Marshal(v.Light)
}
