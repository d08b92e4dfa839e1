package tooltip

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Point is a position in viewport-local pixels.
type Point struct {
	X float64
	Y float64
}

func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Size is a rendered footprint in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Length is a style length: either a pixel value or a literal CSS length
// expression such as "auto" or "2px 4px" that is passed through unchanged.
type Length struct {
	px      float64
	literal string
	isPx    bool
}

// Auto is the "auto" sentinel length.
var Auto = Literal("auto")

func Px(v float64) Length {
	return Length{px: v, isPx: true}
}

func Literal(s string) Length {
	return Length{literal: s}
}

// ParseLength converts a config value into a Length. Numbers and numeric
// strings become pixel lengths, any other string is kept literally.
func ParseLength(v any) (Length, error) {
	switch val := v.(type) {
	case Length:
		return val, nil
	case int:
		return Px(float64(val)), nil
	case int64:
		return Px(float64(val)), nil
	case float32:
		return Px(float64(val)), nil
	case float64:
		return Px(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Length{}, fmt.Errorf("parse length %q: %w", val, err)
		}

		return Px(f), nil
	case string:
		trimmed := strings.TrimSpace(val)
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return Px(f), nil
		}

		return Literal(val), nil
	default:
		return Length{}, fmt.Errorf("unsupported length value of type %T", v)
	}
}

// IsZero reports whether the length was never set.
func (l Length) IsZero() bool {
	return !l.isPx && l.literal == ""
}

func (l Length) IsAuto() bool {
	return !l.isPx && l.literal == "auto"
}

// Pixels returns the pixel value when the length is a pixel length.
func (l Length) Pixels() (float64, bool) {
	return l.px, l.isPx
}

func (l Length) String() string {
	if l.isPx {
		return strconv.FormatFloat(l.px, 'f', -1, 64) + "px"
	}

	return l.literal
}

func (l Length) MarshalJSON() ([]byte, error) {
	if l.isPx {
		return json.Marshal(l.px)
	}

	return json.Marshal(l.literal)
}

func (l *Length) UnmarshalJSON(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	if v == nil {
		*l = Length{}

		return nil
	}
	parsed, err := ParseLength(v)
	if err != nil {
		return err
	}
	*l = parsed

	return nil
}

// UnmarshalYAML accepts the same scalar forms as UnmarshalJSON.
func (l *Length) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}
	if v == nil {
		*l = Length{}

		return nil
	}
	parsed, err := ParseLength(v)
	if err != nil {
		return err
	}
	*l = parsed

	return nil
}

// Placement holds the four edge offsets of the overlay. On each axis exactly
// one side carries a pixel offset and the other one is Auto.
type Placement struct {
	Left   Length
	Right  Length
	Top    Length
	Bottom Length
}

// Place clamps an overlay anchored at anchor inside the viewport. Each axis is
// handled independently: overlays that would overflow the far edge are
// anchored against it instead of the near edge.
func Place(anchor Point, overlay, viewport Size) Placement {
	var p Placement
	p.Left, p.Right = placeAxis(anchor.X, overlay.Width, viewport.Width)
	p.Top, p.Bottom = placeAxis(anchor.Y, overlay.Height, viewport.Height)

	return p
}

func placeAxis(anchor, size, extent float64) (near, far Length) {
	if anchor+size > extent {
		return Auto, Px(extent - anchor)
	}

	return Px(anchor), Auto
}
