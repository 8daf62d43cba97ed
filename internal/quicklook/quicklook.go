// Package quicklook defines the lightweight preview of a runtime value.
//
// A quick look is orthogonal to reflection: it describes a value as a single
// displayable datum (text, a number, a point, an opaque blob) without building
// a mirror tree. Value is a sealed interface; only the types in this package
// implement it.
package quicklook

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Value is a sealed interface over the closed set of preview variants.
type Value interface {
	// Kind returns the variant name used in the JSON encoding.
	Kind() string
	quickLook()
}

// QuickLookable is implemented by values that supply their own preview.
type QuickLookable interface {
	QuickLook() Value
}

// Text is a plain string preview.
type Text string

// Int is a signed integer preview.
type Int int64

// Uint is an unsigned integer preview.
type Uint uint64

// Float is a 32-bit floating point preview.
type Float float32

// Double is a 64-bit floating point preview.
type Double float64

// Bool is a boolean preview.
type Bool bool

// URL is a URL preview, kept as text.
type URL string

// Rectangle is an origin plus size.
type Rectangle struct {
	X, Y, Width, Height float64
}

// Point is a 2D coordinate.
type Point struct {
	X, Y float64
}

// Size is a 2D extent.
type Size struct {
	Width, Height float64
}

// Range is a half-open integer range.
type Range struct {
	Location, Length int64
}

// Image, Sound, Color, BezierPath, AttributedString, View and Sprite wrap a
// host object the frontend knows how to render.
type (
	Image            struct{ Object any }
	Sound            struct{ Object any }
	Color            struct{ Object any }
	BezierPath       struct{ Object any }
	AttributedString struct{ Object any }
	View             struct{ Object any }
	Sprite           struct{ Object any }
)

// Raw is an encoded blob plus a tag naming its encoding.
type Raw struct {
	Data []byte
	Tag  string
}

func (Text) Kind() string             { return "text" }
func (Int) Kind() string              { return "int" }
func (Uint) Kind() string             { return "uint" }
func (Float) Kind() string            { return "float" }
func (Double) Kind() string           { return "double" }
func (Bool) Kind() string             { return "bool" }
func (URL) Kind() string              { return "url" }
func (Rectangle) Kind() string        { return "rectangle" }
func (Point) Kind() string            { return "point" }
func (Size) Kind() string             { return "size" }
func (Range) Kind() string            { return "range" }
func (Image) Kind() string            { return "image" }
func (Sound) Kind() string            { return "sound" }
func (Color) Kind() string            { return "color" }
func (BezierPath) Kind() string       { return "bezier_path" }
func (AttributedString) Kind() string { return "attributed_string" }
func (View) Kind() string             { return "view" }
func (Sprite) Kind() string           { return "sprite" }
func (Raw) Kind() string              { return "raw" }

func (Text) quickLook()             {}
func (Int) quickLook()              {}
func (Uint) quickLook()             {}
func (Float) quickLook()            {}
func (Double) quickLook()           {}
func (Bool) quickLook()             {}
func (URL) quickLook()              {}
func (Rectangle) quickLook()        {}
func (Point) quickLook()            {}
func (Size) quickLook()             {}
func (Range) quickLook()            {}
func (Image) quickLook()            {}
func (Sound) quickLook()            {}
func (Color) quickLook()            {}
func (BezierPath) quickLook()       {}
func (AttributedString) quickLook() {}
func (View) quickLook()             {}
func (Sprite) quickLook()           {}
func (Raw) quickLook()              {}

// envelope is the JSON shape of every preview: {"kind": ..., "value": ...}.
type envelope struct {
	Kind  string `json:"kind"`
	Value any    `json:"value"`
}

// Marshal encodes a preview as JSON.
// Object-wrapping variants encode their host object with %v since the
// object itself is opaque to this package.
func Marshal(v Value) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("nil quick look")
	}
	var payload any
	switch val := v.(type) {
	case Text:
		payload = string(val)
	case URL:
		payload = string(val)
	case Int:
		payload = int64(val)
	case Uint:
		payload = uint64(val)
	case Float:
		payload = float32(val)
	case Double:
		payload = float64(val)
	case Bool:
		payload = bool(val)
	case Rectangle:
		payload = map[string]float64{"x": val.X, "y": val.Y, "width": val.Width, "height": val.Height}
	case Point:
		payload = map[string]float64{"x": val.X, "y": val.Y}
	case Size:
		payload = map[string]float64{"width": val.Width, "height": val.Height}
	case Range:
		payload = map[string]int64{"location": val.Location, "length": val.Length}
	case Raw:
		payload = map[string]string{"data": base64.StdEncoding.EncodeToString(val.Data), "tag": val.Tag}
	case Image:
		payload = fmt.Sprintf("%v", val.Object)
	case Sound:
		payload = fmt.Sprintf("%v", val.Object)
	case Color:
		payload = fmt.Sprintf("%v", val.Object)
	case BezierPath:
		payload = fmt.Sprintf("%v", val.Object)
	case AttributedString:
		payload = fmt.Sprintf("%v", val.Object)
	case View:
		payload = fmt.Sprintf("%v", val.Object)
	case Sprite:
		payload = fmt.Sprintf("%v", val.Object)
	default:
		return nil, fmt.Errorf("unknown quick look type: %T", v)
	}
	return json.Marshal(envelope{Kind: v.Kind(), Value: payload})
}

// String renders a preview for terminal output.
func String(v Value) string {
	switch val := v.(type) {
	case nil:
		return "<none>"
	case Text:
		return fmt.Sprintf("text(%q)", string(val))
	case URL:
		return fmt.Sprintf("url(%s)", string(val))
	case Rectangle:
		return fmt.Sprintf("rectangle(%g, %g, %g, %g)", val.X, val.Y, val.Width, val.Height)
	case Point:
		return fmt.Sprintf("point(%g, %g)", val.X, val.Y)
	case Size:
		return fmt.Sprintf("size(%g, %g)", val.Width, val.Height)
	case Range:
		return fmt.Sprintf("range(%d, %d)", val.Location, val.Length)
	case Raw:
		return fmt.Sprintf("raw(%d bytes, %s)", len(val.Data), val.Tag)
	case Int, Uint, Float, Double, Bool:
		return fmt.Sprintf("%s(%v)", v.Kind(), val)
	default:
		return v.Kind()
	}
}
