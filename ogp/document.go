package ogp

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Document is a resolution independent description of an OGP image. Nodes
// are painted in order. Text inside a [Column] is laid out by the
// [Rasterizer] because it needs font metrics.
type Document struct {
	Width      int
	Height     int
	Background LinearGradient
	Nodes      []Node
}

type Weight int

const (
	WeightRegular Weight = 400
	WeightBold    Weight = 700
)

type ColorStop struct {
	Offset float64
	Color  color.NRGBA
}

type LinearGradient struct {
	X0, Y0 float64
	X1, Y1 float64
	Stops  []ColorStop
}

// Box is an axis aligned rectangle.
type Box struct {
	X, Y          float64
	Width, Height float64
}

type Node interface {
	isNode()
}

// Rect is a filled and/or stroked rectangle. Rotate is in degrees, clockwise
// around the rectangle centre.
type Rect struct {
	Box
	Radius      float64
	Rotate      float64
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
}

type Ellipse struct {
	CX, CY float64
	RX, RY float64
	Fill   color.NRGBA
}

// Text is a single line of text whose box is placed relative to (X, Y):
// AnchorX 0 puts the left edge on X, 1 the right edge. AnchorY does the same
// for the top and bottom edges.
type Text struct {
	Content    string
	X, Y       float64
	AnchorX    float64
	AnchorY    float64
	Size       float64
	Weight     Weight
	Color      color.NRGBA
	LineHeight float64
}

// Group paints its children on a separate layer which is then composited
// with Opacity, clipped to Clip.
type Group struct {
	Opacity  float64
	Clip     Box
	Children []Node
}

// Column stacks blocks vertically, centred on both axes inside Box.
type Column struct {
	Box    Box
	Blocks []Block
}

func (Rect) isNode()    {}
func (Ellipse) isNode() {}
func (Text) isNode()    {}
func (Group) isNode()   {}
func (Column) isNode()  {}

type Block interface {
	isBlock()
}

// Badge is a single line of text on a rounded background.
type Badge struct {
	Content       string
	Size          float64
	Weight        Weight
	Color         color.NRGBA
	Background    color.NRGBA
	PaddingX      float64
	PaddingY      float64
	Radius        float64
	LetterSpacing float64
	MarginBottom  float64
}

// Heading is centred text wrapped to MaxWidth. LineHeight is a multiple of
// Size.
type Heading struct {
	Content      string
	Size         float64
	Weight       Weight
	Color        color.NRGBA
	LineHeight   float64
	MaxWidth     float64
	MarginBottom float64
}

// Rule is a horizontal line spanning Ratio of the column width.
type Rule struct {
	Ratio        float64
	Thickness    float64
	Color        color.NRGBA
	MarginBottom float64
}

func (Badge) isBlock()   {}
func (Heading) isBlock() {}
func (Rule) isBlock()    {}

// hexColor parses #RRGGBB. It panics on malformed input and is only used
// with constants.
func hexColor(s string) color.NRGBA {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil || len(s) != 7 {
		panic(fmt.Sprintf("invalid color %q", s))
	}

	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// rgba mirrors the CSS rgba() notation.
func rgba(r, g, b uint8, alpha float64) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha * 0xff))}
}

// cssLinearGradient returns the gradient line CSS uses for
// linear-gradient(<angle>deg, ...) on a width×height box.
func cssLinearGradient(angle float64, width, height float64, stops ...ColorStop) LinearGradient {
	rad := angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	half := (math.Abs(width*dx) + math.Abs(height*dy)) / 2
	cx, cy := width/2, height/2

	return LinearGradient{
		X0:    cx - dx*half,
		Y0:    cy - dy*half,
		X1:    cx + dx*half,
		Y1:    cy + dy*half,
		Stops: stops,
	}
}
