package ogp

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Rasterizer paints documents into PNG images. The parsed fonts are shared
// read-only, so a Rasterizer is safe for concurrent use.
type Rasterizer struct {
	regular *opentype.Font
	bold    *opentype.Font
}

func NewRasterizer(fonts *Fonts) (*Rasterizer, error) {
	if fonts == nil {
		return nil, errors.New("fonts are not loaded")
	}

	regular, err := opentype.Parse(fonts.Regular)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}

	bold, err := opentype.Parse(fonts.Bold)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}

	return &Rasterizer{regular: regular, bold: bold}, nil
}

// Rasterize paints doc and encodes it as PNG.
func (r *Rasterizer) Rasterize(doc *Document) (data []byte, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("failed to rasterize: %v", v)
		}
	}()

	p := &painter{
		r:     r,
		faces: map[faceKey]font.Face{},
	}

	dc := gg.NewContext(doc.Width, doc.Height)
	p.background(dc, doc)

	for _, node := range doc.Nodes {
		err = p.paint(dc, node)
		if err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	err = dc.EncodePNG(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}

	return buf.Bytes(), nil
}

type faceKey struct {
	weight Weight
	size   float64
}

// painter holds the per call state. Font faces are not safe for concurrent
// use, so each call gets its own.
type painter struct {
	r     *Rasterizer
	faces map[faceKey]font.Face
}

func (p *painter) face(weight Weight, size float64) (font.Face, error) {
	key := faceKey{weight: weight, size: size}
	if face, ok := p.faces[key]; ok {
		return face, nil
	}

	src := p.r.regular
	if weight >= WeightBold {
		src = p.r.bold
	}

	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face at %.0fpx: %w", size, err)
	}

	p.faces[key] = face
	return face, nil
}

func (p *painter) background(dc *gg.Context, doc *Document) {
	bg := doc.Background
	gradient := gg.NewLinearGradient(bg.X0, bg.Y0, bg.X1, bg.Y1)
	for _, stop := range bg.Stops {
		gradient.AddColorStop(stop.Offset, stop.Color)
	}

	dc.SetFillStyle(gradient)
	dc.DrawRectangle(0, 0, float64(doc.Width), float64(doc.Height))
	dc.Fill()
}

func (p *painter) paint(dc *gg.Context, node Node) error {
	switch n := node.(type) {
	case Rect:
		p.rect(dc, n)
	case Ellipse:
		dc.DrawEllipse(n.CX, n.CY, n.RX, n.RY)
		dc.SetColor(n.Fill)
		dc.Fill()
	case Text:
		return p.text(dc, n)
	case Group:
		return p.group(dc, n)
	case Column:
		return p.column(dc, n)
	default:
		return fmt.Errorf("unsupported node %T", node)
	}

	return nil
}

func (p *painter) rect(dc *gg.Context, n Rect) {
	dc.Push()
	defer dc.Pop()

	if n.Rotate != 0 {
		dc.RotateAbout(gg.Radians(n.Rotate), n.X+n.Width/2, n.Y+n.Height/2)
	}

	if n.Fill.A > 0 {
		roundedRect(dc, n.Box, n.Radius)
		dc.SetColor(n.Fill)
		dc.Fill()
	}

	if n.StrokeWidth > 0 && n.Stroke.A > 0 {
		// CSS borders are drawn inside the box.
		inset := n.StrokeWidth / 2
		roundedRect(dc, Box{
			X:      n.X + inset,
			Y:      n.Y + inset,
			Width:  n.Width - n.StrokeWidth,
			Height: n.Height - n.StrokeWidth,
		}, n.Radius)
		dc.SetColor(n.Stroke)
		dc.SetLineWidth(n.StrokeWidth)
		dc.Stroke()
	}
}

func roundedRect(dc *gg.Context, b Box, radius float64) {
	if radius > 0 {
		dc.DrawRoundedRectangle(b.X, b.Y, b.Width, b.Height, radius)
	} else {
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	}
}

func (p *painter) text(dc *gg.Context, t Text) error {
	face, err := p.face(t.Weight, t.Size)
	if err != nil {
		return err
	}

	lh := lineHeight(face, t.Size, t.LineHeight)
	x := t.X - t.AnchorX*measure(face, t.Content)
	top := t.Y - t.AnchorY*lh

	dc.SetFontFace(face)
	dc.SetColor(t.Color)
	dc.DrawString(t.Content, x, baseline(face, top, lh))
	return nil
}

func (p *painter) group(dc *gg.Context, g Group) error {
	layer := gg.NewContext(dc.Width(), dc.Height())
	for _, child := range g.Children {
		err := p.paint(layer, child)
		if err != nil {
			return err
		}
	}

	dst, ok := dc.Image().(draw.Image)
	if !ok {
		return errors.New("canvas is not drawable")
	}

	clip := image.Rect(
		int(math.Floor(g.Clip.X)),
		int(math.Floor(g.Clip.Y)),
		int(math.Ceil(g.Clip.X+g.Clip.Width)),
		int(math.Ceil(g.Clip.Y+g.Clip.Height)),
	).Intersect(dst.Bounds())

	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(g.Opacity * 0xff))})
	draw.DrawMask(dst, clip, layer.Image(), clip.Min, mask, image.Point{}, draw.Over)
	return nil
}

// column lays out blocks top to bottom, then centres the stack inside the box.
func (p *painter) column(dc *gg.Context, c Column) error {
	type item struct {
		height float64
		margin float64
		draw   func(top float64)
	}

	var (
		items []item
		total float64
	)

	for _, block := range c.Blocks {
		var it item

		switch b := block.(type) {
		case Badge:
			face, err := p.face(b.Weight, b.Size)
			if err != nil {
				return err
			}

			lh := lineHeight(face, b.Size, 0)
			width := measureSpaced(face, b.Content, b.LetterSpacing) + 2*b.PaddingX
			it = item{
				height: lh + 2*b.PaddingY,
				margin: b.MarginBottom,
				draw: func(top float64) {
					left := c.Box.X + (c.Box.Width-width)/2
					dc.DrawRoundedRectangle(left, top, width, lh+2*b.PaddingY, b.Radius)
					dc.SetColor(b.Background)
					dc.Fill()

					dc.SetFontFace(face)
					dc.SetColor(b.Color)
					drawSpaced(dc, face, b.Content, left+b.PaddingX, baseline(face, top+b.PaddingY, lh), b.LetterSpacing)
				},
			}
		case Heading:
			face, err := p.face(b.Weight, b.Size)
			if err != nil {
				return err
			}

			maxWidth := c.Box.Width
			if b.MaxWidth > 0 && b.MaxWidth < maxWidth {
				maxWidth = b.MaxWidth
			}

			lines := wrapText(face, b.Content, maxWidth)
			lh := b.Size * b.LineHeight
			it = item{
				height: float64(len(lines)) * lh,
				margin: b.MarginBottom,
				draw: func(top float64) {
					dc.SetFontFace(face)
					dc.SetColor(b.Color)
					for i, line := range lines {
						left := c.Box.X + (c.Box.Width-measure(face, line))/2
						dc.DrawString(line, left, baseline(face, top+float64(i)*lh, lh))
					}
				},
			}
		case Rule:
			width := c.Box.Width * b.Ratio
			it = item{
				height: b.Thickness,
				margin: b.MarginBottom,
				draw: func(top float64) {
					dc.DrawRectangle(c.Box.X+(c.Box.Width-width)/2, top, width, b.Thickness)
					dc.SetColor(b.Color)
					dc.Fill()
				},
			}
		default:
			return fmt.Errorf("unsupported block %T", block)
		}

		items = append(items, it)
		total += it.height + it.margin
	}

	top := c.Box.Y + (c.Box.Height-total)/2
	for _, it := range items {
		it.draw(top)
		top += it.height + it.margin
	}

	return nil
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func measure(face font.Face, s string) float64 {
	return toFloat(font.MeasureString(face, s))
}

func measureSpaced(face font.Face, s string, spacing float64) float64 {
	var width float64
	for _, r := range s {
		width += measure(face, string(r)) + spacing
	}
	return width
}

func drawSpaced(dc *gg.Context, face font.Face, s string, x, y, spacing float64) {
	if spacing == 0 {
		dc.DrawString(s, x, y)
		return
	}

	for _, r := range s {
		dc.DrawString(string(r), x, y)
		x += measure(face, string(r)) + spacing
	}
}

// lineHeight returns multiple×size, or the natural height of the face when
// multiple is zero.
func lineHeight(face font.Face, size, multiple float64) float64 {
	if multiple > 0 {
		return size * multiple
	}

	return toFloat(face.Metrics().Height)
}

// baseline centres the glyph box of face vertically in a line box of height
// lh starting at top, splitting the leading like CSS does.
func baseline(face font.Face, top, lh float64) float64 {
	m := face.Metrics()
	ascent, descent := toFloat(m.Ascent), toFloat(m.Descent)
	return top + (lh-(ascent+descent))/2 + ascent
}

// wrapText breaks s into lines no wider than maxWidth. Explicit newlines are
// kept. Lines break at the last space when there is one, otherwise between
// any two characters, as Japanese titles rarely contain spaces.
func wrapText(face font.Face, s string, maxWidth float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		lines = append(lines, wrapLine(face, paragraph, maxWidth)...)
	}
	return lines
}

func wrapLine(face font.Face, s string, maxWidth float64) []string {
	var (
		runes     = []rune(s)
		lines     []string
		start     = 0
		lastSpace = -1
	)

	for i := 0; i < len(runes); i++ {
		if runes[i] == ' ' {
			lastSpace = i
		}

		if i == start || measure(face, string(runes[start:i+1])) <= maxWidth {
			continue
		}

		cut := i
		if lastSpace > start {
			cut = lastSpace
		}

		lines = append(lines, strings.TrimRight(string(runes[start:cut]), " "))

		start = cut
		for start < len(runes) && runes[start] == ' ' {
			start++
		}
		lastSpace = -1
		i = start - 1
	}

	if start < len(runes) || len(lines) == 0 {
		lines = append(lines, string(runes[start:]))
	}

	return lines
}
