package ogp

import (
	"net/url"
	"strings"
	"unicode/utf16"

	"go.tabichina.jp/site/core"
	"go.tabichina.jp/site/log"
)

const (
	Width  = 1200
	Height = 630

	DefaultTitle = "Alipayの使い方をわかりやすく解説"
	DefaultHost  = "tabichina.jp"

	badgeText = "ALIPAY USAGE GUIDE"
	tagline   = "Alipayの使い方ガイド"

	titleBreakpoint = 30
	titleSizeShort  = 52
	titleSizeLong   = 44
)

var (
	primaryColor = hexColor("#D32F2F")
	darkColor    = hexColor("#B71C1C")
	white        = hexColor("#FFFFFF")
)

// TemplateProps is the input of [Render].
type TemplateProps struct {
	PageTitle       string
	PageDescription string
	SiteURL         string
	PageType        core.PageType
	IsHomePage      bool
}

// TitleFontSize returns the title size in pixels. Length is counted in
// UTF-16 code units, which equals the character count for CJK text.
func TitleFontSize(title string) float64 {
	if len(utf16.Encode([]rune(title))) > titleBreakpoint {
		return titleSizeLong
	}

	return titleSizeShort
}

// DisplayHost returns the host name shown in the corner of the image, or
// [DefaultHost] if siteURL is not an absolute URL.
func DisplayHost(siteURL string) string {
	if strings.TrimSpace(siteURL) == "" {
		return DefaultHost
	}

	u, err := url.Parse(siteURL)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		log.S().Named("template").Warnf("invalid site URL %q, using %s", siteURL, DefaultHost)
		return DefaultHost
	}

	return strings.ToLower(u.Hostname())
}

// Render builds the OGP document for props. Only the title, the host and the
// tagline depend on the input.
func Render(props TemplateProps) *Document {
	title := props.PageTitle
	if title == "" {
		title = DefaultTitle
	}

	blocks := []Block{
		Badge{
			Content:       badgeText,
			Size:          18,
			Weight:        WeightBold,
			Color:         primaryColor,
			Background:    white,
			PaddingX:      20,
			PaddingY:      6,
			Radius:        8,
			LetterSpacing: 0.5,
			MarginBottom:  30,
		},
		Heading{
			Content:      title,
			Size:         TitleFontSize(title),
			Weight:       WeightBold,
			Color:        white,
			LineHeight:   1.3,
			MaxWidth:     900,
			MarginBottom: 40,
		},
		Rule{
			Ratio:        0.6,
			Thickness:    2,
			Color:        rgba(255, 255, 255, 0.4),
			MarginBottom: 40,
		},
	}

	if !props.IsHomePage {
		blocks = append(blocks, Heading{
			Content:    tagline,
			Size:       36,
			Weight:     WeightBold,
			Color:      white,
			LineHeight: 1.3,
		})
	}

	nodes := []Node{
		// Phone, QR code, coin and card in the top right corner.
		Group{
			Opacity: 0.1,
			Clip:    Box{X: 800, Y: 0, Width: 400, Height: 400},
			Children: []Node{
				Rect{Box: Box{X: 980, Y: 50, Width: 120, Height: 200}, Radius: 15, Fill: white},
				Rect{Box: Box{X: 990, Y: 90, Width: 80, Height: 80}, Radius: 8, Fill: white},
				Ellipse{CX: 1100, CY: 250, RX: 50, RY: 50, Fill: white},
				Rect{Box: Box{X: 970, Y: 250, Width: 150, Height: 30}, Radius: 5, Rotate: -15, Fill: white},
			},
		},
		// Logo circles and payment flow line in the bottom left corner.
		Group{
			Opacity: 0.1,
			Clip:    Box{X: 0, Y: 280, Width: 350, Height: 350},
			Children: []Node{
				Ellipse{CX: 110, CY: 490, RX: 90, RY: 90, Fill: white},
				Ellipse{CX: 170, CY: 430, RX: 50, RY: 50, Fill: white},
				Rect{Box: Box{X: 150, Y: 446, Width: 120, Height: 4}, Rotate: 30, Fill: white},
			},
		},
		Rect{Box: Box{X: 0, Y: 0, Width: Width, Height: 4}, Fill: rgba(255, 255, 255, 0.3)},
		Rect{Box: Box{X: 0, Y: Height - 4, Width: Width, Height: 4}, Fill: rgba(255, 255, 255, 0.3)},
		Text{Content: "A", X: Width - 40, Y: 40, AnchorX: 1, Size: 180, Weight: WeightBold, Color: rgba(255, 255, 255, 0.08)},
		Text{Content: "¥", X: 100, Y: Height - 40, AnchorY: 1, Size: 140, Weight: WeightBold, Color: rgba(255, 255, 255, 0.08)},
		Rect{Box: Box{X: 40, Y: 40, Width: Width - 80, Height: Height - 80}, Stroke: rgba(255, 255, 255, 0.2), StrokeWidth: 1},
		// Inside the 1px frame with 40px/60px padding.
		Column{
			Box:    Box{X: 101, Y: 81, Width: Width - 202, Height: Height - 162},
			Blocks: blocks,
		},
		Text{
			Content: DisplayHost(props.SiteURL),
			X:       Width - 24,
			Y:       Height - 16,
			AnchorX: 1,
			AnchorY: 1,
			Size:    14,
			Weight:  WeightRegular,
			Color:   rgba(255, 255, 255, 0.8),
		},
	}

	return &Document{
		Width:  Width,
		Height: Height,
		Background: cssLinearGradient(135, Width, Height,
			ColorStop{Offset: 0, Color: primaryColor},
			ColorStop{Offset: 1, Color: darkColor},
		),
		Nodes: nodes,
	}
}
