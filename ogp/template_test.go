package ogp

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.tabichina.jp/site/core"
)

var updateGolden = flag.Bool("update-golden", false, "update golden files")

func TestTitleFontSize(t *testing.T) {
	tests := []struct {
		title string
		input string
		size  float64
	}{
		{title: "Empty", input: "", size: 52},
		{title: "30 ASCII", input: strings.Repeat("a", 30), size: 52},
		{title: "31 ASCII", input: strings.Repeat("a", 31), size: 44},
		{title: "30 Japanese", input: strings.Repeat("あ", 30), size: 52},
		{title: "31 Japanese", input: strings.Repeat("あ", 31), size: 44},
		{title: "15 Emoji", input: strings.Repeat("😀", 15), size: 52},
		{title: "16 Emoji", input: strings.Repeat("😀", 16), size: 44},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.size, TitleFontSize(tt.input), "failed for title: %s", tt.title)
	}
}

func TestDisplayHost(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://www.tabichina.jp", "www.tabichina.jp"},
		{"https://www.tabichina.jp/articles/foo/", "www.tabichina.jp"},
		{"https://Example.COM:8080/path?q=1", "example.com"},
		{"", DefaultHost},
		{"   ", DefaultHost},
		{"not a url", DefaultHost},
		{"://missing-scheme", DefaultHost},
		{"www.tabichina.jp", DefaultHost},
		{"https://", DefaultHost},
	}

	for _, tt := range tests {
		assert.NotPanics(t, func() {
			assert.Equal(t, tt.expected, DisplayHost(tt.input), "failed for input: %q", tt.input)
		})
	}
}

func findColumn(t *testing.T, doc *Document) Column {
	t.Helper()

	for _, node := range doc.Nodes {
		if c, ok := node.(Column); ok {
			return c
		}
	}

	require.FailNow(t, "document has no column")
	return Column{}
}

func TestRenderTagline(t *testing.T) {
	article := Render(TemplateProps{PageTitle: "Hello", PageType: core.PageTypeArticle})
	blocks := findColumn(t, article).Blocks
	require.Len(t, blocks, 4)
	assert.Equal(t, tagline, blocks[3].(Heading).Content)

	home := Render(TemplateProps{PageTitle: core.HomeTitle, PageType: core.PageTypeHome, IsHomePage: true})
	blocks = findColumn(t, home).Blocks
	require.Len(t, blocks, 3)
	assert.Equal(t, core.HomeTitle, blocks[1].(Heading).Content)
	assert.IsType(t, Rule{}, blocks[2])
}

func TestRenderTitle(t *testing.T) {
	doc := Render(TemplateProps{PageTitle: strings.Repeat("あ", 31), SiteURL: "https://example.com"})
	heading := findColumn(t, doc).Blocks[1].(Heading)
	assert.Equal(t, strings.Repeat("あ", 31), heading.Content)
	assert.Equal(t, 44.0, heading.Size)

	host := doc.Nodes[len(doc.Nodes)-1].(Text)
	assert.Equal(t, "example.com", host.Content)

	doc = Render(TemplateProps{})
	heading = findColumn(t, doc).Blocks[1].(Heading)
	assert.Equal(t, DefaultTitle, heading.Content)
}

func TestRenderDecorationsAreStatic(t *testing.T) {
	a := Render(TemplateProps{PageTitle: "One", SiteURL: "https://a.example"})
	b := Render(TemplateProps{PageTitle: "Another title", SiteURL: "bogus", IsHomePage: true})

	require.Equal(t, len(a.Nodes), len(b.Nodes))
	assert.Equal(t, a.Background, b.Background)

	// Everything but the column and the host line.
	for i := range a.Nodes[:len(a.Nodes)-2] {
		assert.Equal(t, a.Nodes[i], b.Nodes[i], "node %d differs", i)
	}
}

func TestRenderDeterministic(t *testing.T) {
	props := TemplateProps{
		PageTitle:       "AlipayをApple Payに登録する方法",
		PageDescription: "説明",
		SiteURL:         "https://www.tabichina.jp",
		PageType:        core.PageTypeArticle,
	}

	assert.Equal(t, Render(props), Render(props))
}

func TestRenderSnapshot(t *testing.T) {
	tests := []struct {
		name  string
		props TemplateProps
	}{
		{
			name: "article",
			props: TemplateProps{
				PageTitle:       "中国でAlipayが使えない時の対処法",
				PageDescription: "エラーの原因と解決策",
				SiteURL:         "https://www.tabichina.jp",
				PageType:        core.PageTypeArticle,
			},
		},
		{
			name: "home",
			props: TemplateProps{
				PageTitle:       core.HomeTitle,
				PageDescription: core.HomeDescription,
				SiteURL:         "https://www.tabichina.jp",
				PageType:        core.PageTypeHome,
				IsHomePage:      true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dumpDocument(Render(tt.props))

			golden := filepath.Join("testdata", tt.name+".golden")
			if *updateGolden {
				require.NoError(t, os.MkdirAll("testdata", 0755))
				require.NoError(t, os.WriteFile(golden, []byte(got), 0644))
			}

			require.FileExists(t, golden, "run with -update-golden to create it")
			want, err := os.ReadFile(golden)
			require.NoError(t, err)
			assert.Equal(t, string(want), got)
		})
	}
}

func TestRenderSnapshotDetectsChanges(t *testing.T) {
	props := TemplateProps{PageTitle: "Hello", SiteURL: "https://www.tabichina.jp"}
	doc := Render(props)

	column := findColumn(t, doc)
	heading := column.Blocks[1].(Heading)
	heading.Size = 60
	column.Blocks[1] = heading
	doc.Nodes[len(doc.Nodes)-2] = column

	assert.NotEqual(t, dumpDocument(Render(props)), dumpDocument(doc))
}

// dumpDocument prints doc one node per line with fixed precision, so that
// snapshots do not depend on the last bits of floating point results.
func dumpDocument(doc *Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "document %dx%d\n", doc.Width, doc.Height)

	bg := doc.Background
	fmt.Fprintf(&b, "gradient %.2f,%.2f %.2f,%.2f", bg.X0, bg.Y0, bg.X1, bg.Y1)
	for _, stop := range bg.Stops {
		fmt.Fprintf(&b, " %.2f:%s", stop.Offset, dumpColor(stop.Color))
	}
	b.WriteString("\n")

	for _, node := range doc.Nodes {
		dumpNode(&b, node, "")
	}

	return b.String()
}

func dumpNode(b *strings.Builder, node Node, indent string) {
	switch n := node.(type) {
	case Rect:
		fmt.Fprintf(b, "%srect %s r=%.2f rotate=%.2f fill=%s stroke=%s/%.2f\n",
			indent, dumpBox(n.Box), n.Radius, n.Rotate, dumpColor(n.Fill), dumpColor(n.Stroke), n.StrokeWidth)
	case Ellipse:
		fmt.Fprintf(b, "%sellipse %.2f,%.2f %.2fx%.2f fill=%s\n",
			indent, n.CX, n.CY, n.RX, n.RY, dumpColor(n.Fill))
	case Text:
		fmt.Fprintf(b, "%stext %q %.2f,%.2f anchor=%.2f,%.2f size=%.2f weight=%d color=%s lh=%.2f\n",
			indent, n.Content, n.X, n.Y, n.AnchorX, n.AnchorY, n.Size, n.Weight, dumpColor(n.Color), n.LineHeight)
	case Group:
		fmt.Fprintf(b, "%sgroup opacity=%.2f clip=%s\n", indent, n.Opacity, dumpBox(n.Clip))
		for _, child := range n.Children {
			dumpNode(b, child, indent+"  ")
		}
	case Column:
		fmt.Fprintf(b, "%scolumn %s\n", indent, dumpBox(n.Box))
		for _, block := range n.Blocks {
			dumpBlock(b, block, indent+"  ")
		}
	default:
		fmt.Fprintf(b, "%s%T\n", indent, node)
	}
}

func dumpBlock(b *strings.Builder, block Block, indent string) {
	switch n := block.(type) {
	case Badge:
		fmt.Fprintf(b, "%sbadge %q size=%.2f weight=%d color=%s bg=%s padding=%.2f,%.2f r=%.2f spacing=%.2f mb=%.2f\n",
			indent, n.Content, n.Size, n.Weight, dumpColor(n.Color), dumpColor(n.Background),
			n.PaddingX, n.PaddingY, n.Radius, n.LetterSpacing, n.MarginBottom)
	case Heading:
		fmt.Fprintf(b, "%sheading %q size=%.2f weight=%d color=%s lh=%.2f max=%.2f mb=%.2f\n",
			indent, n.Content, n.Size, n.Weight, dumpColor(n.Color), n.LineHeight, n.MaxWidth, n.MarginBottom)
	case Rule:
		fmt.Fprintf(b, "%srule ratio=%.2f thickness=%.2f color=%s mb=%.2f\n",
			indent, n.Ratio, n.Thickness, dumpColor(n.Color), n.MarginBottom)
	default:
		fmt.Fprintf(b, "%s%T\n", indent, block)
	}
}

func dumpBox(box Box) string {
	return fmt.Sprintf("%.2f,%.2f %.2fx%.2f", box.X, box.Y, box.Width, box.Height)
}

func dumpColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
