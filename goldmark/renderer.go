package goldmark

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chatlib"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify))

type renderer struct {
	width int

	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	accent    lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
	quote     lipgloss.Style
}

func newRenderer(theme chatlib.Theme, width int) *renderer {
	return &renderer{
		width:     width,
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		strike:    lipgloss.NewStyle().Strikethrough(true),
		accent:    lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
		quote:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *renderer) render(source []byte) string {
	doc := md.Parser().Parse(text.NewReader(source))
	var blocks []string
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if b := r.block(c, source, r.width); b != "" {
			blocks = append(blocks, b)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// block renders a single block node without a trailing newline.
func (r *renderer) block(node ast.Node, source []byte, width int) string {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return r.wrap(r.inline(n, source), width)

	case *ast.Heading:
		return r.wrap(r.accent.Render(r.inline(n, source)), width)

	case *ast.FencedCodeBlock:
		code := r.code(n, source)
		if lang := string(n.Language(source)); lang != "" {
			return r.muted.Render(lang) + "\n" + code
		}
		return code

	case *ast.CodeBlock:
		return r.code(n, source)

	case *ast.Blockquote:
		inner := r.children(n, source, max(width-2, 10))
		gutter := r.quote.Render("┃") + " "
		lines := strings.Split(inner, "\n")
		for i, line := range lines {
			lines[i] = gutter + line
		}
		return strings.Join(lines, "\n")

	case *ast.List:
		var buf bytes.Buffer
		r.list(n, source, width, 0, &buf)
		return strings.TrimRight(buf.String(), "\n")

	case *ast.ThematicBreak:
		return r.muted.Render(strings.Repeat("─", min(width, 40)))

	case *ast.HTMLBlock:
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(source))
		}
		return strings.TrimRight(buf.String(), "\n")

	default:
		return r.children(node, source, width)
	}
}

func (r *renderer) children(node ast.Node, source []byte, width int) string {
	var blocks []string
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		if b := r.block(c, source, width); b != "" {
			blocks = append(blocks, b)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (r *renderer) wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

func (r *renderer) code(node ast.Node, source []byte) string {
	gutter := r.muted.Render("│") + " "
	lines := node.Lines()
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, gutter+strings.TrimRight(string(seg.Value(source)), "\n"))
	}
	return strings.Join(out, "\n")
}

func (r *renderer) list(node *ast.List, source []byte, width, depth int, buf *bytes.Buffer) {
	n := node.Start
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "• "
		if node.IsOrdered() {
			marker = strconv.Itoa(n) + ". "
			n++
		}
		indent := strings.Repeat("  ", depth)

		var content []string
		flush := func() {
			if len(content) > 0 {
				r.item(buf, indent, marker, strings.Join(content, " "), width)
				marker = strings.Repeat(" ", len([]rune(marker)))
				content = nil
			}
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				content = append(content, r.inline(in, source))
			case *ast.List:
				flush()
				r.list(in, source, width, depth+1, buf)
			default:
				content = append(content, r.block(ic, source, width))
			}
		}
		flush()
	}
}

// item writes a list item with continuation lines aligned under its text.
func (r *renderer) item(buf *bytes.Buffer, indent, marker, content string, width int) {
	prefix := indent + marker
	pad := len([]rune(prefix))
	lines := strings.Split(r.wrap(content, max(width-pad, 10)), "\n")
	for i, line := range lines {
		if i == 0 {
			buf.WriteString(prefix)
		} else {
			buf.WriteString(strings.Repeat(" ", pad))
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
}

func (r *renderer) inline(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.span(c, source, &buf)
	}
	return buf.String()
}

func (r *renderer) span(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		switch {
		case n.HardLineBreak():
			buf.WriteByte('\n')
		case n.SoftLineBreak():
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		inner := r.inline(n, source)
		if n.Level == 1 {
			buf.WriteString(r.italic.Render(inner))
		} else {
			buf.WriteString(r.bold.Render(inner))
		}

	case *east.Strikethrough:
		buf.WriteString(r.strike.Render(r.inline(n, source)))

	case *ast.CodeSpan:
		buf.WriteString(r.bold.Render(r.inline(n, source)))

	case *ast.Link:
		buf.WriteString(r.underline.Render(r.inline(n, source)))
		buf.WriteString(" ")
		buf.WriteString(r.muted.Render("(" + string(n.Destination) + ")"))

	case *ast.AutoLink:
		buf.WriteString(r.underline.Render(string(n.URL(source))))

	case *ast.Image:
		buf.WriteString(r.underline.Render(r.inline(n, source)))
		buf.WriteString(" ")
		buf.WriteString(r.muted.Render("(" + string(n.Destination) + ")"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(source))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.span(c, source, buf)
		}
	}
}
