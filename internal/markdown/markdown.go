// Package markdown renders Markdown bodies to HTML and extracts the
// plain text used for summaries and the search index.
package markdown

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Options controls rendering behavior.
type Options struct {
	// Unsafe passes raw HTML in the Markdown source through unchanged.
	// When false, rendered output is sanitized with a UGC policy.
	Unsafe bool
}

var (
	renderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// Render converts a Markdown body (front matter already removed) to HTML.
func Render(body []byte, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderer.Convert(body, &buf); err != nil {
		return nil, err
	}
	if opts.Unsafe {
		return buf.Bytes(), nil
	}
	return sanitizer.SanitizeBytes(buf.Bytes()), nil
}

// PlainText extracts the readable text of a Markdown body, with block
// boundaries collapsed to single spaces. Used for summaries and the
// JSON search index.
func PlainText(body []byte) string {
	root := renderer.Parser().Parse(text.NewReader(body))

	var b strings.Builder
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Text:
			b.Write(node.Segment.Value(body))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.CodeSpan, *gmast.CodeBlock, *gmast.FencedCodeBlock:
			for i := 0; i < n.Lines().Len(); i++ {
				seg := n.Lines().At(i)
				b.Write(seg.Value(body))
			}
			return gmast.WalkSkipChildren, nil
		}
		// Separate adjacent blocks so headings do not glue to paragraphs.
		if n.Type() == gmast.TypeBlock && b.Len() > 0 && !strings.HasSuffix(b.String(), " ") {
			b.WriteByte(' ')
		}
		return gmast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}

// Summarize returns the first maxWords words of the plain text,
// appending an ellipsis when truncated.
func Summarize(body []byte, maxWords int) string {
	words := strings.Fields(PlainText(body))
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + " …"
}
