package markdown

import (
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one table-of-contents entry.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// Headings lists the document's headings in source order, with the
// auto-generated anchor IDs the renderer will emit.
func Headings(body []byte) []Heading {
	root := renderer.Parser().Parse(text.NewReader(body))

	var out []Heading
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		id := ""
		if v, found := h.AttributeString("id"); found {
			if b, isBytes := v.([]byte); isBytes {
				id = string(b)
			}
		}
		out = append(out, Heading{
			Level: h.Level,
			Text:  string(h.Text(body)),
			ID:    id,
		})
		return gmast.WalkSkipChildren, nil
	})
	return out
}
