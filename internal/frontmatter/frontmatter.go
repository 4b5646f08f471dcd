// Package frontmatter splits YAML front matter from Markdown bodies and
// parses it into an untyped field map.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

// Document is the result of splitting a content file.
type Document struct {
	FrontMatter []byte // raw YAML between the delimiters, without them
	Body        []byte // everything after the closing delimiter
	Has         bool   // false when the file had no front matter block
	Newline     string // "\n" or "\r\n", detected from the input
}

// Split separates YAML front matter (`---` delimited) from the Markdown body.
//
// If the document does not start with a front matter delimiter, Has is
// false and Body is the full input.
func Split(content []byte) (Document, error) {
	doc := Document{Newline: detectNewline(content)}

	open := []byte("---" + doc.Newline)
	if !bytes.HasPrefix(content, open) {
		doc.Body = content
		return doc, nil
	}

	rest := content[len(open):]

	// Empty block: opening delimiter immediately followed by the closing one.
	if bytes.HasPrefix(rest, open) {
		doc.Has = true
		doc.FrontMatter = []byte{}
		doc.Body = rest[len(open):]
		return doc, nil
	}

	closeSeq := []byte(doc.Newline + "---" + doc.Newline)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return Document{Newline: doc.Newline}, ErrMissingClosingDelimiter
	}

	doc.Has = true
	doc.FrontMatter = rest[:idx+len(doc.Newline)]
	doc.Body = rest[idx+len(closeSeq):]
	return doc, nil
}

// Fields parses the raw front matter into a map. An absent or empty
// block yields an empty, non-nil map.
func (d Document) Fields() (map[string]any, error) {
	if !d.Has || len(d.FrontMatter) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(d.FrontMatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Join reassembles the document, inverse of Split. Front matter keeps
// the delimiter style and newline convention detected on the way in.
func (d Document) Join() []byte {
	if !d.Has {
		return d.Body
	}
	nl := d.Newline
	if nl == "" {
		nl = "\n"
	}
	var buf bytes.Buffer
	buf.WriteString("---" + nl)
	buf.Write(d.FrontMatter)
	if len(d.FrontMatter) > 0 && !bytes.HasSuffix(d.FrontMatter, []byte(nl)) {
		buf.WriteString(nl)
	}
	buf.WriteString("---" + nl)
	buf.Write(d.Body)
	return buf.Bytes()
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
