package manifest

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"sort"
	"strings"
)

// value is one probed identifier or version. start and end locate the raw
// value bytes in the source; start is negative when the value cannot be
// rewritten in place.
type value struct {
	text  string
	start int
	end   int
	attr  bool
}

func (v value) writable() bool {
	return v.start >= 0
}

// declaration is one package element with the attributes and direct
// children that a dialect may probe, keyed by lower-cased local name.
type declaration struct {
	attrs    map[string]value
	children map[string]value
}

func (d *declaration) probe(keys []string) (value, bool) {
	for _, k := range keys {
		k = strings.ToLower(k)
		if v, ok := d.attrs[k]; ok {
			return v, true
		}
		if v, ok := d.children[k]; ok {
			return v, true
		}
	}
	return value{}, false
}

type document struct {
	src   []byte
	decls []declaration
}

type openChild struct {
	key         string
	start       int
	text        strings.Builder
	complex     bool
	selfClosing bool
}

// parseDocument streams the tokens of src, recording byte offsets for the
// values of every package element the dialect knows about.
func parseDocument(src []byte, d Dialect) (*document, error) {
	dec := xml.NewDecoder(bytes.NewReader(src))
	doc := &document{src: src}

	var (
		depth     int
		declDepth int
		current   *declaration
		child     *openChild
	)

	for {
		start := int(dec.InputOffset())
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		end := int(dec.InputOffset())

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case current == nil && d.isElement(t.Name.Local):
				current = &declaration{
					attrs:    scanAttrs(src[:end], start, t.Attr),
					children: make(map[string]value),
				}
				declDepth = depth
			case current != nil && child == nil && depth == declDepth+1 && d.isKey(t.Name.Local):
				child = &openChild{
					key:         strings.ToLower(t.Name.Local),
					start:       end,
					selfClosing: bytes.HasSuffix(src[start:end], []byte("/>")),
				}
			case child != nil:
				child.complex = true
			}

		case xml.EndElement:
			switch {
			case child != nil && depth == declDepth+1:
				if _, seen := current.children[child.key]; !seen {
					current.children[child.key] = child.value(src, start)
				}
				child = nil
			case current != nil && depth == declDepth:
				doc.decls = append(doc.decls, *current)
				current = nil
			}
			depth--

		case xml.CharData:
			if child != nil {
				child.text.Write(t)
			}

		default:
			if child != nil {
				child.complex = true
			}
		}
	}

	if depth != 0 {
		return nil, errors.New("unexpected end of document")
	}
	return doc, nil
}

// value closes the child at end, the offset of its end tag.
func (c *openChild) value(src []byte, end int) value {
	v := value{text: strings.TrimSpace(c.text.String()), start: -1, end: -1}
	if c.complex || c.selfClosing || v.text == "" || end < c.start {
		return v
	}
	raw := src[c.start:end]
	lead := len(raw) - len(bytes.TrimLeft(raw, " \t\r\n"))
	trail := len(raw) - len(bytes.TrimRight(raw, " \t\r\n"))
	v.start = c.start + lead
	v.end = end - trail
	return v
}

// scanAttrs walks the raw start tag beginning at start to find the byte
// span of each attribute value. Decoded values come from attrs.
func scanAttrs(src []byte, start int, attrs []xml.Attr) map[string]value {
	out := make(map[string]value)
	end := len(src)

	i := start + 1
	for i < end && !isSpace(src[i]) && src[i] != '>' && src[i] != '/' {
		i++
	}

	for n := 0; ; n++ {
		for i < end && isSpace(src[i]) {
			i++
		}
		if i >= end || src[i] == '>' || src[i] == '/' {
			break
		}

		nameStart := i
		for i < end && src[i] != '=' && !isSpace(src[i]) && src[i] != '>' && src[i] != '/' {
			i++
		}
		name := string(src[nameStart:i])

		for i < end && isSpace(src[i]) {
			i++
		}
		if i >= end || src[i] != '=' {
			continue
		}
		i++
		for i < end && isSpace(src[i]) {
			i++
		}
		if i >= end || (src[i] != '"' && src[i] != '\'') {
			break
		}
		quote := src[i]
		i++
		valStart := i
		for i < end && src[i] != quote {
			i++
		}
		valEnd := i
		i++

		local := name
		if colon := strings.LastIndexByte(local, ':'); colon >= 0 {
			local = local[colon+1:]
		}
		key := strings.ToLower(local)
		if _, seen := out[key]; seen {
			continue
		}

		decoded := string(src[valStart:valEnd])
		if n < len(attrs) && strings.EqualFold(attrs[n].Name.Local, local) {
			decoded = attrs[n].Value
		}

		raw := src[valStart:valEnd]
		lead := len(raw) - len(bytes.TrimLeft(raw, " \t\r\n"))
		trail := len(raw) - len(bytes.TrimRight(raw, " \t\r\n"))
		v := value{text: strings.TrimSpace(decoded), start: valStart + lead, end: valEnd - trail, attr: true}
		if v.text == "" {
			v.start, v.end = -1, -1
		}
		out[key] = v
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

type edit struct {
	start int
	end   int
	text  string
}

// apply returns a copy of the source with every edit spliced in.
// Edits must not overlap.
func (doc *document) apply(edits []edit) []byte {
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var buf bytes.Buffer
	buf.Grow(len(doc.src))
	last := 0
	for _, e := range edits {
		buf.Write(doc.src[last:e.start])
		buf.WriteString(e.text)
		last = e.end
	}
	buf.Write(doc.src[last:])
	return buf.Bytes()
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
