package qti

import "strings"

// attr is one XML attribute. Attribute order is emission order; Canvas's
// importer has been observed to care about it in varequal elements.
type attr struct {
	key string
	val string
}

// element is a minimal ordered XML tree node. The standard encoding/xml
// marshaller reorders nothing but requires struct types per shape; the
// artifact bodies here are built dynamically per item kind, so a tiny
// element tree is the better fit.
type element struct {
	tag      string
	attrs    []attr
	text     string
	children []*element
}

func newElement(tag string, attrs ...attr) *element {
	return &element{tag: tag, attrs: attrs}
}

// child appends a new child element and returns it.
func (e *element) child(tag string, attrs ...attr) *element {
	c := newElement(tag, attrs...)
	e.children = append(e.children, c)
	return c
}

// append adds an already-built child.
func (e *element) append(c *element) {
	e.children = append(e.children, c)
}

// withText sets the element text and returns the element.
func (e *element) withText(s string) *element {
	e.text = s
	return e
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func (e *element) render(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.tag)
	for _, a := range e.attrs {
		b.WriteByte(' ')
		b.WriteString(a.key)
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.val))
		b.WriteByte('"')
	}
	if e.text == "" && len(e.children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	b.WriteString(textEscaper.Replace(e.text))
	for _, c := range e.children {
		c.render(b)
	}
	b.WriteString("</")
	b.WriteString(e.tag)
	b.WriteByte('>')
}

// serialize renders a complete document: declaration, compact body, one
// trailing newline. No pretty-printing; whitespace inside mattext is
// content.
func serialize(root *element) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\"?>\n")
	root.render(&b)
	b.WriteByte('\n')
	return b.String()
}
