package seev

import "strings"

type attr struct {
	name  string
	value string
}

// element is one node of the message tree. An element has either text or
// children.
type element struct {
	name     string
	attrs    []attr
	text     string
	children []*element
}

func newElement(name string, children ...*element) *element {
	return &element{name: name, children: children}
}

func textElement(name, text string) *element {
	return &element{name: name, text: text}
}

func (e *element) add(children ...*element) *element {
	for _, c := range children {
		if c != nil {
			e.children = append(e.children, c)
		}
	}
	return e
}

func (e *element) attr(name, value string) *element {
	e.attrs = append(e.attrs, attr{name: name, value: value})
	return e
}

func (e *element) write(builder *strings.Builder, indent string, depth int) {
	builder.WriteString(strings.Repeat(indent, depth))
	builder.WriteByte('<')
	builder.WriteString(e.name)
	for _, a := range e.attrs {
		builder.WriteByte(' ')
		builder.WriteString(a.name)
		builder.WriteString(`="`)
		builder.WriteString(escapeXML(a.value))
		builder.WriteByte('"')
	}

	if len(e.children) == 0 {
		if e.text == "" {
			builder.WriteString("/>\n")
			return
		}
		builder.WriteByte('>')
		builder.WriteString(escapeXML(e.text))
		builder.WriteString("</")
		builder.WriteString(e.name)
		builder.WriteString(">\n")
		return
	}

	builder.WriteString(">\n")
	for _, c := range e.children {
		c.write(builder, indent, depth+1)
	}
	builder.WriteString(strings.Repeat(indent, depth))
	builder.WriteString("</")
	builder.WriteString(e.name)
	builder.WriteString(">\n")
}

// escapeXML escapes the five reserved characters and drops characters that
// XML 1.0 cannot carry at all.
func escapeXML(text string) string {
	var builder strings.Builder
	builder.Grow(len(text) + len(text)/8)

	for _, char := range text {
		switch char {
		case '&':
			builder.WriteString("&amp;")
		case '<':
			builder.WriteString("&lt;")
		case '>':
			builder.WriteString("&gt;")
		case '"':
			builder.WriteString("&quot;")
		case '\'':
			builder.WriteString("&apos;")
		default:
			if isXMLChar(char) {
				builder.WriteRune(char)
			}
		}
	}

	return builder.String()
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
