package qti

import (
	"strings"
	"testing"
)

func TestRenderElement(t *testing.T) {
	root := newElement("outer", attr{"a", "1"}, attr{"b", "2"})
	root.child("empty")
	root.child("text").withText("hello")
	root.child("nested").child("inner", attr{"k", "v"})

	var b strings.Builder
	root.render(&b)
	want := `<outer a="1" b="2"><empty/><text>hello</text><nested><inner k="v"/></nested></outer>`
	if got := b.String(); got != want {
		t.Errorf("render = %q, want %q", got, want)
	}
}

func TestRenderPreservesAttrOrder(t *testing.T) {
	e := newElement("varequal",
		attr{"respident", "response1"},
		attr{"margintype", "percent"},
		attr{"margin", "5.0"})
	var b strings.Builder
	e.render(&b)
	want := `<varequal respident="response1" margintype="percent" margin="5.0"/>`
	if got := b.String(); got != want {
		t.Errorf("render = %q, want %q", got, want)
	}
}

func TestRenderEscaping(t *testing.T) {
	e := newElement("m", attr{"q", `a"b<c`}).withText("x < y & z > w")
	var b strings.Builder
	e.render(&b)
	want := `<m q="a&quot;b&lt;c">x &lt; y &amp; z &gt; w</m>`
	if got := b.String(); got != want {
		t.Errorf("render = %q, want %q", got, want)
	}
}

func TestSerialize(t *testing.T) {
	doc := serialize(newElement("root"))
	if doc != "<?xml version=\"1.0\"?>\n<root/>\n" {
		t.Errorf("serialize = %q", doc)
	}
	if strings.Contains(doc, "\r") {
		t.Error("serialized document contains carriage returns")
	}
}
