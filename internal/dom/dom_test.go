package dom

import (
	"strings"
	"testing"
)

func TestBuildAttributesAndText(t *testing.T) {
	n := Build("input", Attrs{
		"type":        "number",
		"min":         1,
		"placeholder": "Qty",
	})
	if got := GetAttr(n, "type"); got != "number" {
		t.Fatalf("type = %q", got)
	}
	if got := GetAttr(n, "min"); got != "1" {
		t.Fatalf("min = %q", got)
	}

	label := Build("label", Attrs{"text": "Quantity"})
	if got := TextContent(label); got != "Quantity" {
		t.Fatalf("text content = %q", got)
	}
}

func TestBuildStyleMerge(t *testing.T) {
	n := Build("div", Attrs{
		"style": map[string]string{"color": "#111", "padding": "4px"},
	})
	style := GetAttr(n, "style")
	if !strings.Contains(style, "color:#111") || !strings.Contains(style, "padding:4px") {
		t.Fatalf("style = %q", style)
	}
}

func TestBuildChildrenInOrder(t *testing.T) {
	n := Build("ul", nil,
		Build("li", Attrs{"text": "a"}),
		Build("li", Attrs{"text": "b"}),
	)
	if got := TextContent(n); got != "ab" {
		t.Fatalf("children order: %q", got)
	}
}

func TestBuildReturnsDetachedNodes(t *testing.T) {
	first := Build("div", Attrs{"id": "x"})
	second := Build("div", Attrs{"id": "x"})
	if first == second {
		t.Fatal("expected distinct nodes")
	}
	if first.Parent != nil || second.Parent != nil {
		t.Fatal("expected detached nodes")
	}
}

func TestSetTextReplacesChildren(t *testing.T) {
	n := Build("div", nil, Build("span", Attrs{"text": "old"}))
	SetText(n, "new")
	if got := TextContent(n); got != "new" {
		t.Fatalf("text = %q", got)
	}
}

func TestDocumentLookupAndInsertAfter(t *testing.T) {
	doc, err := Parse(`<html><head></head><body><div id="slot"></div><script id="tag"></script></body></html>`, "https://host.example/page")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.GetElementByID("slot") == nil {
		t.Fatal("expected #slot")
	}
	if doc.GetElementByID("missing") != nil {
		t.Fatal("unexpected #missing")
	}

	script := doc.GetElementByID("tag")
	container := Build("div", Attrs{"id": "injected"})
	doc.InsertAfter(script, container)
	if script.NextSibling != container {
		t.Fatal("container not inserted immediately after script")
	}
}

func TestDocumentRender(t *testing.T) {
	doc := NewDocument("https://host.example/")
	doc.Append(doc.Body(), Build("p", Attrs{"text": "hello"}))
	markup, err := doc.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(markup, "<p>hello</p>") {
		t.Fatalf("markup = %q", markup)
	}
}
