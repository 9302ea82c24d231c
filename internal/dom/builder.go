// Package dom models the slice of the host page the widgets touch: a
// parsed document tree plus a small declarative element builder. There is
// no reconciliation or diffing; every Build call returns a fresh detached
// node and callers own insertion and re-rendering.
package dom

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attrs configures a node built by Build. Two keys are special:
//   - "style": a map[string]string shallow-merged into the style attribute
//   - "text": the node's visible text content
//
// Every other key is assigned as a plain attribute.
type Attrs map[string]any

// Build constructs a detached element node. Children are appended in
// order after any "text" content. The builder never touches anything
// outside the returned node.
func Build(tag string, attrs Attrs, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for _, key := range sortedKeys(attrs) {
		val := attrs[key]
		switch key {
		case "style":
			if styles, ok := val.(map[string]string); ok {
				SetAttr(n, "style", mergeStyle(GetAttr(n, "style"), styles))
			}
		case "text":
			n.AppendChild(Text(attrString(val)))
		default:
			SetAttr(n, key, attrString(val))
		}
	}
	for _, child := range children {
		if child != nil {
			n.AppendChild(child)
		}
	}
	return n
}

// Text returns a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// GetAttr returns the value of the named attribute, or "" when absent.
func GetAttr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr assigns an attribute, replacing any existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// SetText replaces the node's children with a single text node.
func SetText(n *html.Node, s string) {
	ClearChildren(n)
	n.AppendChild(Text(s))
}

// TextContent concatenates the text nodes under n, depth first.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return b.String()
}

// ClearChildren detaches every child of n.
func ClearChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// Render serializes a node (and its subtree) to markup.
func Render(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", fmt.Errorf("dom: render: %w", err)
	}
	return b.String(), nil
}

func sortedKeys(attrs Attrs) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mergeStyle(existing string, styles map[string]string) string {
	props := make([]string, 0, len(styles))
	for k := range styles {
		props = append(props, k)
	}
	sort.Strings(props)
	parts := make([]string, 0, len(props)+1)
	if existing != "" {
		parts = append(parts, strings.TrimRight(existing, ";"))
	}
	for _, p := range props {
		parts = append(parts, p+":"+styles[p])
	}
	return strings.Join(parts, ";")
}

func attrString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
