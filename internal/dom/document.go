package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is the widget runtime's view of the host page. The page is
// single-threaded the way a browser main thread is; Document methods are
// not safe for concurrent use.
type Document struct {
	root *html.Node

	// URL is the address the host page was loaded from. Widgets use it
	// to derive the default API base and, for booking, query overrides.
	URL string
}

// NewDocument synthesizes an empty host page.
func NewDocument(url string) *Document {
	doc, err := Parse("<!DOCTYPE html><html><head></head><body></body></html>", url)
	if err != nil {
		// The static markup above always parses.
		panic(fmt.Sprintf("dom: synthesize document: %v", err))
	}
	return doc
}

// Parse builds a Document from host page markup. Arbitrary, broken
// markup is fine; x/net/html repairs it the way a browser would.
func Parse(markup, url string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	return &Document{root: root, URL: url}, nil
}

// Root returns the document root node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Head returns the head element, or nil when the tree has none.
func (d *Document) Head() *html.Node {
	return d.findElement(atom.Head)
}

// Body returns the body element, or nil when the tree has none.
func (d *Document) Body() *html.Node {
	return d.findElement(atom.Body)
}

// GetElementByID returns the first element with the given id, or nil.
func (d *Document) GetElementByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && GetAttr(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return found
}

// Append attaches child as the last child of parent.
func (d *Document) Append(parent, child *html.Node) {
	parent.AppendChild(child)
}

// InsertAfter places n as the next sibling of ref. Widgets use this to
// synthesize their container immediately after the hosting script tag.
func (d *Document) InsertAfter(ref, n *html.Node) {
	if ref.Parent == nil {
		return
	}
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// Render serializes the whole document.
func (d *Document) Render() (string, error) {
	return Render(d.root)
}

func (d *Document) findElement(a atom.Atom) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == a {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return found
}
