package headless

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox"
)

// DOM is a parsed document tree shared by the runtime bindings
type DOM struct {
	doc *goquery.Document
}

// ParseDOM parses a full HTML document
func ParseDOM(src string) (*DOM, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &DOM{doc: doc}, nil
}

// Root returns the document node
func (d *DOM) Root() *html.Node {
	return d.doc.Nodes[0]
}

// Element returns the first element with the given tag
func (d *DOM) Element(tag string) *html.Node {
	sel := d.doc.Find(tag)
	if sel.Length() == 0 {
		return nil
	}
	return sel.Nodes[0]
}

// Body returns the <body> element
func (d *DOM) Body() *html.Node {
	return d.Element("body")
}

// Query returns elements matching a CSS selector under n, in document order.
// An invalid selector matches nothing.
func (d *DOM) Query(n *html.Node, selector string) []*html.Node {
	if n == nil {
		return nil
	}
	return goquery.NewDocumentFromNode(n).Find(selector).Nodes
}

// ElementByID returns the first element whose id attribute equals id
func (d *DOM) ElementByID(id string) *html.Node {
	var found *html.Node
	walk(d.Root(), func(n *html.Node) bool {
		if v, ok := getAttr(n, "id"); ok && v == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Scripts returns the parser-inserted <script> elements in document order
func (d *DOM) Scripts() []*html.Node {
	return d.doc.Find("script").Nodes
}

// BodyHTML renders the children of <body>
func (d *DOM) BodyHTML() string {
	return innerHTML(d.Body())
}

// Notices returns the text of every error notice in the document
func (d *DOM) Notices() []string {
	var notices []string
	d.doc.Find("." + sandbox.NoticeClass).Each(func(_ int, s *goquery.Selection) {
		notices = append(notices, s.Text())
	})
	return notices
}

// walk visits n and its descendants depth-first until visit returns false
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if n.Type == html.ElementNode && !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func newElement(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	key = strings.ToLower(key)
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	key = strings.ToLower(key)
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}

func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				collect(c)
			}
		}
	}
	collect(n)
	return b.String()
}

func setTextContent(n *html.Node, text string) {
	if n.Type == html.TextNode {
		n.Data = text
		return
	}
	removeChildren(n)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

func innerHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

func outerHTML(n *html.Node) string {
	var b strings.Builder
	_ = html.Render(&b, n)
	return b.String()
}

// setInnerHTML replaces the children of n with parsed markup. Scripts in
// the markup are inserted but never run, as in a browser.
func setInnerHTML(n *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), n)
	if err != nil {
		return err
	}
	removeChildren(n)
	for _, c := range nodes {
		detach(c)
		n.AppendChild(c)
	}
	return nil
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// appendChild moves child under parent; it reports false for cycles
func appendChild(parent, child *html.Node) bool {
	for p := parent; p != nil; p = p.Parent {
		if p == child {
			return false
		}
	}
	detach(child)
	parent.AppendChild(child)
	return true
}

func elementChildren(n *html.Node) []*html.Node {
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, c)
		}
	}
	return children
}

func hasClass(n *html.Node, class string) bool {
	v, _ := getAttr(n, "class")
	for _, f := range strings.Fields(v) {
		if f == class {
			return true
		}
	}
	return false
}

func toggleClass(n *html.Node, class string, on bool) {
	v, _ := getAttr(n, "class")
	fields := strings.Fields(v)
	out := fields[:0]
	for _, f := range fields {
		if f != class {
			out = append(out, f)
		}
	}
	if on {
		out = append(out, class)
	}
	setAttr(n, "class", strings.Join(out, " "))
}

// isClassicScript reports whether a script element holds classic inline JS
func isClassicScript(n *html.Node) bool {
	t, ok := getAttr(n, "type")
	if !ok {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "", "text/javascript", "application/javascript", "text/ecmascript", "application/ecmascript":
		return true
	}
	return false
}
