package dom

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// Document is a parsed container document. The controller mutates
// class attributes through element handles while HTTP handlers
// serialize concurrently, so every tree access goes through one lock.
type Document struct {
	mu        sync.RWMutex
	root      *html.Node
	byID      map[string]*html.Node
	handles   map[*html.Node]*element
	selectors map[string]cascadia.Selector
}

// Parse parses container markup into a Document and stamps every
// element with a synthetic identifier in document order.
func Parse(content string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing container markup: %w", err)
	}

	d := &Document{
		root:      root,
		byID:      make(map[string]*html.Node),
		handles:   make(map[*html.Node]*element),
		selectors: make(map[string]cascadia.Selector),
	}
	d.stamp()

	return d, nil
}

// stamp assigns synthetic identifiers and builds the handle table
func (d *Document) stamp() {
	seq := 0
	var walkNode func(*html.Node)
	walkNode = func(n *html.Node) {
		if n.Type == html.ElementNode {
			seq++
			id := fmt.Sprintf("ss-%d", seq)
			setAttr(n, entities.SyntheticIDAttr, id)
			d.byID[id] = n
			d.handles[n] = &element{doc: d, node: n, id: id}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walkNode(child)
		}
	}
	walkNode(d.root)
}

// Root returns the document root element
func (d *Document) Root() ports.Element {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for n := d.root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			return d.handleLocked(n)
		}
	}
	return nil
}

// Query returns descendant elements of scope matching the selector, in
// document order. A nil scope searches the whole document.
func (d *Document) Query(scope ports.Element, selector string) ([]ports.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sel, err := d.compileLocked(selector)
	if err != nil {
		return nil, err
	}

	start := d.bodyLocked()
	if scope != nil {
		el, ok := scope.(*element)
		if !ok || el.doc != d {
			return nil, errors.New("scope element belongs to a different document")
		}
		start = el.node
	}
	if start == nil {
		return nil, errors.New("document has no body")
	}

	var out []ports.Element
	for _, n := range sel.MatchAll(start) {
		if n == start {
			continue
		}
		if h := d.handleLocked(n); h != nil {
			out = append(out, h)
		}
	}
	return out, nil
}

// ElementByID resolves an element by its synthetic identifier
func (d *Document) ElementByID(id string) (ports.Element, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	h := d.handleLocked(n)
	if h == nil {
		return nil, false
	}
	return h, true
}

// RenderHTML serializes the container fragment as it currently stands,
// active markers and stamped identifiers included
func (d *Document) RenderHTML() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	body := d.bodyLocked()
	if body == nil {
		return "", errors.New("document has no body")
	}

	var buf bytes.Buffer
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return "", fmt.Errorf("serializing container: %w", err)
		}
	}
	return buf.String(), nil
}

// compileLocked compiles and caches a CSS selector
func (d *Document) compileLocked(selector string) (cascadia.Selector, error) {
	if sel, ok := d.selectors[selector]; ok {
		return sel, nil
	}

	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compiling selector %q: %w", selector, err)
	}
	d.selectors[selector] = sel
	return sel, nil
}

// bodyLocked finds the body element html.Parse wraps fragments in
func (d *Document) bodyLocked() *html.Node {
	var body *html.Node
	var walkNode func(*html.Node)
	walkNode = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walkNode(child)
		}
	}
	walkNode(d.root)
	return body
}

// handleLocked returns the canonical handle for a node. Handles are
// complete after stamping, so a miss means the node is foreign.
func (d *Document) handleLocked(n *html.Node) ports.Element {
	if h, ok := d.handles[n]; ok {
		return h
	}
	return nil
}

// element is a handle to one stamped node
type element struct {
	doc  *Document
	node *html.Node
	id   string
}

// ID returns the element's synthetic identifier
func (e *element) ID() string {
	return e.id
}

// Tag returns the element's tag name
func (e *element) Tag() string {
	return e.node.Data
}

// Parent returns the nearest element ancestor
func (e *element) Parent() ports.Element {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	for p := e.node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return e.doc.handleLocked(p)
		}
	}
	return nil
}

// Children returns the element's child elements in document order
func (e *element) Children() []ports.Element {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	var out []ports.Element
	for child := e.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		if h := e.doc.handleLocked(child); h != nil {
			out = append(out, h)
		}
	}
	return out
}

// Matches reports whether the element matches a CSS selector
func (e *element) Matches(selector string) (bool, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	sel, err := e.doc.compileLocked(selector)
	if err != nil {
		return false, err
	}
	return sel.Match(e.node), nil
}

// AddClass adds a class to the element's class attribute
func (e *element) AddClass(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	classes := classListOf(e.node)
	for _, c := range classes {
		if c == name {
			return
		}
	}
	classes = append(classes, name)
	setAttr(e.node, "class", strings.Join(classes, " "))
}

// RemoveClass removes a class from the element's class attribute
func (e *element) RemoveClass(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	classes := classListOf(e.node)
	kept := classes[:0]
	for _, c := range classes {
		if c != name {
			kept = append(kept, c)
		}
	}

	if len(kept) == 0 {
		removeAttr(e.node, "class")
		return
	}
	setAttr(e.node, "class", strings.Join(kept, " "))
}

// HasClass reports whether the element carries the class
func (e *element) HasClass(name string) bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	for _, c := range classListOf(e.node) {
		if c == name {
			return true
		}
	}
	return false
}

// Attr returns an attribute value and whether it is present
func (e *element) Attr(name string) (string, bool) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return getAttr(e.node, name)
}

// SetAttr sets an attribute value
func (e *element) SetAttr(name, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setAttr(e.node, name, value)
}

// RemoveAttr removes an attribute if present
func (e *element) RemoveAttr(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	removeAttr(e.node, name)
}

func classListOf(n *html.Node) []string {
	value, _ := getAttr(n, "class")
	return strings.Fields(value)
}

func getAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Factory implements ports.DocumentFactory over Parse
type Factory struct{}

// NewFactory creates a document factory
func NewFactory() *Factory {
	return &Factory{}
}

// Parse parses container markup into a queryable document
func (f *Factory) Parse(content string) (ports.DocumentQuerier, error) {
	return Parse(content)
}

var (
	_ ports.DocumentQuerier = (*Document)(nil)
	_ ports.DocumentFactory = (*Factory)(nil)
	_ ports.Element         = (*element)(nil)
)
