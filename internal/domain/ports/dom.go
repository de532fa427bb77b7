package ports

// Element is a handle to a single node in the container document.
// Handles stay valid until the document is rebuilt; after a rebuild any
// retained handle refers to the old tree and must be rediscovered.
type Element interface {
	// ID returns the element's stable synthetic identifier
	ID() string

	// Tag returns the element's tag name (lowercase)
	Tag() string

	// Parent returns the parent element, or nil at the document root
	Parent() Element

	// Children returns the element's child elements in document order
	Children() []Element

	// Matches reports whether the element matches a CSS selector
	Matches(selector string) (bool, error)

	// AddClass adds a class to the element's class attribute
	AddClass(name string)

	// RemoveClass removes a class from the element's class attribute
	RemoveClass(name string)

	// HasClass reports whether the element carries the class
	HasClass(name string) bool

	// Attr returns an attribute value and whether it is present
	Attr(name string) (string, bool)

	// SetAttr sets an attribute value
	SetAttr(name, value string)

	// RemoveAttr removes an attribute if present
	RemoveAttr(name string)
}

// DocumentQuerier provides element discovery over the container document
type DocumentQuerier interface {
	// Root returns the document root element
	Root() Element

	// Query returns descendant elements of scope matching the selector,
	// in document order. A nil scope searches the whole document.
	Query(scope Element, selector string) ([]Element, error)

	// ElementByID resolves an element by its synthetic identifier
	ElementByID(id string) (Element, bool)

	// RenderHTML serializes the current document state
	RenderHTML() (string, error)
}

// DocumentFactory parses rendered container markup into a queryable
// document. Each parse produces an independent tree.
type DocumentFactory interface {
	Parse(html string) (DocumentQuerier, error)
}
