package ports

// StyleRule pairs a CSS selector with its declarations
type StyleRule struct {
	Selector     string
	Declarations map[string]string
}

// StyleHandle identifies one injected stylesheet so it can be removed
// during teardown
type StyleHandle interface {
	// Remove removes the injected stylesheet. Removing twice is a no-op.
	Remove()
}

// StyleInjector installs presentation rules for the container document
type StyleInjector interface {
	// Inject installs the rules scoped to the given element and returns
	// a handle for later removal. Rules are emitted in slice order.
	Inject(scope Element, rules []StyleRule) (StyleHandle, error)

	// Stylesheet renders every currently injected rule set as CSS text,
	// in injection order
	Stylesheet() string
}
