package ports

// BrowserLauncher opens the served slideshow in a local browser
type BrowserLauncher interface {
	// Launch opens the URL in the first available browser. With noOpen
	// set it does nothing, for headless and CI runs.
	Launch(url string, noOpen bool) error
	// Detect reports the browser Launch would use
	Detect() (string, error)
}
