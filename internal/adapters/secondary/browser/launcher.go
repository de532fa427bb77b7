package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// Launcher opens the served slideshow in a local browser.
type Launcher struct {
	candidates []candidate
}

// candidate is one way of opening a URL on the current platform. The
// URL is appended to args at launch time.
type candidate struct {
	name string
	bin  string
	args []string
}

// NewLauncher creates a launcher with the candidates for this platform.
func NewLauncher() *Launcher {
	return &Launcher{candidates: platformCandidates(runtime.GOOS)}
}

// Launch opens url in the first available browser. With noOpen set it
// does nothing, for headless and CI runs.
func (l *Launcher) Launch(url string, noOpen bool) error {
	if noOpen {
		return nil
	}

	chosen, err := l.firstAvailable()
	if err != nil {
		return fmt.Errorf("browser selection: %w", err)
	}

	argv := append(append([]string{}, chosen.args...), url)
	cmd := exec.Command(chosen.bin, argv...) // #nosec G204 - bin comes from the fixed platform table
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching %s: %w", chosen.name, err)
	}

	// Reap the child without blocking on it
	go func() { _ = cmd.Wait() }()

	return nil
}

// Detect reports the browser Launch would use.
func (l *Launcher) Detect() (string, error) {
	chosen, err := l.firstAvailable()
	if err != nil {
		return "", err
	}
	return chosen.name, nil
}

// firstAvailable returns the first candidate whose binary resolves in
// PATH.
func (l *Launcher) firstAvailable() (candidate, error) {
	if len(l.candidates) == 0 {
		return candidate{}, errors.New("no browser candidates for this platform")
	}

	for _, c := range l.candidates {
		if _, err := exec.LookPath(c.bin); err == nil {
			return c, nil
		}
	}

	return candidate{}, errors.New("no usable browser found")
}

// platformCandidates lists launch commands per platform, preferred
// browsers first so Detect names a real one when it is installed.
func platformCandidates(goos string) []candidate {
	switch goos {
	case "darwin":
		return []candidate{
			{name: "Chrome", bin: "open", args: []string{"-a", "Google Chrome"}},
			{name: "Safari", bin: "open", args: []string{"-a", "Safari"}},
			{name: "Firefox", bin: "open", args: []string{"-a", "Firefox"}},
			{name: "Default", bin: "open"},
		}
	case "linux":
		return []candidate{
			{name: "xdg-open", bin: "xdg-open"},
			{name: "Chrome", bin: "google-chrome"},
			{name: "Firefox", bin: "firefox"},
		}
	case "windows":
		return []candidate{
			{name: "Default", bin: "cmd", args: []string{"/c", "start"}},
			{name: "Chrome", bin: "cmd", args: []string{"/c", "start", "chrome"}},
			{name: "Edge", bin: "cmd", args: []string{"/c", "start", "msedge"}},
		}
	default:
		return nil
	}
}

var _ ports.BrowserLauncher = (*Launcher)(nil)
