package styles

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// Injector keeps the active presentation rule sets and renders them as
// one stylesheet for the page shell. Injection scopes every selector
// under the target element's stamped identifier, so rules never leak
// outside the container they were injected for.
type Injector struct {
	mu     sync.RWMutex
	blocks []*block
}

type block struct {
	inj     *Injector
	css     string
	removed bool
}

// NewInjector creates an empty style injector
func NewInjector() *Injector {
	return &Injector{}
}

// Inject installs the rules scoped to the given element and returns a
// handle for later removal
func (i *Injector) Inject(scope ports.Element, rules []ports.StyleRule) (ports.StyleHandle, error) {
	prefix := ""
	if scope != nil {
		prefix = fmt.Sprintf("[%s=%q] ", entities.SyntheticIDAttr, scope.ID())
	}

	b := &block{inj: i, css: renderCSS(prefix, rules)}

	i.mu.Lock()
	i.blocks = append(i.blocks, b)
	i.mu.Unlock()

	return b, nil
}

// Stylesheet renders every active rule set in injection order
func (i *Injector) Stylesheet() string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var sb strings.Builder
	for _, b := range i.blocks {
		if b.removed {
			continue
		}
		sb.WriteString(b.css)
	}
	return sb.String()
}

// Remove withdraws the block from the stylesheet. Removing twice is a
// no-op.
func (b *block) Remove() {
	b.inj.mu.Lock()
	defer b.inj.mu.Unlock()
	b.removed = true
}

// renderCSS renders rules in slice order with sorted declarations, so
// the same input always yields the same stylesheet text
func renderCSS(prefix string, rules []ports.StyleRule) string {
	var sb strings.Builder
	for _, rule := range rules {
		sb.WriteString(prefix + rule.Selector + " {\n")

		keys := make([]string, 0, len(rule.Declarations))
		for k := range rule.Declarations {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %s;\n", k, rule.Declarations[k])
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}

var (
	_ ports.StyleInjector = (*Injector)(nil)
	_ ports.StyleHandle   = (*block)(nil)
)
