package services

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// Fake collaborators. Elements and the event bus are plain fakes
// because the controller touches them many times per transition;
// expectation-style mocks would drown the assertions.

type fakeElement struct {
	id       string
	tag      string
	parent   *fakeElement
	children []*fakeElement
	classes  map[string]bool
	attrs    map[string]string
}

func newFakeElement(id, tag string, parent *fakeElement) *fakeElement {
	el := &fakeElement{
		id:      id,
		tag:     tag,
		parent:  parent,
		classes: make(map[string]bool),
		attrs:   make(map[string]string),
	}
	if parent != nil {
		parent.children = append(parent.children, el)
	}
	return el
}

func (e *fakeElement) ID() string  { return e.id }
func (e *fakeElement) Tag() string { return e.tag }

func (e *fakeElement) Parent() ports.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *fakeElement) Children() []ports.Element {
	out := make([]ports.Element, len(e.children))
	for i, child := range e.children {
		out[i] = child
	}
	return out
}

// Matches supports single-class selectors, which is all the fixtures use
func (e *fakeElement) Matches(selector string) (bool, error) {
	name := strings.TrimPrefix(selector, ".")
	return e.classes[name], nil
}

func (e *fakeElement) AddClass(name string)    { e.classes[name] = true }
func (e *fakeElement) RemoveClass(name string) { delete(e.classes, name) }
func (e *fakeElement) HasClass(name string) bool {
	return e.classes[name]
}

func (e *fakeElement) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *fakeElement) SetAttr(name, value string) { e.attrs[name] = value }
func (e *fakeElement) RemoveAttr(name string)     { delete(e.attrs, name) }

type fakeDocument struct {
	root     *fakeElement
	bySelect map[string][]ports.Element
	byID     map[string]ports.Element
}

func (d *fakeDocument) Root() ports.Element { return d.root }

func (d *fakeDocument) Query(scope ports.Element, selector string) ([]ports.Element, error) {
	return d.bySelect[selector], nil
}

func (d *fakeDocument) ElementByID(id string) (ports.Element, bool) {
	el, ok := d.byID[id]
	return el, ok
}

func (d *fakeDocument) RenderHTML() (string, error) { return "", nil }

type fakeTask struct {
	fn       func()
	delay    time.Duration
	canceled bool
	fired    bool
}

func (t *fakeTask) Cancel() bool {
	if t.canceled || t.fired {
		return false
	}
	t.canceled = true
	return true
}

func (t *fakeTask) fire() {
	if t.canceled || t.fired {
		return
	}
	t.fired = true
	t.fn()
}

type fakeScheduler struct {
	tasks []*fakeTask
}

func (s *fakeScheduler) Schedule(d time.Duration, fn func()) ports.ScheduledTask {
	task := &fakeTask{fn: fn, delay: d}
	s.tasks = append(s.tasks, task)
	return task
}

func (s *fakeScheduler) pending() []*fakeTask {
	var out []*fakeTask
	for _, task := range s.tasks {
		if !task.canceled && !task.fired {
			out = append(out, task)
		}
	}
	return out
}

// fireNext fires the oldest pending task
func (s *fakeScheduler) fireNext(t *testing.T) {
	t.Helper()
	pending := s.pending()
	require.NotEmpty(t, pending, "no pending scheduled task to fire")
	pending[0].fire()
}

type fakeSub struct {
	canceled bool
}

func (s *fakeSub) Cancel() { s.canceled = true }

type busEntry struct {
	eventType entities.EventType
	handler   ports.EventHandler
	sub       *fakeSub
}

type fakeBus struct {
	entries []busEntry
}

func (b *fakeBus) Subscribe(t entities.EventType, h ports.EventHandler) ports.Subscription {
	sub := &fakeSub{}
	b.entries = append(b.entries, busEntry{eventType: t, handler: h, sub: sub})
	return sub
}

func (b *fakeBus) Publish(event *entities.Event) {
	for _, entry := range b.entries {
		if entry.sub.canceled || entry.eventType != event.Type {
			continue
		}
		if event.Consumed() {
			return
		}
		entry.handler(event)
	}
}

func (b *fakeBus) activeCount() int {
	n := 0
	for _, entry := range b.entries {
		if !entry.sub.canceled {
			n++
		}
	}
	return n
}

type fakeStyleHandle struct {
	removed bool
}

func (h *fakeStyleHandle) Remove() { h.removed = true }

type fakeStyles struct {
	handles []*fakeStyleHandle
	rules   [][]ports.StyleRule
	err     error
}

func (s *fakeStyles) Inject(scope ports.Element, rules []ports.StyleRule) (ports.StyleHandle, error) {
	if s.err != nil {
		return nil, s.err
	}
	handle := &fakeStyleHandle{}
	s.handles = append(s.handles, handle)
	s.rules = append(s.rules, rules)
	return handle, nil
}

func (s *fakeStyles) Stylesheet() string { return "" }

type fakeImages struct {
	loaded []string
	err    error
}

func (f *fakeImages) Load(ctx context.Context, slide ports.Element, opts entities.ImageLoadConfig) error {
	if f.err != nil {
		return f.err
	}
	f.loaded = append(f.loaded, slide.ID())
	return nil
}

type fakeViewport struct {
	geo entities.Viewport
}

func (v *fakeViewport) Geometry() entities.Viewport { return v.geo }

type fakeCaps struct {
	touch bool
}

func (c *fakeCaps) Touch() bool { return c.touch }

var (
	_ ports.Element         = (*fakeElement)(nil)
	_ ports.DocumentQuerier = (*fakeDocument)(nil)
	_ ports.Scheduler       = (*fakeScheduler)(nil)
	_ ports.EventRegistrar  = (*fakeBus)(nil)
	_ ports.StyleInjector   = (*fakeStyles)(nil)
	_ ports.ImageLoader     = (*fakeImages)(nil)
	_ ports.ViewportQuery   = (*fakeViewport)(nil)
	_ ports.Capabilities    = (*fakeCaps)(nil)
)

func boolPtr(b bool) *bool { return &b }

func testOptions() entities.SlideshowConfig {
	return entities.SlideshowConfig{
		Controls: entities.ControlsConfig{
			Previous:   ".previous",
			Next:       ".next",
			Indicators: ".indicator",
		},
	}
}

type controllerFixture struct {
	root       *fakeElement
	slides     []*fakeElement
	indicators []*fakeElement
	prev       *fakeElement
	next       *fakeElement
	nextLabel  *fakeElement
	outside    *fakeElement
	doc        *fakeDocument
	styles     *fakeStyles
	images     *fakeImages
	bus        *fakeBus
	viewport   *fakeViewport
	caps       *fakeCaps
	scheduler  *fakeScheduler
	controller *SlideController
}

// newControllerFixture builds a container with n slides, n indicators,
// previous/next controls (the next control wraps a label span so walks
// have an ancestor chain to climb), and one element outside the
// container. The viewport starts in view.
func newControllerFixture(n int, opts entities.SlideshowConfig, hooks Hooks) *controllerFixture {
	root := newFakeElement("root", "div", nil)
	root.AddClass("slideshow")

	doc := &fakeDocument{
		root:     root,
		bySelect: make(map[string][]ports.Element),
		byID:     map[string]ports.Element{"root": root},
	}

	f := &controllerFixture{
		root:      root,
		doc:       doc,
		styles:    &fakeStyles{},
		images:    &fakeImages{},
		bus:       &fakeBus{},
		viewport:  &fakeViewport{geo: entities.Viewport{Height: 800, Container: entities.Rect{Top: 100, Height: 400}}},
		caps:      &fakeCaps{},
		scheduler: &fakeScheduler{},
	}

	for i := 0; i < n; i++ {
		slide := newFakeElement("slide-"+strconv.Itoa(i), "div", root)
		slide.AddClass("slide")
		f.slides = append(f.slides, slide)
		doc.bySelect[".slide"] = append(doc.bySelect[".slide"], slide)
		doc.byID[slide.id] = slide

		indicator := newFakeElement("indicator-"+strconv.Itoa(i), "span", root)
		indicator.AddClass("indicator")
		f.indicators = append(f.indicators, indicator)
		doc.bySelect[".indicator"] = append(doc.bySelect[".indicator"], indicator)
		doc.byID[indicator.id] = indicator
	}

	f.prev = newFakeElement("prev", "a", root)
	f.prev.AddClass("previous")
	doc.byID["prev"] = f.prev

	f.next = newFakeElement("next", "a", root)
	f.next.AddClass("next")
	doc.byID["next"] = f.next

	f.nextLabel = newFakeElement("next-label", "span", f.next)
	doc.byID["next-label"] = f.nextLabel

	f.outside = newFakeElement("outside", "div", nil)
	f.outside.AddClass("next")
	doc.byID["outside"] = f.outside

	f.controller = NewSlideController(
		root, doc, f.styles, f.images, f.bus, f.viewport, f.caps, f.scheduler,
		opts, hooks, nil,
	)

	return f
}

func (f *controllerFixture) layout(t *testing.T) {
	t.Helper()
	require.NoError(t, f.controller.Layout(context.Background(), nil))
}

func (f *controllerFixture) click(id string) *entities.Event {
	event := &entities.Event{Type: entities.EventClick, TargetID: id}
	f.bus.Publish(event)
	return event
}

func (f *controllerFixture) press(key string) *entities.Event {
	event := &entities.Event{Type: entities.EventKeyDown, Key: key}
	f.bus.Publish(event)
	return event
}

func (f *controllerFixture) hoverIn() {
	f.bus.Publish(&entities.Event{Type: entities.EventMouseOver, TargetID: "root"})
}

func (f *controllerFixture) hoverOut() {
	f.bus.Publish(&entities.Event{Type: entities.EventMouseOut, TargetID: "root"})
}

// activeIndices returns the indices currently carrying the active marker
func activeIndices(elements []*fakeElement) []int {
	var out []int
	for i, el := range elements {
		if el.HasClass(activeClass) {
			out = append(out, i)
		}
	}
	return out
}

func TestSlideControllerLayout(t *testing.T) {
	t.Run("activates index zero and loads images", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)

		assert.Equal(t, 0, f.controller.Index())
		assert.Equal(t, 3, f.controller.Count())
		assert.Equal(t, []int{0}, activeIndices(f.slides))
		assert.Equal(t, []int{0}, activeIndices(f.indicators))
		assert.Equal(t, []string{"slide-0", "slide-1", "slide-2"}, f.images.loaded)
	})

	t.Run("injects presentation styles once", func(t *testing.T) {
		f := newControllerFixture(2, testOptions(), Hooks{})
		f.layout(t)
		f.layout(t)

		require.Len(t, f.styles.handles, 1)
		assert.False(t, f.styles.handles[0].removed)
	})

	t.Run("registers interaction listeners", func(t *testing.T) {
		f := newControllerFixture(2, testOptions(), Hooks{})
		f.layout(t)

		// click, keydown, resize, mouseover, mouseout
		assert.Equal(t, 5, f.bus.activeCount())
	})

	t.Run("touch clients skip hover wiring", func(t *testing.T) {
		f := newControllerFixture(2, testOptions(), Hooks{})
		f.caps.touch = true
		f.layout(t)

		assert.Equal(t, 3, f.bus.activeCount())

		// Hover events must not suspend anything
		f.hoverIn()
		assert.False(t, f.controller.State().Interacting)
	})

	t.Run("relayout replaces listeners instead of stacking them", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)
		require.True(t, f.controller.RequestIndex(2))

		f.layout(t)

		assert.Equal(t, 5, f.bus.activeCount())
		assert.Equal(t, 0, f.controller.Index())
		assert.Equal(t, []int{0}, activeIndices(f.slides))
	})

	t.Run("invokes layout hooks in order", func(t *testing.T) {
		var calls []string
		hooks := Hooks{
			BeforeLayout: func() { calls = append(calls, "before") },
			AfterLayout:  func() { calls = append(calls, "after") },
		}
		f := newControllerFixture(1, testOptions(), hooks)
		f.layout(t)

		assert.Equal(t, []string{"before", "after"}, calls)
	})
}

func TestSlideControllerRequestIndex(t *testing.T) {
	t.Run("accepts in-range requests", func(t *testing.T) {
		f := newControllerFixture(5, testOptions(), Hooks{})
		f.layout(t)

		assert.True(t, f.controller.RequestIndex(3))
		assert.Equal(t, 3, f.controller.Index())
		assert.Equal(t, []int{3}, activeIndices(f.slides))
		assert.Equal(t, []int{3}, activeIndices(f.indicators))
	})

	t.Run("wraps negative request to the last slide", func(t *testing.T) {
		f := newControllerFixture(5, testOptions(), Hooks{})
		f.layout(t)

		assert.True(t, f.controller.RequestIndex(-1))
		assert.Equal(t, 4, f.controller.Index())
		assert.True(t, f.slides[4].HasClass(activeClass))
		assert.False(t, f.slides[0].HasClass(activeClass))
	})

	t.Run("wraps any request modulo the slide count", func(t *testing.T) {
		f := newControllerFixture(5, testOptions(), Hooks{})
		f.layout(t)

		cases := map[int]int{5: 0, 7: 2, -1: 4, -6: 4}
		for request, expected := range cases {
			require.True(t, f.controller.RequestIndex(request), "request %d", request)
			assert.Equal(t, expected, f.controller.Index(), "request %d", request)
			assert.Equal(t, []int{expected}, activeIndices(f.slides))
		}
	})

	t.Run("rejects out-of-range requests when loop is off", func(t *testing.T) {
		opts := testOptions()
		opts.Loop = boolPtr(false)
		f := newControllerFixture(3, opts, Hooks{})
		f.layout(t)
		require.True(t, f.controller.RequestIndex(2))

		assert.False(t, f.controller.RequestIndex(3))
		assert.Equal(t, 2, f.controller.Index())
		assert.Equal(t, []int{2}, activeIndices(f.slides))

		assert.False(t, f.controller.RequestIndex(-1))
		assert.Equal(t, 2, f.controller.Index())
	})

	t.Run("rejection touches no timers", func(t *testing.T) {
		opts := testOptions()
		opts.Loop = boolPtr(false)
		opts.TransitionMs = 100
		f := newControllerFixture(2, opts, Hooks{})
		f.layout(t)

		scheduled := len(f.scheduler.tasks)
		assert.False(t, f.controller.RequestIndex(5))
		assert.Len(t, f.scheduler.tasks, scheduled)
		assert.False(t, f.controller.State().Locked)
	})

	t.Run("no-ops with zero slides", func(t *testing.T) {
		f := newControllerFixture(0, testOptions(), Hooks{})
		f.layout(t)

		assert.Equal(t, 0, f.controller.Count())
		assert.False(t, f.controller.RequestIndex(0))
		assert.False(t, f.controller.Next())
		assert.False(t, f.controller.Previous())
		assert.Equal(t, 0, f.controller.Index())
	})

	t.Run("rejected before layout", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})

		assert.False(t, f.controller.RequestIndex(1))
	})

	t.Run("exactly one active marker after any transition", func(t *testing.T) {
		f := newControllerFixture(4, testOptions(), Hooks{})
		f.layout(t)

		for _, request := range []int{2, -1, 9, 0, 3, 3} {
			require.True(t, f.controller.RequestIndex(request))
			assert.Len(t, activeIndices(f.slides), 1, "request %d", request)
			assert.Len(t, activeIndices(f.indicators), 1, "request %d", request)
		}
	})
}

func TestSlideControllerTransitionLock(t *testing.T) {
	t.Run("locks after a transition and clears on expiry", func(t *testing.T) {
		opts := testOptions()
		opts.TransitionMs = 250
		f := newControllerFixture(3, opts, Hooks{})
		f.layout(t)

		require.True(t, f.controller.Next())
		assert.True(t, f.controller.State().Locked)

		pending := f.scheduler.pending()
		require.Len(t, pending, 1)
		assert.Equal(t, 250*time.Millisecond, pending[0].delay)

		pending[0].fire()
		assert.False(t, f.controller.State().Locked)
	})

	t.Run("clicks are skipped while locked", func(t *testing.T) {
		opts := testOptions()
		opts.TransitionMs = 250
		f := newControllerFixture(3, opts, Hooks{})
		f.layout(t)
		require.True(t, f.controller.Next())

		event := f.click("next")
		assert.Equal(t, 1, f.controller.Index())
		assert.False(t, event.Consumed())
	})

	t.Run("keyboard is ignored while locked", func(t *testing.T) {
		opts := testOptions()
		opts.TransitionMs = 250
		f := newControllerFixture(3, opts, Hooks{})
		f.layout(t)
		require.True(t, f.controller.Next())

		event := f.press(entities.KeyArrowRight)
		assert.Equal(t, 1, f.controller.Index())
		assert.False(t, event.Consumed())
	})

	t.Run("direct index writes are not lock-gated", func(t *testing.T) {
		opts := testOptions()
		opts.TransitionMs = 250
		f := newControllerFixture(3, opts, Hooks{})
		f.layout(t)
		require.True(t, f.controller.Next())
		require.True(t, f.controller.State().Locked)

		assert.True(t, f.controller.RequestIndex(2))
		assert.Equal(t, 2, f.controller.Index())
	})

	t.Run("rearming replaces the pending clear without stacking", func(t *testing.T) {
		opts := testOptions()
		opts.TransitionMs = 250
		f := newControllerFixture(5, opts, Hooks{})
		f.layout(t)

		require.True(t, f.controller.RequestIndex(1))
		first := f.scheduler.pending()[0]
		require.True(t, f.controller.RequestIndex(2))

		assert.True(t, first.canceled)
		assert.Len(t, f.scheduler.pending(), 1)

		// The stale clear must not unlock the rearmed window
		first.fn()
		assert.True(t, f.controller.State().Locked)

		f.scheduler.fireNext(t)
		assert.False(t, f.controller.State().Locked)
	})
}

func TestSlideControllerAutoplay(t *testing.T) {
	autoplayOptions := func(delayMs int) entities.SlideshowConfig {
		opts := testOptions()
		opts.Autoplay.Enabled = boolPtr(true)
		opts.Autoplay.DelayMs = delayMs
		return opts
	}

	t.Run("layout schedules the first advance", func(t *testing.T) {
		f := newControllerFixture(3, autoplayOptions(1000), Hooks{})
		f.layout(t)

		state := f.controller.State()
		assert.Equal(t, entities.AutoplayScheduled, state.Autoplay)

		pending := f.scheduler.pending()
		require.Len(t, pending, 1)
		assert.Equal(t, time.Second, pending[0].delay)
	})

	t.Run("fire advances by one and reschedules", func(t *testing.T) {
		f := newControllerFixture(3, autoplayOptions(1000), Hooks{})
		f.layout(t)

		f.scheduler.fireNext(t)
		assert.Equal(t, 1, f.controller.Index())
		assert.Equal(t, entities.AutoplayScheduled, f.controller.State().Autoplay)
		assert.Len(t, f.scheduler.pending(), 1)

		f.scheduler.fireNext(t)
		assert.Equal(t, 2, f.controller.Index())

		// Loops back around the edge
		f.scheduler.fireNext(t)
		assert.Equal(t, 0, f.controller.Index())
		assert.Equal(t, entities.AutoplayScheduled, f.controller.State().Autoplay)
	})

	t.Run("stops at the boundary when loop is off", func(t *testing.T) {
		opts := autoplayOptions(1000)
		opts.Loop = boolPtr(false)
		f := newControllerFixture(2, opts, Hooks{})
		f.layout(t)

		f.scheduler.fireNext(t)
		require.Equal(t, 1, f.controller.Index())

		f.scheduler.fireNext(t)
		assert.Equal(t, 1, f.controller.Index())
		assert.Equal(t, entities.AutoplayStopped, f.controller.State().Autoplay)
		assert.Empty(t, f.scheduler.pending())
	})

	t.Run("never has two pending timers", func(t *testing.T) {
		f := newControllerFixture(4, autoplayOptions(1000), Hooks{})
		f.layout(t)

		// Every accepted transition cancels and reschedules
		require.True(t, f.controller.Next())
		require.True(t, f.controller.RequestIndex(3))
		assert.Len(t, f.scheduler.pending(), 1)

		// A second leave without an enter must not schedule another
		f.hoverIn()
		f.hoverOut()
		f.hoverOut()
		assert.Len(t, f.scheduler.pending(), 1)
	})

	t.Run("navigation resets the pending delay", func(t *testing.T) {
		f := newControllerFixture(4, autoplayOptions(1000), Hooks{})
		f.layout(t)

		first := f.scheduler.pending()[0]
		require.True(t, f.controller.Next())

		assert.True(t, first.canceled)
		assert.Len(t, f.scheduler.pending(), 1)
	})

	t.Run("interaction suspends and resumes autoplay", func(t *testing.T) {
		ended := 0
		hooks := Hooks{AfterInteractionEnd: func() { ended++ }}
		f := newControllerFixture(3, autoplayOptions(1000), hooks)
		f.layout(t)
		require.Equal(t, entities.AutoplayScheduled, f.controller.State().Autoplay)

		f.hoverIn()
		state := f.controller.State()
		assert.True(t, state.Interacting)
		assert.Equal(t, entities.AutoplayStopped, state.Autoplay)
		assert.Empty(t, f.scheduler.pending())

		f.hoverOut()
		state = f.controller.State()
		assert.False(t, state.Interacting)
		assert.Equal(t, entities.AutoplayScheduled, state.Autoplay)
		assert.Equal(t, 1, ended)
	})

	t.Run("repeated enters do not double-suspend", func(t *testing.T) {
		ended := 0
		hooks := Hooks{AfterInteractionEnd: func() { ended++ }}
		f := newControllerFixture(3, autoplayOptions(1000), hooks)
		f.layout(t)

		f.hoverIn()
		f.hoverIn()
		f.hoverOut()

		assert.Equal(t, 1, ended)
		assert.Len(t, f.scheduler.pending(), 1)
	})

	t.Run("no suspension while autoplay disabled still fires callback", func(t *testing.T) {
		ended := 0
		hooks := Hooks{AfterInteractionEnd: func() { ended++ }}
		f := newControllerFixture(3, testOptions(), hooks)
		f.layout(t)

		f.hoverIn()
		f.hoverOut()

		// Leave fires the callback and attempts a start, which no-ops
		assert.Equal(t, 1, ended)
		assert.Equal(t, entities.AutoplayStopped, f.controller.State().Autoplay)
		assert.Empty(t, f.scheduler.pending())
	})

	t.Run("transitions during interaction do not reschedule", func(t *testing.T) {
		f := newControllerFixture(4, autoplayOptions(1000), Hooks{})
		f.layout(t)

		f.hoverIn()
		require.True(t, f.controller.Next())

		assert.Equal(t, entities.AutoplayStopped, f.controller.State().Autoplay)
		assert.Empty(t, f.scheduler.pending())
	})

	t.Run("panicking interaction callback is recovered", func(t *testing.T) {
		hooks := Hooks{AfterInteractionEnd: func() { panic("callback exploded") }}
		f := newControllerFixture(3, autoplayOptions(1000), hooks)
		f.layout(t)

		f.hoverIn()
		assert.NotPanics(t, func() { f.hoverOut() })

		// Autoplay still resumes after the recovered panic
		assert.Equal(t, entities.AutoplayScheduled, f.controller.State().Autoplay)
	})
}

func TestSlideControllerControlResolution(t *testing.T) {
	t.Run("next control advances", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)

		event := f.click("next")
		assert.Equal(t, 1, f.controller.Index())
		assert.True(t, event.Consumed())
	})

	t.Run("previous control wraps from the first slide", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)

		f.click("prev")
		assert.Equal(t, 2, f.controller.Index())
	})

	t.Run("resolves through the ancestor chain", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)

		// The label span has no control class; its parent anchor does
		f.click("next-label")
		assert.Equal(t, 1, f.controller.Index())
	})

	t.Run("indicator jumps to its position", func(t *testing.T) {
		f := newControllerFixture(5, testOptions(), Hooks{})
		f.layout(t)

		f.click("indicator-3")
		assert.Equal(t, 3, f.controller.Index())
		assert.Equal(t, []int{3}, activeIndices(f.indicators))
	})

	t.Run("click without a control ancestor is ignored", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)

		event := f.click("slide-1")
		assert.Equal(t, 0, f.controller.Index())
		assert.False(t, event.Consumed())
	})

	t.Run("clicks outside the container are ignored", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)

		// The outside element even matches the next selector
		event := f.click("outside")
		assert.Equal(t, 0, f.controller.Index())
		assert.False(t, event.Consumed())
	})

	t.Run("unknown target is ignored", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)

		f.click("nope")
		assert.Equal(t, 0, f.controller.Index())
	})

	t.Run("controls do nothing without configured selectors", func(t *testing.T) {
		opts := testOptions()
		opts.Controls = entities.ControlsConfig{}
		f := newControllerFixture(3, opts, Hooks{})
		f.layout(t)

		f.click("next")
		assert.Equal(t, 0, f.controller.Index())
	})
}

func TestSlideControllerKeyboard(t *testing.T) {
	t.Run("arrow keys navigate", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)

		right := f.press(entities.KeyArrowRight)
		assert.Equal(t, 1, f.controller.Index())
		assert.True(t, right.Consumed())

		left := f.press(entities.KeyArrowLeft)
		assert.Equal(t, 0, f.controller.Index())
		assert.True(t, left.Consumed())
	})

	t.Run("other keys are ignored and not consumed", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)

		event := f.press("Enter")
		assert.Equal(t, 0, f.controller.Index())
		assert.False(t, event.Consumed())
	})

	t.Run("recognized keys are consumed even when rejected", func(t *testing.T) {
		opts := testOptions()
		opts.Loop = boolPtr(false)
		f := newControllerFixture(3, opts, Hooks{})
		f.layout(t)

		event := f.press(entities.KeyArrowLeft)
		assert.Equal(t, 0, f.controller.Index())
		assert.True(t, event.Consumed())
	})

	t.Run("ignored when the container is below the viewport", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)
		f.viewport.geo = entities.Viewport{Height: 800, Container: entities.Rect{Top: 900, Height: 400}}

		event := f.press(entities.KeyArrowRight)
		assert.Equal(t, 0, f.controller.Index())
		assert.False(t, event.Consumed())
	})

	t.Run("ignored when the container is above the viewport", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)
		f.viewport.geo = entities.Viewport{Height: 800, Container: entities.Rect{Top: -500, Height: 400}}

		f.press(entities.KeyArrowRight)
		assert.Equal(t, 0, f.controller.Index())
	})

	t.Run("ignored before any geometry is reported", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)
		f.viewport.geo = entities.Viewport{}

		f.press(entities.KeyArrowRight)
		assert.Equal(t, 0, f.controller.Index())
	})
}

func TestSlideControllerDestroy(t *testing.T) {
	t.Run("cancels timers and listeners atomically", func(t *testing.T) {
		opts := testOptions()
		opts.TransitionMs = 250
		opts.Autoplay.Enabled = boolPtr(true)
		f := newControllerFixture(3, opts, Hooks{})
		f.layout(t)
		require.True(t, f.controller.Next())
		require.NotEmpty(t, f.scheduler.pending())

		f.controller.Destroy()

		assert.Empty(t, f.scheduler.pending())
		assert.Equal(t, 0, f.bus.activeCount())
		require.Len(t, f.styles.handles, 1)
		assert.True(t, f.styles.handles[0].removed)
	})

	t.Run("stale timer callbacks have no effect after destroy", func(t *testing.T) {
		opts := testOptions()
		opts.Autoplay.Enabled = boolPtr(true)
		f := newControllerFixture(3, opts, Hooks{})
		f.layout(t)

		stale := f.scheduler.pending()[0]
		f.controller.Destroy()

		// Simulate a fire that lost the cancellation race
		stale.fn()
		assert.Equal(t, 0, f.controller.Index())
		assert.Empty(t, f.scheduler.pending())
	})

	t.Run("events after destroy are inert", func(t *testing.T) {
		f := newControllerFixture(3, testOptions(), Hooks{})
		f.layout(t)
		f.controller.Destroy()

		f.click("next")
		f.press(entities.KeyArrowRight)
		assert.Equal(t, 0, f.controller.Index())
	})

	t.Run("idempotent", func(t *testing.T) {
		destroyed := 0
		hooks := Hooks{AfterDestroy: func() { destroyed++ }}
		f := newControllerFixture(2, testOptions(), hooks)
		f.layout(t)

		f.controller.Destroy()
		f.controller.Destroy()

		assert.Equal(t, 1, destroyed)
	})

	t.Run("safe without layout", func(t *testing.T) {
		f := newControllerFixture(2, testOptions(), Hooks{})

		assert.NotPanics(t, func() { f.controller.Destroy() })
	})

	t.Run("invokes destroy hooks in order", func(t *testing.T) {
		var calls []string
		hooks := Hooks{
			BeforeDestroy: func() { calls = append(calls, "before") },
			AfterDestroy:  func() { calls = append(calls, "after") },
		}
		f := newControllerFixture(2, testOptions(), hooks)
		f.layout(t)
		f.controller.Destroy()

		assert.Equal(t, []string{"before", "after"}, calls)
	})
}

func TestSlideControllerStateChanges(t *testing.T) {
	t.Run("notifies on accepted transitions only", func(t *testing.T) {
		var states []entities.ControllerState
		hooks := Hooks{OnStateChange: func(s entities.ControllerState) { states = append(states, s) }}
		opts := testOptions()
		opts.Loop = boolPtr(false)
		f := newControllerFixture(3, opts, hooks)
		f.layout(t)

		statesAfterLayout := len(states)
		require.True(t, f.controller.Next())
		assert.Len(t, states, statesAfterLayout+1)
		assert.Equal(t, 1, states[len(states)-1].Index)

		require.True(t, f.controller.RequestIndex(2))
		f.controller.RequestIndex(9) // rejected
		assert.Len(t, states, statesAfterLayout+2)
		assert.Equal(t, 2, states[len(states)-1].Index)
	})

	t.Run("resize runs the configured callback", func(t *testing.T) {
		resized := 0
		hooks := Hooks{AfterResize: func() { resized++ }}
		f := newControllerFixture(2, testOptions(), hooks)
		f.layout(t)

		f.bus.Publish(&entities.Event{Type: entities.EventResize})
		assert.Equal(t, 1, resized)
	})
}
