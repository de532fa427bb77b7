package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// activeClass marks the currently shown slide and its indicator
const activeClass = "active"

// Hooks are the optional extension callbacks around the controller
// lifecycle. Nil hooks are skipped with a debug log; a panicking hook
// is recovered and logged, never propagated.
type Hooks struct {
	BeforeLayout        func()
	AfterLayout         func()
	BeforeDestroy       func()
	AfterDestroy        func()
	AfterInteractionEnd func()
	AfterResize         func()

	// OnStateChange receives a state snapshot after every accepted
	// transition, for broadcasting to connected clients.
	OnStateChange func(entities.ControllerState)
}

// SlideController owns the slide-index state machine: which slide is
// active, how transitions are throttled by the transition lock, and how
// autoplay interacts with user activity. Interaction events and timer
// callbacks may arrive on any goroutine; every transition is serialized
// behind one mutex, and user callbacks run outside it so they can
// navigate re-entrantly.
type SlideController struct {
	root      ports.Element
	doc       ports.DocumentQuerier
	styles    ports.StyleInjector
	images    ports.ImageLoader
	events    ports.EventRegistrar
	viewport  ports.ViewportQuery
	caps      ports.Capabilities
	scheduler ports.Scheduler
	hooks     Hooks
	logger    *slog.Logger

	mu          sync.Mutex
	opts        entities.SlideshowConfig
	live        bool
	index       int
	slides      []ports.Element
	indicators  []ports.Element
	locked      bool
	lockSeq     uint64
	lockTask    ports.ScheduledTask
	autoplay    entities.AutoplayState
	autoSeq     uint64
	autoTask    ports.ScheduledTask
	interacting bool
	subs        []ports.Subscription
	styleHandle ports.StyleHandle
}

// NewSlideController creates a controller bound to the root container.
// The controller is inert until Layout is called.
func NewSlideController(
	root ports.Element,
	doc ports.DocumentQuerier,
	styles ports.StyleInjector,
	images ports.ImageLoader,
	events ports.EventRegistrar,
	viewport ports.ViewportQuery,
	caps ports.Capabilities,
	scheduler ports.Scheduler,
	opts entities.SlideshowConfig,
	hooks Hooks,
	logger *slog.Logger,
) *SlideController {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlideController{
		root:      root,
		doc:       doc,
		styles:    styles,
		images:    images,
		events:    events,
		viewport:  viewport,
		caps:      caps,
		scheduler: scheduler,
		opts:      opts,
		hooks:     hooks,
		autoplay:  entities.AutoplayStopped,
		logger:    logger.With("service", "slide_controller"),
	}
}

// Layout merges the config override, injects the presentation styles,
// discovers the slide and indicator sets, activates index 0, triggers
// image loading, starts autoplay when enabled, and registers the
// interaction listeners. Calling Layout on a live controller tears
// down its listeners and timers first, then rebuilds against the
// current document.
func (c *SlideController) Layout(ctx context.Context, override *entities.SlideshowConfig) error {
	c.mu.Lock()
	c.opts = c.opts.Merged(override)
	c.mu.Unlock()

	c.safeCall("before_layout", c.hooks.BeforeLayout)

	c.mu.Lock()
	if c.live {
		c.teardownLocked(false)
	}

	if c.styleHandle == nil {
		handle, err := c.styles.Inject(c.root, presentationRules(c.opts))
		if err != nil {
			c.mu.Unlock()
			return fmt.Errorf("injecting presentation styles: %w", err)
		}
		c.styleHandle = handle
	}

	slides, err := c.doc.Query(c.root, c.opts.GetElementSelector())
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("discovering slides: %w", err)
	}
	c.slides = slides

	c.indicators = nil
	if sel := c.opts.Controls.Indicators; sel != "" {
		indicators, err := c.doc.Query(c.root, sel)
		if err != nil {
			c.mu.Unlock()
			return fmt.Errorf("discovering indicators: %w", err)
		}
		c.indicators = indicators
	}

	if len(c.slides) == 0 {
		c.logger.Warn("no slides discovered",
			slog.String("selector", c.opts.GetElementSelector()),
		)
	}

	c.index = 0
	c.activateLocked(0)

	for _, slide := range c.slides {
		if err := c.images.Load(ctx, slide, c.opts.Images); err != nil {
			c.logger.Warn("loading slide images",
				slog.String("slide", slide.ID()),
				slog.String("error", err.Error()),
			)
		}
	}

	c.live = true

	if c.opts.Autoplay.GetEnabled() {
		c.startAutoplayLocked()
	}

	c.subscribeLocked(entities.EventClick, c.handleClick)
	c.subscribeLocked(entities.EventKeyDown, c.handleKeyDown)
	c.subscribeLocked(entities.EventResize, c.handleResize)

	// Touch clients have no durable hover, so interaction-based
	// autoplay suspension is not wired for them.
	if !c.caps.Touch() {
		c.subscribeLocked(entities.EventMouseOver, c.handleMouseOver)
		c.subscribeLocked(entities.EventMouseOut, c.handleMouseOut)
	}

	snapshot := c.stateLocked()
	c.mu.Unlock()

	c.safeCall("after_layout", c.hooks.AfterLayout)
	c.notifyState(snapshot)

	return nil
}

// Destroy stops autoplay, cancels the transition-lock timer, removes
// every tracked listener registration, and removes the injected
// styles. No callback scheduled before Destroy has any effect after it
// returns. Safe to call repeatedly and after a partially failed Layout.
func (c *SlideController) Destroy() {
	c.mu.Lock()
	if !c.live && c.styleHandle == nil && len(c.subs) == 0 {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.safeCall("before_destroy", c.hooks.BeforeDestroy)

	c.mu.Lock()
	c.teardownLocked(true)
	c.mu.Unlock()

	c.safeCall("after_destroy", c.hooks.AfterDestroy)
}

// Index returns the current slide index
func (c *SlideController) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Count returns the number of discovered slides
func (c *SlideController) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slides)
}

// State returns a snapshot of the controller state
func (c *SlideController) State() entities.ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// RequestIndex requests a transition to index n and reports acceptance.
// Out-of-range requests wrap when loop is on and are rejected
// otherwise; a rejected request changes nothing, not even timers.
func (c *SlideController) RequestIndex(n int) bool {
	c.mu.Lock()
	if !c.live {
		c.mu.Unlock()
		return false
	}
	accepted := c.requestLocked(n)
	snapshot := c.stateLocked()
	c.mu.Unlock()

	if accepted {
		c.notifyState(snapshot)
	}
	return accepted
}

// Next requests an advance to the following slide
func (c *SlideController) Next() bool {
	c.mu.Lock()
	if !c.live {
		c.mu.Unlock()
		return false
	}
	accepted := c.requestLocked(c.index + 1)
	snapshot := c.stateLocked()
	c.mu.Unlock()

	if accepted {
		c.notifyState(snapshot)
	}
	return accepted
}

// Previous requests a retreat to the preceding slide
func (c *SlideController) Previous() bool {
	c.mu.Lock()
	if !c.live {
		c.mu.Unlock()
		return false
	}
	accepted := c.requestLocked(c.index - 1)
	snapshot := c.stateLocked()
	c.mu.Unlock()

	if accepted {
		c.notifyState(snapshot)
	}
	return accepted
}

// requestLocked applies the index request contract. On acceptance the
// active markers move first, then the transition lock is armed, then
// autoplay is rescheduled, so an observer of the markers never sees
// stale pending timers for the previous index.
func (c *SlideController) requestLocked(r int) bool {
	n := len(c.slides)
	if n == 0 {
		return false
	}

	next := r
	if r < 0 || r > n-1 {
		if !c.opts.GetLoop() {
			return false
		}
		next = ((r % n) + n) % n
	}

	c.index = next
	c.activateLocked(next)

	if d := c.opts.GetTransition(); d > 0 {
		c.armLockLocked(d)
	}

	if !c.interacting {
		c.stopAutoplayLocked()
		c.startAutoplayLocked()
	}

	return true
}

// activateLocked moves the active marker in one pass over the slide
// set and, when present, the indicator set. Exactly one of each
// carries the marker afterwards.
func (c *SlideController) activateLocked(next int) {
	if len(c.slides) == 0 {
		return
	}

	for i, slide := range c.slides {
		if i == next {
			slide.AddClass(activeClass)
		} else {
			slide.RemoveClass(activeClass)
		}
	}

	for i, indicator := range c.indicators {
		if i == next {
			indicator.AddClass(activeClass)
		} else {
			indicator.RemoveClass(activeClass)
		}
	}
}

// armLockLocked sets the transition lock and schedules its clear,
// replacing any still-pending clear so timers never stack.
func (c *SlideController) armLockLocked(d time.Duration) {
	if c.lockTask != nil {
		c.lockTask.Cancel()
	}

	c.lockSeq++
	seq := c.lockSeq
	c.locked = true
	c.lockTask = c.scheduler.Schedule(d, func() {
		c.clearLock(seq)
	})
}

// startAutoplayLocked schedules the next autoplay advance. It is a
// no-op when autoplay is disabled or already scheduled, so starting
// twice never produces two pending timers.
func (c *SlideController) startAutoplayLocked() {
	if !c.opts.Autoplay.GetEnabled() || c.autoplay == entities.AutoplayScheduled {
		return
	}

	c.autoSeq++
	seq := c.autoSeq
	c.autoplay = entities.AutoplayScheduled
	c.autoTask = c.scheduler.Schedule(c.opts.Autoplay.GetDelay(), func() {
		c.fireAutoplay(seq)
	})
}

// stopAutoplayLocked cancels any pending advance. Bumping the sequence
// invalidates a fire already in flight, so a late callback that lost
// the cancel race has no effect.
func (c *SlideController) stopAutoplayLocked() {
	if c.autoTask != nil {
		c.autoTask.Cancel()
		c.autoTask = nil
	}
	c.autoplay = entities.AutoplayStopped
	c.autoSeq++
}

// fireAutoplay is the autoplay timer callback: advance by one, then
// reschedule unless the advance was rejected at a boundary with loop
// off, in which case autoplay stays stopped.
func (c *SlideController) fireAutoplay(seq uint64) {
	c.mu.Lock()
	if !c.live || seq != c.autoSeq || c.autoplay != entities.AutoplayScheduled {
		c.mu.Unlock()
		return
	}

	c.autoplay = entities.AutoplayStopped
	c.autoTask = nil
	c.autoSeq++

	accepted := c.requestLocked(c.index + 1)
	snapshot := c.stateLocked()
	c.mu.Unlock()

	if accepted {
		c.notifyState(snapshot)
	}
}

// clearLock is the transition-lock timer callback
func (c *SlideController) clearLock(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.live || seq != c.lockSeq {
		return
	}
	c.locked = false
	c.lockTask = nil
}

// handleClick maps a click to a semantic action by walking the
// ancestor chain from the target toward the container root until an
// element matches a configured control selector. While the transition
// lock is set the whole resolution is skipped.
func (c *SlideController) handleClick(event *entities.Event) {
	c.mu.Lock()
	if !c.live || c.locked {
		c.mu.Unlock()
		return
	}

	target, ok := c.doc.ElementByID(event.TargetID)
	if !ok || !c.containsLocked(target) {
		c.mu.Unlock()
		return
	}

	action, jump := c.resolveControlLocked(target)

	var accepted bool
	switch action {
	case actionPrevious:
		accepted = c.requestLocked(c.index - 1)
	case actionNext:
		accepted = c.requestLocked(c.index + 1)
	case actionIndicator:
		accepted = c.requestLocked(jump)
	case actionNone:
		c.mu.Unlock()
		return
	}

	snapshot := c.stateLocked()
	c.mu.Unlock()

	event.Consume()
	if accepted {
		c.notifyState(snapshot)
	}
}

// handleKeyDown navigates with the arrow keys. Ignored while the
// transition lock is set or while the container is out of view; the
// in-view check is the container's top edge above the viewport bottom
// and its bottom edge below the viewport top.
func (c *SlideController) handleKeyDown(event *entities.Event) {
	c.mu.Lock()
	if !c.live || c.locked {
		c.mu.Unlock()
		return
	}

	geo := c.viewport.Geometry()
	if !geo.Container.InViewport(geo.Height) {
		c.mu.Unlock()
		return
	}

	var accepted, recognized bool
	switch event.Key {
	case entities.KeyArrowLeft:
		recognized = true
		accepted = c.requestLocked(c.index - 1)
	case entities.KeyArrowRight:
		recognized = true
		accepted = c.requestLocked(c.index + 1)
	}

	snapshot := c.stateLocked()
	c.mu.Unlock()

	if recognized {
		event.Consume()
	}
	if accepted {
		c.notifyState(snapshot)
	}
}

// handleMouseOver suspends autoplay while the pointer is over the
// container region
func (c *SlideController) handleMouseOver(event *entities.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.live || c.interacting {
		return
	}

	target, ok := c.doc.ElementByID(event.TargetID)
	if !ok || !c.containsLocked(target) {
		return
	}

	c.interacting = true
	c.stopAutoplayLocked()
}

// handleMouseOut ends the interaction suspension: the completion
// callback fires exactly once, then autoplay start is attempted
// unconditionally (a no-op when disabled).
func (c *SlideController) handleMouseOut(event *entities.Event) {
	c.mu.Lock()
	if !c.live || !c.interacting {
		c.mu.Unlock()
		return
	}
	c.interacting = false
	c.mu.Unlock()

	c.safeCall("after_interaction_end", c.hooks.AfterInteractionEnd)

	c.mu.Lock()
	if c.live {
		c.startAutoplayLocked()
	}
	c.mu.Unlock()
}

// handleResize runs the configured resize callback. The viewport
// geometry itself is tracked by the viewport adapter before the event
// reaches the controller.
func (c *SlideController) handleResize(event *entities.Event) {
	c.mu.Lock()
	if !c.live {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.safeCall("after_resize", c.hooks.AfterResize)
}

// controlAction is the semantic action a click resolves to
type controlAction int

const (
	actionNone controlAction = iota
	actionPrevious
	actionNext
	actionIndicator
)

// resolveControlLocked walks the ancestor chain from target toward the
// container root. First match wins; the root itself is not a
// candidate. An indicator match jumps to its position within the
// discovered indicator set.
func (c *SlideController) resolveControlLocked(target ports.Element) (controlAction, int) {
	for cur := target; cur != nil && cur.ID() != c.root.ID(); cur = cur.Parent() {
		if sel := c.opts.Controls.Previous; sel != "" && c.matches(cur, sel) {
			return actionPrevious, 0
		}
		if sel := c.opts.Controls.Next; sel != "" && c.matches(cur, sel) {
			return actionNext, 0
		}
		if sel := c.opts.Controls.Indicators; sel != "" && c.matches(cur, sel) {
			for i, indicator := range c.indicators {
				if indicator.ID() == cur.ID() {
					return actionIndicator, i
				}
			}
			return actionNone, 0
		}
	}
	return actionNone, 0
}

// containsLocked reports whether el sits inside the container root
// (the root itself counts as inside)
func (c *SlideController) containsLocked(el ports.Element) bool {
	for cur := el; cur != nil; cur = cur.Parent() {
		if cur.ID() == c.root.ID() {
			return true
		}
	}
	return false
}

func (c *SlideController) matches(el ports.Element, selector string) bool {
	ok, err := el.Matches(selector)
	if err != nil {
		c.logger.Debug("control selector failed to match",
			slog.String("selector", selector),
			slog.String("error", err.Error()),
		)
		return false
	}
	return ok
}

// subscribeLocked registers a handler and tracks the subscription for
// bulk teardown; the controller never leaks a handler.
func (c *SlideController) subscribeLocked(t entities.EventType, h ports.EventHandler) {
	c.subs = append(c.subs, c.events.Subscribe(t, h))
}

// teardownLocked cancels both timer kinds and every tracked listener
// registration as one step. Injected styles are kept on re-layout and
// removed on destroy.
func (c *SlideController) teardownLocked(removeStyles bool) {
	c.stopAutoplayLocked()

	if c.lockTask != nil {
		c.lockTask.Cancel()
		c.lockTask = nil
	}
	c.lockSeq++
	c.locked = false

	for _, sub := range c.subs {
		sub.Cancel()
	}
	c.subs = nil

	if removeStyles && c.styleHandle != nil {
		c.styleHandle.Remove()
		c.styleHandle = nil
	}

	c.interacting = false
	c.live = false
}

func (c *SlideController) stateLocked() entities.ControllerState {
	return entities.ControllerState{
		Index:       c.index,
		Count:       len(c.slides),
		Locked:      c.locked,
		Autoplay:    c.autoplay,
		Interacting: c.interacting,
	}
}

// notifyState delivers a state snapshot to the wiring callback, if any
func (c *SlideController) notifyState(state entities.ControllerState) {
	fn := c.hooks.OnStateChange
	if fn == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("state change callback panic", slog.Any("panic", r))
		}
	}()
	fn(state)
}

// safeCall invokes a user callback outside the controller mutex. A
// missing callback is logged and skipped; a panic is recovered and
// logged. Nothing here is ever fatal.
func (c *SlideController) safeCall(name string, fn func()) {
	if fn == nil {
		c.logger.Debug("callback not configured", slog.String("callback", name))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("callback panic",
				slog.String("callback", name),
				slog.Any("panic", r),
			)
		}
	}()
	fn()
}

// Ensure SlideController implements ports.SlideNavigator
var _ ports.SlideNavigator = (*SlideController)(nil)

// presentationRules is the widget's own stylesheet: slides stack with
// only the active one visible, indicators dim until active, and loaded
// images size per their fill or fit mode. Injected once per controller
// and removed on destroy.
func presentationRules(opts entities.SlideshowConfig) []ports.StyleRule {
	slideSel := opts.GetElementSelector()

	rules := []ports.StyleRule{
		{Selector: slideSel, Declarations: map[string]string{"display": "none"}},
		{Selector: slideSel + "." + activeClass, Declarations: map[string]string{"display": "block"}},
		{Selector: "img.image-fill", Declarations: map[string]string{
			"width":      "100%",
			"height":     "100%",
			"object-fit": "cover",
		}},
		{Selector: "img.image-fit", Declarations: map[string]string{
			"max-width":  "100%",
			"max-height": "100%",
			"object-fit": "contain",
		}},
	}

	if sel := opts.Controls.Indicators; sel != "" {
		rules = append(rules,
			ports.StyleRule{Selector: sel, Declarations: map[string]string{
				"opacity": "0.5",
				"cursor":  "pointer",
			}},
			ports.StyleRule{Selector: sel + "." + activeClass, Declarations: map[string]string{
				"opacity": "1",
			}},
		)
	}

	return rules
}
