package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// Engine assembles the presentation runtime. A build loads the
// slideshow source, renders the container document, parses it into a
// queryable tree, and brings up a slide controller over that tree. The
// HTTP adapter reads the current document and controller through the
// engine; the relayout service swaps both when the source changes.
type Engine struct {
	path       string
	slideshows ports.SlideshowService
	renderer   ports.Renderer
	docs       ports.DocumentFactory
	styles     ports.StyleInjector
	images     ports.ImageLoader
	bus        ports.EventRegistrar
	viewport   ports.ViewportQuery
	caps       ports.Capabilities
	scheduler  ports.Scheduler
	logger     *slog.Logger

	mu         sync.RWMutex
	opts       entities.SlideshowConfig
	hooks      Hooks
	slideshow  *entities.Slideshow
	doc        ports.DocumentQuerier
	controller *SlideController
}

// NewEngine creates an engine for the slideshow at path. The engine is
// empty until Build succeeds.
func NewEngine(
	path string,
	slideshows ports.SlideshowService,
	renderer ports.Renderer,
	docs ports.DocumentFactory,
	styles ports.StyleInjector,
	images ports.ImageLoader,
	bus ports.EventRegistrar,
	viewport ports.ViewportQuery,
	caps ports.Capabilities,
	scheduler ports.Scheduler,
	opts entities.SlideshowConfig,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		path:       path,
		slideshows: slideshows,
		renderer:   renderer,
		docs:       docs,
		styles:     styles,
		images:     images,
		bus:        bus,
		viewport:   viewport,
		caps:       caps,
		scheduler:  scheduler,
		opts:       opts,
		logger:     logger.With("service", "engine"),
	}
}

// SetHooks replaces the controller hooks. Takes effect on the next
// Build or Rebuild, so wiring must happen before the first Build.
func (e *Engine) SetHooks(hooks Hooks) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = hooks
}

// Build performs the initial assembly
func (e *Engine) Build(ctx context.Context) error {
	e.mu.RLock()
	built := e.controller != nil
	e.mu.RUnlock()

	if built {
		return errors.New("engine already built")
	}
	return e.build(ctx)
}

// Rebuild replaces the document and controller after a source change.
// The previous controller is destroyed first; on a failed rebuild the
// last good document keeps serving while the controller stays down.
func (e *Engine) Rebuild(ctx context.Context) error {
	e.mu.Lock()
	old := e.controller
	e.controller = nil
	e.mu.Unlock()

	if old != nil {
		old.Destroy()
	}
	return e.build(ctx)
}

func (e *Engine) build(ctx context.Context) error {
	slideshow, err := e.slideshows.LoadSlideshow(ctx, e.path)
	if err != nil {
		return fmt.Errorf("loading slideshow: %w", err)
	}

	rendered, err := e.slideshows.RenderSlides(ctx, slideshow)
	if err != nil {
		return fmt.Errorf("rendering slides: %w", err)
	}
	for i := range rendered {
		slideshow.Slides[i].HTML = rendered[i].HTML
	}

	containerHTML, err := e.renderer.RenderContainer(ctx, slideshow)
	if err != nil {
		return fmt.Errorf("rendering container: %w", err)
	}

	doc, err := e.docs.Parse(string(containerHTML))
	if err != nil {
		return fmt.Errorf("parsing container document: %w", err)
	}

	roots, err := doc.Query(nil, "."+entities.ContainerClass)
	if err != nil {
		return fmt.Errorf("locating container root: %w", err)
	}
	if len(roots) == 0 {
		return errors.New("container document has no slideshow root")
	}

	e.mu.RLock()
	opts := e.opts
	hooks := e.hooks
	e.mu.RUnlock()

	controller := NewSlideController(
		roots[0], doc, e.styles, e.images, e.bus, e.viewport, e.caps,
		e.scheduler, opts, hooks, e.logger,
	)

	if err := controller.Layout(ctx, nil); err != nil {
		controller.Destroy()
		return fmt.Errorf("laying out controller: %w", err)
	}

	e.mu.Lock()
	e.slideshow = slideshow
	e.doc = doc
	e.controller = controller
	e.mu.Unlock()

	e.logger.Info("presentation built",
		slog.String("path", e.path),
		slog.Int("slides", len(slideshow.Slides)),
	)

	return nil
}

// Slideshow returns the currently loaded slideshow
func (e *Engine) Slideshow() *entities.Slideshow {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.slideshow
}

// ContainerHTML serializes the current container document, with the
// active markers as the controller last left them
func (e *Engine) ContainerHTML() (string, error) {
	e.mu.RLock()
	doc := e.doc
	e.mu.RUnlock()

	if doc == nil {
		return "", errors.New("no container document built")
	}
	return doc.RenderHTML()
}

// Navigator returns the live controller's navigation surface
func (e *Engine) Navigator() ports.SlideNavigator {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.controller == nil {
		return nil
	}
	return e.controller
}

// Options returns the effective slideshow options
func (e *Engine) Options() entities.SlideshowConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.opts
}

// Publish delivers a client interaction event to the event bus
func (e *Engine) Publish(event *entities.Event) {
	if event == nil {
		return
	}
	e.bus.Publish(event)
}

// Destroy tears down the live controller and its timers
func (e *Engine) Destroy() {
	e.mu.Lock()
	controller := e.controller
	e.controller = nil
	e.mu.Unlock()

	if controller != nil {
		controller.Destroy()
	}
}

// Ensure Engine implements ports.Engine
var _ ports.Engine = (*Engine)(nil)
