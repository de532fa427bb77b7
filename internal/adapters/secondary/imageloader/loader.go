package imageloader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// Attributes and classes of the deferred-image protocol: the renderer
// emits img elements with data-src, the loader promotes them to src,
// tags the outcome, and applies the sizing class for the configured
// mode.
const (
	deferredSrcAttr = "data-src"
	stateAttr       = "data-ss-image"
	stateLoaded     = "loaded"
	stateError      = "error"
	classFill       = "image-fill"
	classFit        = "image-fit"
)

// Loader promotes deferred image sources inside a slide subtree.
// Remote sources are probed with a HEAD request when a client is
// configured; a failed probe tags the image but still promotes it, so
// the browser gets its own chance at the URL.
type Loader struct {
	client ports.HTTPClient
	logger *slog.Logger
}

// NewLoader creates an image loader. A nil client disables probing.
func NewLoader(client ports.HTTPClient, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{
		client: client,
		logger: logger.With("adapter", "imageloader"),
	}
}

// Load promotes every deferred image under the slide element
func (l *Loader) Load(ctx context.Context, slide ports.Element, opts entities.ImageLoadConfig) error {
	if !opts.GetLoad() {
		return nil
	}

	for _, img := range collectImages(slide) {
		src, ok := img.Attr(deferredSrcAttr)
		if !ok || src == "" {
			continue
		}

		state := stateLoaded
		if l.shouldProbe(src) {
			if err := l.probe(ctx, src); err != nil {
				l.logger.Warn("image source unreachable",
					slog.String("src", src),
					slog.String("error", err.Error()),
				)
				state = stateError
			}
		}

		img.SetAttr("src", src)
		img.RemoveAttr(deferredSrcAttr)
		img.SetAttr(stateAttr, state)

		switch opts.GetMode() {
		case entities.ImageModeFill:
			img.AddClass(classFill)
		case entities.ImageModeFit:
			img.AddClass(classFit)
		case entities.ImageModeNone:
		}
	}

	return nil
}

// shouldProbe limits probing to absolute http(s) URLs; relative paths
// are served by this process and resolve at the browser
func (l *Loader) shouldProbe(src string) bool {
	if l.client == nil {
		return false
	}
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func (l *Loader) probe(ctx context.Context, src string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, src, nil)
	if err != nil {
		return err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// collectImages walks the slide subtree for img elements in document
// order
func collectImages(el ports.Element) []ports.Element {
	var out []ports.Element
	var walk func(ports.Element)
	walk = func(cur ports.Element) {
		if cur.Tag() == "img" {
			out = append(out, cur)
		}
		for _, child := range cur.Children() {
			walk(child)
		}
	}
	walk(el)
	return out
}

var _ ports.ImageLoader = (*Loader)(nil)
