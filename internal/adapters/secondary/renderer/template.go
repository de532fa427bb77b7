package renderer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// TemplateRenderer implements the Renderer interface using Go templates
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer creates a new template-based renderer
func NewTemplateRenderer() (*TemplateRenderer, error) {
	// Define default templates
	tmpl := template.New("container")

	// Add template functions
	tmpl = tmpl.Funcs(template.FuncMap{
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s) // #nosec G203 - intentional safe HTML template function
		},
		"safeCSS": func(s string) template.CSS {
			return template.CSS(s) // #nosec G203 - stylesheet text is server-generated
		},
		"inc": func(i int) int {
			return i + 1
		},
	})

	// Parse default templates
	_, err := tmpl.Parse(defaultContainerTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing container template: %w", err)
	}

	_, err = tmpl.New("slide").Parse(defaultSlideTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing slide template: %w", err)
	}

	_, err = tmpl.New("page").Parse(defaultPageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	return &TemplateRenderer{
		templates: tmpl,
	}, nil
}

// slideView is the per-slide template data. Image-bearing slides render a
// deferred <img data-src> that the image loader promotes during layout.
type slideView struct {
	Index int
	Title string
	Image string
	HTML  string
}

func newSlideView(s entities.Slide) slideView {
	return slideView{
		Index: s.Index,
		Title: s.Title,
		Image: s.Image,
		HTML:  s.HTML,
	}
}

// RenderContainer renders the slideshow container document: the root
// element wrapping the slides, the navigation controls, and one
// indicator per slide.
func (r *TemplateRenderer) RenderContainer(ctx context.Context, slideshow *entities.Slideshow) ([]byte, error) {
	if slideshow == nil {
		return nil, fmt.Errorf("slideshow cannot be nil")
	}

	views := make([]slideView, len(slideshow.Slides))
	for i, slide := range slideshow.Slides {
		views[i] = newSlideView(slide)
	}

	data := struct {
		Title  string
		Slides []slideView
	}{
		Title:  slideshow.Title,
		Slides: views,
	}

	var buf bytes.Buffer
	if err := r.templates.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing container template: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderSlide renders a single slide to HTML
func (r *TemplateRenderer) RenderSlide(ctx context.Context, s *entities.Slide) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("slide cannot be nil")
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "slide", newSlideView(*s)); err != nil {
		return nil, fmt.Errorf("executing slide template: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderPage renders the full page shell delivered to browsers
func (r *TemplateRenderer) RenderPage(ctx context.Context, page ports.PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "page", page); err != nil {
		return nil, fmt.Errorf("executing page template: %w", err)
	}

	return buf.Bytes(), nil
}

// Default templates
const defaultContainerTemplate = `<div class="slideshow"{{if .Title}} data-title="{{.Title}}"{{end}}>
{{- range .Slides}}
{{template "slide" .}}
{{- end}}
    <nav class="controls">
        <a href="#" class="previous" aria-label="Previous slide">&lsaquo;</a>
        <a href="#" class="next" aria-label="Next slide">&rsaquo;</a>
    </nav>
    <div class="indicators">
    {{- range .Slides}}
        <span class="indicator" aria-label="Go to slide {{inc .Index}}"></span>
    {{- end}}
    </div>
</div>`

const defaultSlideTemplate = `    <div class="slide" data-index="{{.Index}}">
        {{- if .Image}}
        <img data-src="{{.Image}}" alt="{{.Title}}">
        {{- end}}
        {{.HTML | safeHTML}}
    </div>`

const defaultPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>

    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 0; }
        .slideshow { position: relative; max-width: 960px; min-height: 540px; margin: 2em auto; overflow: hidden; }
        .slide { padding: 3em 4em; box-sizing: border-box; }
        .slide h1 { font-size: 2.5em; color: #2c3e50; }
        .slide h2 { font-size: 2em; color: #34495e; }
        .slide h3 { font-size: 1.5em; color: #34495e; }
        .slide pre { background: #f4f4f4; padding: 1em; border-radius: 4px; }
        .slide code { background: #f4f4f4; padding: 0.2em 0.4em; border-radius: 3px; }
        .slide blockquote { border-left: 4px solid #ddd; padding-left: 1em; color: #666; }
        .slide table { border-collapse: collapse; width: 100%; }
        .slide table th, .slide table td { border: 1px solid #ddd; padding: 0.5em; }
        .slide img { max-width: 100%; }
        .controls a { position: absolute; top: 50%; transform: translateY(-50%); font-size: 2.5em; color: #95a5a6; text-decoration: none; padding: 0 0.4em; user-select: none; z-index: 1; }
        .controls a:hover { color: #2c3e50; }
        .controls .previous { left: 0; }
        .controls .next { right: 0; }
        .indicators { position: absolute; bottom: 1em; left: 0; right: 0; text-align: center; }
        .indicator { display: inline-block; width: 10px; height: 10px; border-radius: 50%; background: #bdc3c7; margin: 0 4px; cursor: pointer; }
        .indicator.active { background: #2c3e50; }

        /* Rules injected by the slideshow engine */
{{.StylesCSS | safeCSS}}
    </style>
</head>
<body>
    {{.ContainerHTML | safeHTML}}

    <script>
    (function () {
        var wsPath = {{.WebSocketPath}};
        var protocol = location.protocol === 'https:' ? 'wss://' : 'ws://';
        var socket = null;
        var retryDelay = 1000;

        function viewport() {
            var container = document.querySelector('.slideshow');
            var rect = container ? container.getBoundingClientRect() : {top: 0, left: 0, width: 0, height: 0};
            return {
                height: window.innerHeight,
                container: {top: rect.top, left: rect.left, width: rect.width, height: rect.height}
            };
        }

        function send(msg) {
            if (socket && socket.readyState === WebSocket.OPEN) {
                socket.send(JSON.stringify(msg));
            }
        }

        function sendEvent(event) {
            send({type: 'event', event: event});
        }

        function targetID(node) {
            while (node && node.getAttribute) {
                var id = node.getAttribute('data-ss-id');
                if (id) { return id; }
                node = node.parentNode;
            }
            return '';
        }

        function insideSlideshow(node) {
            return !!(node && node.closest && node.closest('.slideshow'));
        }

        function connect() {
            socket = new WebSocket(protocol + location.host + wsPath);
            socket.onopen = function () {
                retryDelay = 1000;
                send({type: 'hello', touch: 'ontouchstart' in window, viewport: viewport()});
            };
            socket.onmessage = function (raw) {
                var msg;
                try { msg = JSON.parse(raw.data); } catch (err) { return; }
                if (msg.type === 'reload') {
                    location.reload();
                } else if (msg.type === 'state' && msg.data && msg.data.html) {
                    var container = document.querySelector('.slideshow');
                    if (container) { container.outerHTML = msg.data.html; }
                } else if (msg.type === 'error' && msg.data) {
                    console.error('slideshow:', msg.data.error || msg.data);
                }
            };
            socket.onclose = function () {
                setTimeout(connect, retryDelay);
                retryDelay = Math.min(retryDelay * 2, 15000);
            };
        }

        document.addEventListener('click', function (e) {
            if (!insideSlideshow(e.target)) { return; }
            if (e.target.closest('a')) { e.preventDefault(); }
            sendEvent({type: 'click', target_id: targetID(e.target)});
        });

        document.addEventListener('keydown', function (e) {
            if (e.key !== 'ArrowLeft' && e.key !== 'ArrowRight') { return; }
            sendEvent({type: 'keydown', key: e.key, viewport: viewport()});
        });

        // mouseenter/mouseleave emulation: only boundary crossings of the
        // slideshow container are reported, not every inner transition.
        document.addEventListener('mouseover', function (e) {
            if (!insideSlideshow(e.target) || insideSlideshow(e.relatedTarget)) { return; }
            sendEvent({type: 'mouseover', target_id: targetID(e.target)});
        });

        document.addEventListener('mouseout', function (e) {
            if (!insideSlideshow(e.target) || insideSlideshow(e.relatedTarget)) { return; }
            sendEvent({type: 'mouseout', target_id: targetID(e.target)});
        });

        var resizeTimer = null;
        window.addEventListener('resize', function () {
            clearTimeout(resizeTimer);
            resizeTimer = setTimeout(function () {
                sendEvent({type: 'resize', viewport: viewport()});
            }, 150);
        });

        connect();
    })();
    </script>
</body>
</html>`

var _ ports.Renderer = (*TemplateRenderer)(nil)
