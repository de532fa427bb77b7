package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// SlideshowResponse represents the slideshow API response
type SlideshowResponse struct {
	Title  string          `json:"title"`
	Author string          `json:"author,omitempty"`
	Date   string          `json:"date,omitempty"`
	Slides []SlideResponse `json:"slides"`
}

// SlideResponse represents a single slide in the API response
type SlideResponse struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	HTML  string `json:"html"`
	Image string `json:"image,omitempty"`
}

// ConfigResponse represents the configuration API response
type ConfigResponse struct {
	Version      string         `json:"version"`
	WebSocketURL string         `json:"websocket_url"`
	LiveReload   bool           `json:"live_reload"`
	TransitionMs int            `json:"transition_ms"`
	Loop         bool           `json:"loop"`
	Autoplay     AutoplayStatus `json:"autoplay"`
	Images       ImagesStatus   `json:"images"`
}

// AutoplayStatus reports the effective autoplay options
type AutoplayStatus struct {
	Enabled bool `json:"enabled"`
	DelayMs int  `json:"delay_ms"`
}

// ImagesStatus reports the effective image handling options
type ImagesStatus struct {
	Load bool   `json:"load"`
	Mode string `json:"mode"`
}

// placeholderContainer is served before the first successful build
const placeholderContainer = `<div class="slideshow"><div class="slide active"><h1>No slideshow loaded</h1><p>Please specify a slideshow file.</p></div></div>`

// handlePage serves the page shell embedding the container document
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()

	containerHTML, err := s.engine.ContainerHTML()
	if err != nil {
		// No document yet, show default
		s.logger.Debug("No container document available: %v", err)
		containerHTML = placeholderContainer
	}

	title := "Slideshow"
	if slideshow := s.engine.Slideshow(); slideshow != nil && slideshow.Title != "" {
		title = slideshow.Title
	}

	page, err := s.renderer.RenderPage(ctx, ports.PageData{
		Title:         title,
		ContainerHTML: containerHTML,
		StylesCSS:     s.styles.Stylesheet(),
		WebSocketPath: "/ws",
	})
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		s.logger.Error("Failed to write page response: %v", err)
	}
}

// handleContainer serves the current container document as an HTML
// fragment. Clients refetch it after a state update instead of
// patching the DOM themselves.
func (s *Server) handleContainer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	containerHTML, err := s.engine.ContainerHTML()
	if err != nil {
		s.handleError(w, err, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(containerHTML)); err != nil {
		s.logger.Error("Failed to write container response: %v", err)
	}
}

// handleSlideshow returns the loaded slideshow as JSON
func (s *Server) handleSlideshow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slideshow := s.engine.Slideshow()
	if slideshow == nil {
		// No slideshow loaded
		slideshow = &entities.Slideshow{
			Title: "No Slideshow Loaded",
			Slides: []entities.Slide{
				{Index: 0, Title: "No slideshow loaded", HTML: "<h1>No slideshow loaded</h1>"},
			},
		}
	}

	response := s.slideshowToResponse(slideshow)
	s.writeJSON(w, response)
}

// handleConfig returns the effective slideshow options
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts := s.engine.Options()
	config := ConfigResponse{
		Version:      "1.0.0",
		WebSocketURL: "/ws",
		LiveReload:   true,
		TransitionMs: int(opts.GetTransition() / time.Millisecond),
		Loop:         opts.GetLoop(),
		Autoplay: AutoplayStatus{
			Enabled: opts.Autoplay.GetEnabled(),
			DelayMs: int(opts.Autoplay.GetDelay() / time.Millisecond),
		},
		Images: ImagesStatus{
			Load: opts.Images.GetLoad(),
			Mode: string(opts.Images.GetMode()),
		},
	}

	s.writeJSON(w, config)
}

// handleError handles error responses with sanitized messages
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	// Sanitize error message to prevent information disclosure
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Resource not found"
	case http.StatusMethodNotAllowed:
		message = "Method not allowed"
	case http.StatusTooManyRequests:
		message = "Too many requests"
	case http.StatusServiceUnavailable:
		message = "No slideshow loaded"
	case http.StatusInternalServerError:
		message = "Internal server error"
	default:
		message = "An error occurred"
	}

	// Log the actual error for debugging (server-side only)
	s.logger.Error("HTTP error (status %d): %v", status, err)

	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message, // Use sanitized message instead of err.Error()
		Time:    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		s.logger.Error("Failed to encode error response: %v", encodeErr)
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response: %v", err)
	}
}

// createHTMLSanitizer creates a restrictive HTML sanitizer for slide content
func createHTMLSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	// Allow basic text formatting
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("p", "br", "hr")
	p.AllowElements("strong", "b", "em", "i", "u", "s", "mark")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("blockquote", "pre", "code")
	p.AllowElements("a").AllowAttrs("href").OnElements("a")
	p.AllowElements("img").AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowElements("div", "span").AllowAttrs("class").OnElements("div", "span")

	// Allow safe attributes
	p.AllowAttrs("class", "id").OnElements("h1", "h2", "h3", "h4", "h5", "h6", "p", "div", "span")

	return p
}

var htmlSanitizer = createHTMLSanitizer()

// slideshowToResponse converts a slideshow to an API response with sanitized HTML
func (s *Server) slideshowToResponse(slideshow *entities.Slideshow) SlideshowResponse {
	slides := make([]SlideResponse, len(slideshow.Slides))
	for i, slide := range slideshow.Slides {
		slides[i] = SlideResponse{
			Index: slide.Index,
			Title: htmlSanitizer.Sanitize(slide.Title), // Sanitize title
			HTML:  htmlSanitizer.Sanitize(slide.HTML),  // Sanitize HTML content
			Image: slide.Image,
		}
	}

	dateStr := ""
	if !slideshow.Date.IsZero() {
		dateStr = slideshow.Date.Format("2006-01-02")
	}

	return SlideshowResponse{
		Title:  htmlSanitizer.Sanitize(slideshow.Title),
		Author: htmlSanitizer.Sanitize(slideshow.Author),
		Date:   dateStr,
		Slides: slides,
	}
}
