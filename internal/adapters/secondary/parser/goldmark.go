package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// A slideshow source is markdown with an optional YAML frontmatter
// block, slides separated by fence lines, and an "image: URL" shorthand
// that names a slide's image instead of rendering as text.
const (
	fence       = "---"
	imagePrefix = "image:"
)

// GoldmarkParser implements MarkdownParser on top of Goldmark.
type GoldmarkParser struct {
	md goldmark.Markdown
}

// NewGoldmarkParser builds a parser with the GFM extension set enabled.
func NewGoldmarkParser() *GoldmarkParser {
	return &GoldmarkParser{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(), // raw HTML passes through; callers sanitize
		),
	)}
}

// Parse splits source content into frontmatter and raw slides. No HTML
// is produced at this stage.
func (p *GoldmarkParser) Parse(ctx context.Context, content []byte) (*ports.ParsedContent, error) {
	frontmatter, body := splitFrontmatter(content)

	chunks := slideChunks(body)
	slides := make([]ports.RawSlide, len(chunks))
	for i, chunk := range chunks {
		slides[i] = parseSlide(chunk, i)
	}

	return &ports.ParsedContent{Frontmatter: frontmatter, Slides: slides}, nil
}

// Render converts one slide's markdown to HTML.
func (p *GoldmarkParser) Render(ctx context.Context, markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.md.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// parseSlide pulls the image shorthand out of one slide chunk. The
// first image line wins; every image line leaves the content.
func parseSlide(chunk string, index int) ports.RawSlide {
	var image string
	var kept []string
	for _, line := range strings.Split(chunk, "\n") {
		if src, ok := strings.CutPrefix(strings.TrimSpace(line), imagePrefix); ok {
			if image == "" {
				image = strings.TrimSpace(src)
			}
			continue
		}
		kept = append(kept, line)
	}

	return ports.RawSlide{
		Content: strings.Join(kept, "\n"),
		Image:   image,
		Index:   index,
	}
}

// splitFrontmatter peels an optional YAML frontmatter block off the
// start of the source. Anything that fails to parse as frontmatter is
// handed back untouched, so a stray fence ends up as slide text rather
// than swallowing the file.
func splitFrontmatter(content []byte) (map[string]interface{}, []byte) {
	lines := strings.Split(string(content), "\n")
	if strings.TrimSuffix(lines[0], "\r") != fence {
		return nil, content
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == fence {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, content
	}

	meta := make(map[string]interface{})
	if block := strings.Join(lines[1:end], "\n"); block != "" {
		if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
			return nil, content
		}
	}

	return meta, []byte(strings.Join(lines[end+1:], "\n"))
}

// slideChunks cuts the slide body on fence lines. Blank chunks between
// consecutive fences are dropped; a body without any fence is a single
// slide even when it is empty.
func slideChunks(body []byte) []string {
	normalized := strings.ReplaceAll(string(body), "\r\n", "\n")

	var chunks []string
	for _, part := range strings.Split(normalized, "\n"+fence+"\n") {
		if part = strings.TrimSpace(part); part != "" {
			chunks = append(chunks, part)
		}
	}
	if chunks == nil {
		return []string{string(body)}
	}
	return chunks
}

var _ ports.MarkdownParser = (*GoldmarkParser)(nil)
