package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxRenderers bounds the cache. Each terminal resize produces a new width,
// so old entries are dropped wholesale rather than tracked.
const maxRenderers = 4

// rendererCache keeps one glamour renderer per Options value. A
// TermRenderer must not render concurrently, so the lock is held for the
// whole Render call.
type rendererCache struct {
	mu      sync.Mutex
	entries map[Options]*glamour.TermRenderer
}

var renderers = &rendererCache{entries: make(map[Options]*glamour.TermRenderer)}

func (c *rendererCache) render(content string, opts Options) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.entries[opts]
	if !ok {
		var err error
		if r, err = newRenderer(opts); err != nil {
			return "", err
		}
		if len(c.entries) >= maxRenderers {
			clear(c.entries)
		}
		c.entries[opts] = r
	}
	return r.Render(content)
}

func (c *rendererCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *rendererCache) reset() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	ropts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		ropts = append(ropts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		ropts = append(ropts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(ropts...)
}
