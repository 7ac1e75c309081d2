package widget

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// View is the rendered form of one route handed to the host container.
type View struct {
	Route string
	Title string
	Lines []string
}

// Container is the host-supplied mount target. Render receives every view
// update; Release is called exactly once at teardown.
type Container interface {
	Render(view View) error
	Release() error
}

// WriterContainer renders views as plain text into an io.Writer. The demo
// host mounts into stdout through it.
type WriterContainer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterContainer wraps a writer as a mount target.
func NewWriterContainer(w io.Writer) *WriterContainer {
	return &WriterContainer{w: w}
}

// Render writes the view title and lines.
func (c *WriterContainer) Render(view View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.w == nil {
		return fmt.Errorf("container already released")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", view.Title)
	for _, line := range view.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(c.w, b.String())
	return err
}

// Release drops the writer reference.
func (c *WriterContainer) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w = nil
	return nil
}

// Registry maps host selectors to containers. Selectors follow the embed
// contract: "#name" matches a registered id, ".name" matches a registered
// class, anything else tries id first and class second.
type Registry struct {
	mu      sync.Mutex
	byID    map[string]Container
	byClass map[string][]Container
}

// NewRegistry builds an empty container registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:    map[string]Container{},
		byClass: map[string][]Container{},
	}
}

// Register makes a container resolvable by id and by any number of classes.
func (r *Registry) Register(id string, classes []string, container Container) {
	if container == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != "" {
		r.byID[id] = container
	}
	for _, class := range classes {
		if class != "" {
			r.byClass[class] = append(r.byClass[class], container)
		}
	}
}

// Resolve finds the container for a selector, reporting whether it exists.
func (r *Registry) Resolve(selector string) (Container, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case strings.HasPrefix(selector, "#"):
		container, ok := r.byID[selector[1:]]
		return container, ok
	case strings.HasPrefix(selector, "."):
		return r.firstOfClassLocked(selector[1:])
	default:
		if container, ok := r.byID[selector]; ok {
			return container, true
		}
		return r.firstOfClassLocked(selector)
	}
}

func (r *Registry) firstOfClassLocked(class string) (Container, bool) {
	matches := r.byClass[class]
	if len(matches) == 0 {
		return nil, false
	}
	return matches[0], true
}
