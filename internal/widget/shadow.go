package widget

// Container models the host-page node the widget owns. The shadow root is
// closed: nothing outside the runtime that attached it can reach the
// rendered markup through the container.
type Container struct {
	root     *ShadowRoot
	detached bool
}

func NewContainer() *Container {
	return &Container{}
}

// attachShadow returns the container's shadow root, creating it on first
// use. A container can only ever hold one root; repeat attachment reuses
// the existing one.
func (c *Container) attachShadow() *ShadowRoot {
	if c.root == nil {
		c.root = &ShadowRoot{}
	}
	return c.root
}

// Detached reports whether the container was removed from the page.
func (c *Container) Detached() bool {
	return c.detached
}

// ShadowRoot is the widget's isolated rendering boundary. Content is
// replaced wholesale on every render pass, never mutated incrementally.
type ShadowRoot struct {
	html string
}

func (r *ShadowRoot) setHTML(markup string) {
	r.html = markup
}

// HTML returns the root's current markup.
func (r *ShadowRoot) HTML() string {
	return r.html
}
