package render

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"proofpop/internal/engine"
	"proofpop/internal/notification"
	"proofpop/internal/widget"
)

var ErrUnknownHandle = errors.New("unknown notification handle")

// Surface is the drawing primitive of the host platform.
type Surface interface {
	NewContainer(anchor widget.Position, style Style) (Container, error)
	// Mount attaches the element in its enter phase.
	Mount(c Container, node Node) (Element, error)
	Apply(el Element, p Phase)
	Remove(el Element)
	Open(link Link)
}

// Container is a positioned element shared by every notification at one
// anchor. Host scripts may detach it at any time.
type Container interface {
	Attached() bool
}

type Element interface {
	OnClick(fn func())
}

// Closer is implemented by elements that draw a close button.
type Closer interface {
	OnClose(fn func())
}

// Hoverer is implemented by elements that report the pointer entering and
// leaving them.
type Hoverer interface {
	OnHover(enter, leave func())
}

// ClickTracker receives notification_click events. It must not block.
type ClickTracker interface {
	Track(eventType string, data map[string]any)
}

type mounted struct {
	el           Element
	node         Node
	notification *notification.Notification
}

// Renderer implements engine.Presenter on top of a Surface.
type Renderer struct {
	mu         sync.Mutex
	surface    Surface
	clock      engine.Clock
	env        Env
	tracker    ClickTracker
	onClick    func(n *notification.Notification)
	onClose    func(n *notification.Notification)
	onHover    func(n *notification.Notification, over bool)
	containers map[widget.Position]Container
	mounted    map[engine.Handle]*mounted
	next       engine.Handle
}

func NewRenderer(surface Surface, clock engine.Clock, env Env) *Renderer {
	return &Renderer{
		surface:    surface,
		clock:      clock,
		env:        env,
		containers: make(map[widget.Position]Container),
		mounted:    make(map[engine.Handle]*mounted),
	}
}

func (r *Renderer) WithTracker(t ClickTracker) *Renderer {
	r.tracker = t
	return r
}

// OnClick registers a callback run after a notification is clicked.
func (r *Renderer) OnClick(f func(n *notification.Notification)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onClick = f
}

// OnClose registers a callback run when a notification's close button is
// pressed.
func (r *Renderer) OnClose(f func(n *notification.Notification)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onClose = f
}

// OnHover registers a callback run when the pointer enters or leaves a
// notification that pauses on hover.
func (r *Renderer) OnHover(f func(n *notification.Notification, over bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onHover = f
}

func (r *Renderer) Mount(n *notification.Notification) (engine.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node := Build(n, r.env)

	c, err := r.container(node.Anchor, node.Container)
	if err != nil {
		return 0, err
	}

	el, err := r.surface.Mount(c, node)
	if err != nil {
		return 0, fmt.Errorf("failed to mount notification %s: %w", n.ID, err)
	}
	r.surface.Apply(el, node.Rest)
	el.OnClick(func() { r.click(n, node) })
	if c, ok := el.(Closer); ok && node.Content.CloseButton {
		c.OnClose(func() { r.closed(n) })
	}
	if hv, ok := el.(Hoverer); ok && n.Settings.Interaction.PauseOnHover {
		hv.OnHover(func() { r.hovered(n, true) }, func() { r.hovered(n, false) })
	}

	r.next++
	r.mounted[r.next] = &mounted{el: el, node: node, notification: n}
	return r.next, nil
}

func (r *Renderer) Exit(h engine.Handle, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.mounted[h]; ok {
		r.surface.Apply(m.el, m.node.Exit)
	}
}

func (r *Renderer) Unmount(h engine.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.mounted[h]; ok {
		r.surface.Remove(m.el)
		delete(r.mounted, h)
	}
}

// Retire plays the exit animation and removes the element once it is done.
func (r *Renderer) Retire(h engine.Handle, fadeOut time.Duration) {
	r.Exit(h, fadeOut)
	r.clock.AfterFunc(fadeOut, func() { r.Unmount(h) })
}

// Mounted returns how many notification elements are attached.
func (r *Renderer) Mounted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mounted)
}

// container returns the cached container for an anchor, creating it again
// when the host page removed the old one.
func (r *Renderer) container(anchor widget.Position, style Style) (Container, error) {
	if c, ok := r.containers[anchor]; ok && c.Attached() {
		return c, nil
	} else if ok {
		slog.Debug("Notification container detached, recreating", "anchor", anchor)
	}

	c, err := r.surface.NewContainer(anchor, style)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s container: %w", anchor, err)
	}
	r.containers[anchor] = c
	return c, nil
}

func (r *Renderer) click(n *notification.Notification, node Node) {
	if r.tracker != nil {
		r.tracker.Track(string(notification.EventNotifyClick), map[string]any{
			"notification_id": n.ID,
			"event_type":      string(n.EventType),
			"widget_id":       n.WidgetID,
		})
	}

	r.mu.Lock()
	onClick := r.onClick
	r.mu.Unlock()
	if onClick != nil {
		onClick(n)
	}

	if node.Link != nil {
		r.surface.Open(*node.Link)
	}
}

func (r *Renderer) closed(n *notification.Notification) {
	r.mu.Lock()
	onClose := r.onClose
	r.mu.Unlock()
	if onClose != nil {
		onClose(n)
	}
}

func (r *Renderer) hovered(n *notification.Notification, over bool) {
	r.mu.Lock()
	onHover := r.onHover
	r.mu.Unlock()
	if onHover != nil {
		onHover(n, over)
	}
}
