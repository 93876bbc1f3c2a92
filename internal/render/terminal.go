package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"proofpop/internal/widget"
)

// TerminalSurface prints notifications as text, for previewing a site's
// playback from the command line.
type TerminalSurface struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminalSurface(w io.Writer) *TerminalSurface {
	return &TerminalSurface{w: w}
}

type terminalContainer struct {
	anchor widget.Position
}

func (terminalContainer) Attached() bool { return true }

type terminalElement struct {
	node    Node
	onClick []func()
	onClose []func()
}

func (e *terminalElement) OnClick(fn func()) { e.onClick = append(e.onClick, fn) }

func (e *terminalElement) OnClose(fn func()) { e.onClose = append(e.onClose, fn) }

// Close runs the element's close handlers.
func (e *terminalElement) Close() {
	for _, fn := range e.onClose {
		fn()
	}
}

// Click runs the element's click handlers.
func (e *terminalElement) Click() {
	for _, fn := range e.onClick {
		fn()
	}
}

func (t *TerminalSurface) NewContainer(anchor widget.Position, _ Style) (Container, error) {
	return terminalContainer{anchor: anchor}, nil
}

func (t *TerminalSurface) Mount(c Container, node Node) (Element, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprint(t.w, Text(node))
	return &terminalElement{node: node}, nil
}

func (t *TerminalSurface) Apply(el Element, p Phase) {
	e, ok := el.(*terminalElement)
	if !ok || p.Opacity > 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "  ... %s leaving\n", e.node.NotificationID)
}

func (t *TerminalSurface) Remove(el Element) {
	e, ok := el.(*terminalElement)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "  ... %s removed\n", e.node.NotificationID)
}

func (t *TerminalSurface) Open(link Link) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "  -> open %s (%s)\n", link.URL, link.Target)
}

// Text is a plain-text rendering of a node's content.
func Text(node Node) string {
	c := node.Content

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", node.Anchor)
	if c.Icon != "" {
		b.WriteString(" " + c.Icon)
	} else if c.AvatarLetter != "" {
		b.WriteString(" (" + c.AvatarLetter + ")")
	}
	b.WriteString(" " + c.Title + "\n")

	if c.Name != "" {
		b.WriteString("  " + c.Name + "\n")
	}
	b.WriteString("  " + c.Message)
	if c.Value != "" {
		b.WriteString(" · " + c.Value)
	}
	b.WriteString("\n")

	if c.Stars > 0 {
		b.WriteString("  " + strings.Repeat("★", c.Stars) + strings.Repeat("☆", 5-c.Stars) + "\n")
	}
	if c.Review != "" {
		b.WriteString("  \"" + c.Review + "\"\n")
	}
	if c.Trailer != "" {
		b.WriteString("  " + c.Trailer + "\n")
	}
	if node.Progress != nil {
		fmt.Fprintf(&b, "  [%s] %s\n", strings.Repeat("=", 20), node.Progress.Duration)
	}
	return b.String()
}
