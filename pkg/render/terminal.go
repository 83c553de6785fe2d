package render

import (
	"bufio"
	"io"
	"math"
	"os"
	"strings"

	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

// TerminalRenderer provides a simple ASCII-based debug view for terminals.
// One cell covers scale room units; the origin is the room's top-left corner.
type TerminalRenderer struct {
	width  int
	height int
	buffer [][]rune
	scale  float64
	origin physics.Vector2D
	out    io.Writer
	// ClearScreen emits an ANSI clear before each frame.
	ClearScreen bool
}

// NewTerminalRenderer creates a new terminal renderer with the specified dimensions
func NewTerminalRenderer(width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	r := &TerminalRenderer{
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
		out:    os.Stdout,
	}
	r.Clear()
	return r
}

// SetOutput sets where frames are written.
func (r *TerminalRenderer) SetOutput(w io.Writer) {
	r.out = w
}

// SetOrigin sets the room position shown in the top-left cell.
func (r *TerminalRenderer) SetOrigin(pos physics.Vector2D) {
	r.origin = pos
}

// worldToScreen converts room coordinates to a cell.
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	x := int(math.Floor((pos.X - r.origin.X) / r.scale))
	y := int(math.Floor((pos.Y - r.origin.Y) / r.scale))
	return x, y
}

func (r *TerminalRenderer) set(x, y int, c rune) {
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = c
	}
}

// Clear implements Renderer
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

// Present implements Renderer
func (r *TerminalRenderer) Present() {
	w := bufio.NewWriter(r.out)
	defer w.Flush()

	if r.ClearScreen {
		w.WriteString("\033[H\033[2J")
	}
	w.WriteString(r.String())
}

// String returns the current buffer with a border.
func (r *TerminalRenderer) String() string {
	var b strings.Builder
	border := "+" + strings.Repeat("-", r.width) + "+\n"
	b.WriteString(border)
	for y := range r.buffer {
		b.WriteByte('|')
		b.WriteString(string(r.buffer[y]))
		b.WriteString("|\n")
	}
	b.WriteString(border)
	return b.String()
}

// RenderRegion implements Renderer by outlining leaf regions. Internal nodes
// are fully covered by their children and are skipped.
func (r *TerminalRenderer) RenderRegion(region physics.Rect, depth int, leaf bool) {
	if !leaf {
		return
	}
	x0, y0 := r.worldToScreen(physics.Vector2D{X: region.X, Y: region.Y})
	x1, y1 := r.worldToScreen(physics.Vector2D{X: region.Right(), Y: region.Bottom()})
	for x := x0; x <= x1; x++ {
		r.mergeLine(x, y0, '-')
		r.mergeLine(x, y1, '-')
	}
	for y := y0; y <= y1; y++ {
		r.mergeLine(x0, y, '|')
		r.mergeLine(x1, y, '|')
	}
}

// mergeLine draws a line cell, turning crossings into '+'.
func (r *TerminalRenderer) mergeLine(x, y int, c rune) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	switch cur := r.buffer[y][x]; {
	case cur == ' ' || cur == c:
		r.buffer[y][x] = c
	case cur == '-' || cur == '|' || cur == '+':
		r.buffer[y][x] = '+'
	}
}

// RenderInstance implements Renderer. Solid instances are drawn with '#',
// others with 'o'.
func (r *TerminalRenderer) RenderInstance(inst *entity.Instance) {
	symbol := 'o'
	if inst.Solid {
		symbol = '#'
	}
	bounds := inst.Bounds()
	x0, y0 := r.worldToScreen(physics.Vector2D{X: bounds.X, Y: bounds.Y})
	// The far edges are exclusive.
	x1 := max(x0, int(math.Ceil((bounds.Right()-r.origin.X)/r.scale))-1)
	y1 := max(y0, int(math.Ceil((bounds.Bottom()-r.origin.Y)/r.scale))-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			r.set(x, y, symbol)
		}
	}
}

// RenderContact implements Renderer by marking the midpoint of the first
// segment of the contact.
func (r *TerminalRenderer) RenderContact(contact physics.Contact) {
	mid := contact.A.Start().Add(contact.A.End()).Scale(0.5)
	x, y := r.worldToScreen(mid)
	r.set(x, y, '*')
}
