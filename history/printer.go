package history

import (
	"io"
	"strconv"
	"strings"
)

// cellWidth is enough for the usual `[id] Method(args)` cell. Up it if a
// target's rendering does not fit.
const cellWidth = 20

// Printer renders sequential histories as a fixed-cell table with one column
// per thread slot:
//
//	*--------------------*--------------------*
//	|         T0         |         T1         |
//	*--------------------*--------------------*
//	| [0] Push(2)        |                    |
//	| <-- void           |                    |
//	|                    | [1] Pop()          |
//	|                    | <-- 5              |
//	*--------------------*--------------------*
type Printer struct {
	threads int
}

// NewPrinter sizes the table for the given number of thread slots.
func NewPrinter(threads int) *Printer {
	return &Printer{threads: threads}
}

// Print writes the table for h to w.
func (p *Printer) Print(w io.Writer, h Sequential) {
	var b strings.Builder
	p.separator(&b)

	// Header.
	b.WriteByte('|')
	for i := 0; i < p.threads; i++ {
		label := `T` + strconv.Itoa(i)
		rest := cellWidth - len(label)
		pad(&b, rest/2)
		b.WriteString(label)
		pad(&b, rest-rest/2)
		b.WriteByte('|')
	}
	b.WriteByte('\n')
	p.separator(&b)

	for _, ev := range h {
		b.WriteByte('|')
		for i := 0; i < ev.ThreadID; i++ {
			p.emptyCell(&b)
		}
		cell := renderCell(ev)
		b.WriteString(cell)
		pad(&b, cellWidth-len(cell))
		b.WriteByte('|')
		for i := ev.ThreadID + 1; i < p.threads; i++ {
			p.emptyCell(&b)
		}
		b.WriteByte('\n')
	}

	p.separator(&b)
	io.WriteString(w, b.String())
}

func renderCell(ev Event) string {
	var c strings.Builder
	c.WriteByte(' ')
	if ev.Kind == Invoke {
		c.WriteByte('[')
		c.WriteString(strconv.Itoa(ev.TaskID))
		c.WriteString(`] `)
		c.WriteString(ev.Method)
		c.WriteByte('(')
		for i, a := range ev.Args {
			if i > 0 {
				c.WriteString(`, `)
			}
			c.WriteString(a.String())
		}
		c.WriteByte(')')
	} else {
		c.WriteString(`<-- `)
		c.WriteString(ev.Result.String())
	}
	s := c.String()
	if len(s) > cellWidth {
		s = s[:cellWidth]
	}
	return s
}

func (p *Printer) separator(b *strings.Builder) {
	b.WriteByte('*')
	for i := 0; i < p.threads; i++ {
		b.WriteString(strings.Repeat(`-`, cellWidth))
		b.WriteByte('*')
	}
	b.WriteByte('\n')
}

func (p *Printer) emptyCell(b *strings.Builder) {
	pad(b, cellWidth)
	b.WriteByte('|')
}

func pad(b *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		b.WriteByte(' ')
	}
}
