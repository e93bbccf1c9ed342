package charinput

import (
	"fmt"
	"sort"
)

const initialBufferSize = 16

// ContractViolation is the panic value raised when a mark operation is used
// outside its preconditions. It signals a bug in the caller, never bad input.
type ContractViolation struct {
	Op     string
	Detail string
}

func (v *ContractViolation) Error() string {
	return fmt.Sprintf("charinput: %s: %s", v.Op, v.Detail)
}

func violate(op, format string, args ...any) {
	panic(&ContractViolation{Op: op, Detail: fmt.Sprintf(format, args...)})
}

// layer is one entry of the input stack: its own source, followed by the
// buffered code points that were unread in the layer below when it was pushed
type layer struct {
	src   CodepointSource
	carry []rune
	idx   int
	err   error
}

func (l *layer) next() rune {
	if l.src != nil {
		if c := l.src.ReadChar(); c >= 0 {
			return c
		}
		if es, ok := l.src.(ErrorSource); ok {
			l.err = es.Err()
		}
		l.src = nil
	}
	if l.idx < len(l.carry) {
		c := l.carry[l.idx]
		l.idx++
		return c
	}
	return EOF
}

// MarkableInput presents a stack of code point sources as one stream and
// supports speculative reads through marks.
//
// While no mark is set, reads go straight to the sources. Once a mark is
// set every code point read is kept in a buffer so the reader can move back
// to any offset between the mark and the current position.
type MarkableInput struct {
	layers []*layer

	buf    []rune
	pos    int
	end    int
	marked bool

	// fresh counts code points taken from the layers; it is the absolute
	// offset of buf[end]
	fresh int
	// offsets at which lines 2, 3, ... begin
	lines []int
	err   error
}

// NewMarkableInput creates an input reading from src
func NewMarkableInput(src CodepointSource) *MarkableInput {
	return &MarkableInput{layers: []*layer{{src: src}}}
}

func (in *MarkableInput) readFresh() rune {
	for len(in.layers) > 0 {
		top := in.layers[len(in.layers)-1]
		c := top.next()
		if c >= 0 {
			if c == '\n' && (len(in.lines) == 0 || in.lines[len(in.lines)-1] <= in.fresh) {
				in.lines = append(in.lines, in.fresh+1)
			}
			in.fresh++
			return c
		}
		if top.err != nil && in.err == nil {
			in.err = top.err
		}
		in.layers = in.layers[:len(in.layers)-1]
	}
	return EOF
}

// ReadChar returns the next code point, or EOF
func (in *MarkableInput) ReadChar() rune {
	if in.pos < in.end {
		c := in.buf[in.pos]
		in.pos++
		return c
	}
	if !in.marked {
		in.pos, in.end = 0, 0
		return in.readFresh()
	}
	c := in.readFresh()
	if c < 0 {
		return c
	}
	if in.end == len(in.buf) {
		grown := make([]rune, len(in.buf)*2)
		copy(grown, in.buf)
		in.buf = grown
	}
	in.buf[in.end] = c
	in.end++
	in.pos++
	return c
}

// PushInput stacks src above the current input. Code points already
// buffered but not yet read are handed to the new layer and will be read
// once src is exhausted.
func (in *MarkableInput) PushInput(src CodepointSource) {
	if src == nil {
		violate("PushInput", "nil source")
	}
	var carry []rune
	if in.pos < in.end {
		carry = make([]rune, in.end-in.pos)
		copy(carry, in.buf[in.pos:in.end])
		in.fresh -= len(carry)
	}
	in.end = in.pos
	in.layers = append(in.layers, &layer{src: src, carry: carry})
}

// SetHardMark sets a mark at the current position and discards everything
// buffered before it. It always returns 0.
func (in *MarkableInput) SetHardMark() int {
	if in.buf == nil {
		in.buf = make([]rune, initialBufferSize)
	}
	if in.pos < in.end {
		n := copy(in.buf, in.buf[in.pos:in.end])
		in.pos, in.end = 0, n
	} else {
		in.pos, in.end = 0, 0
	}
	in.marked = true
	return 0
}

// SetSoftMark sets a hard mark if none is active and returns the current
// offset from the mark
func (in *MarkableInput) SetSoftMark() int {
	if !in.marked {
		in.SetHardMark()
	}
	return in.pos
}

// ClearMark drops the active mark. Code points already buffered ahead of
// the current position are still returned before new ones are read.
func (in *MarkableInput) ClearMark() {
	in.marked = false
}

// MarkPosition returns the current offset from the active mark
func (in *MarkableInput) MarkPosition() int {
	return in.pos
}

// MoveBack rewinds count code points. It panics with a *ContractViolation
// if no mark is active or count exceeds what was read since the mark.
func (in *MarkableInput) MoveBack(count int) {
	if count < 0 {
		violate("MoveBack", "negative count %d", count)
	}
	if !in.marked {
		violate("MoveBack", "no active mark")
	}
	if count > in.pos {
		violate("MoveBack", "count %d exceeds %d buffered code points", count, in.pos)
	}
	in.pos -= count
}

// SetMarkPosition moves to offset pos from the active mark. It panics with a
// *ContractViolation if no mark is active or pos is outside the buffer.
func (in *MarkableInput) SetMarkPosition(pos int) {
	if !in.marked {
		violate("SetMarkPosition", "no active mark")
	}
	if pos < 0 || pos > in.end {
		violate("SetMarkPosition", "position %d outside [0, %d]", pos, in.end)
	}
	in.pos = pos
}

// Position returns the line (from 1) and column (from 0) of the next code
// point to be read
func (in *MarkableInput) Position() (line, column int) {
	offset := in.fresh - (in.end - in.pos)
	idx := sort.SearchInts(in.lines, offset+1)
	start := 0
	if idx > 0 {
		start = in.lines[idx-1]
	}
	return idx + 1, offset - start
}

// Err returns the first read error reported by an exhausted source
func (in *MarkableInput) Err() error {
	return in.err
}
