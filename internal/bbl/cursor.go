package bbl

// eofByte is returned by cursor.read when the underlying slice is exhausted.
// It is not a valid byte value in the sense that callers must always check
// the returned ok flag rather than comparing against this sentinel.
const eofByte = 0

// cursor is a bounded, rewindable reader over an immutable byte slice. It is
// the sole point of contact between the decoder and the input; every other
// component reads through it.
type cursor struct {
	data   []byte
	offset int64
	eof    bool
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

// read returns the next byte and true, or (0, false) at end of input. A read
// past the end latches eof; it stays latched until the orchestrator clears
// it via a manual resync rewind.
func (c *cursor) read() (byte, bool) {
	if c.offset >= int64(len(c.data)) {
		c.eof = true
		return eofByte, false
	}
	b := c.data[c.offset]
	c.offset++
	return b, true
}

// unread rewinds exactly one byte. It is only valid immediately after a read
// that returned ok=true.
func (c *cursor) unread() {
	if c.offset > 0 {
		c.offset--
	}
}

// rewindTo restores the cursor to a previously observed offset and clears
// the eof latch, as the orchestrator does when abandoning a corrupt frame.
func (c *cursor) rewindTo(offset int64) {
	c.offset = offset
	c.eof = false
}

func (c *cursor) atEOF() bool {
	return c.offset >= int64(len(c.data))
}
