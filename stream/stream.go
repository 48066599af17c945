// Package stream implements the single-threaded, non-suspending byte cursor
// shared by every core parser: the tokenizer, the field grammar parsers, the
// transfer-encoding decoders and the MIME walker all advance the same
// cursor within one pass over the input (§4.1).
package stream

// Stream is a read-only cursor over a borrowed byte slice. It never owns
// the buffer and never mutates it; callers must guarantee the buffer
// outlives the Stream.
type Stream struct {
	buf         []byte
	pos         int
	checkpoints []int
}

// New wraps buf in a Stream positioned at offset 0.
func New(buf []byte) *Stream {
	return &Stream{buf: buf}
}

// Len returns the total length of the underlying buffer.
func (s *Stream) Len() int { return len(s.buf) }

// Pos returns the current absolute cursor position.
func (s *Stream) Pos() int { return s.pos }

// SetPos moves the cursor to an absolute position, clamped to [0, Len()].
func (s *Stream) SetPos(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.buf) {
		pos = len(s.buf)
	}
	s.pos = pos
}

// AtEnd reports whether the cursor has reached the end of the buffer.
func (s *Stream) AtEnd() bool { return s.pos >= len(s.buf) }

// Peek returns the byte at the cursor without advancing, and false at
// end-of-input.
func (s *Stream) Peek() (byte, bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	return s.buf[s.pos], true
}

// PeekAt returns the byte offset bytes ahead of the cursor without
// advancing, and false if that position is past the end of input.
func (s *Stream) PeekAt(offset int) (byte, bool) {
	p := s.pos + offset
	if p < 0 || p >= len(s.buf) {
		return 0, false
	}
	return s.buf[p], true
}

// Advance consumes and returns the byte at the cursor, and false at
// end-of-input (the cursor does not move past the end).
func (s *Stream) Advance() (byte, bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	b := s.buf[s.pos]
	s.pos++
	return b, true
}

// AdvanceWhile consumes bytes while pred holds, returning the consumed
// slice (a borrow into the underlying buffer).
func (s *Stream) AdvanceWhile(pred func(byte) bool) []byte {
	start := s.pos
	for s.pos < len(s.buf) && pred(s.buf[s.pos]) {
		s.pos++
	}
	return s.buf[start:s.pos]
}

// Match reports whether the bytes at the cursor equal lit, advancing past
// it on success. It does not advance on failure.
func (s *Stream) Match(lit []byte) bool {
	if s.pos+len(lit) > len(s.buf) {
		return false
	}
	for i, b := range lit {
		if s.buf[s.pos+i] != b {
			return false
		}
	}
	s.pos += len(lit)
	return true
}

// MatchAt reports whether lit occurs at an arbitrary absolute position,
// without touching the cursor.
func (s *Stream) MatchAt(pos int, lit []byte) bool {
	if pos < 0 || pos+len(lit) > len(s.buf) {
		return false
	}
	for i, b := range lit {
		if s.buf[pos+i] != b {
			return false
		}
	}
	return true
}

// Slice returns buf[start:end], clamped to the buffer's bounds. It is the
// only non-O(1) operation the stream exposes, and it never copies.
func (s *Stream) Slice(start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > len(s.buf) {
		end = len(s.buf)
	}
	if start > end {
		return nil
	}
	return s.buf[start:end]
}

// Remaining returns every byte from the cursor to the end of the buffer.
func (s *Stream) Remaining() []byte {
	return s.buf[s.pos:]
}

// Checkpoint pushes the current position so a later Restore can return to
// it; checkpoints nest.
func (s *Stream) Checkpoint() {
	s.checkpoints = append(s.checkpoints, s.pos)
}

// Restore pops the most recent checkpoint and moves the cursor back to it.
// It is a no-op if no checkpoint is pending.
func (s *Stream) Restore() {
	n := len(s.checkpoints)
	if n == 0 {
		return
	}
	s.pos = s.checkpoints[n-1]
	s.checkpoints = s.checkpoints[:n-1]
}

// Commit pops the most recent checkpoint without moving the cursor,
// accepting whatever progress was made since it was pushed.
func (s *Stream) Commit() {
	n := len(s.checkpoints)
	if n == 0 {
		return
	}
	s.checkpoints = s.checkpoints[:n-1]
}
