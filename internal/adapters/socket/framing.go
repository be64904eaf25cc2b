package socket

import "bytes"

// frameBuffer accumulates raw connection bytes and yields complete top-level
// JSON objects. Braces are balanced with string and escape tracking, so a
// '}' inside a string literal never closes a frame. Bytes between frames
// that cannot start an object are discarded.
type frameBuffer struct {
	buf []byte
}

// append adds freshly read bytes.
func (f *frameBuffer) append(data []byte) {
	f.buf = append(f.buf, data...)
}

// len returns the number of buffered bytes awaiting a complete frame.
func (f *frameBuffer) len() int { return len(f.buf) }

// next extracts the next complete {...} object, or returns nil if the buffer
// holds only an incomplete frame.
func (f *frameBuffer) next() []byte {
	// Skip to the first opening brace; anything before it is noise.
	start := bytes.IndexByte(f.buf, '{')
	if start < 0 {
		f.buf = f.buf[:0]
		return nil
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(f.buf); i++ {
		c := f.buf[i]

		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				frame := make([]byte, i-start+1)
				copy(frame, f.buf[start:i+1])
				rest := copy(f.buf, f.buf[i+1:])
				f.buf = f.buf[:rest]
				return frame
			}
		}
	}

	// Incomplete: drop the leading noise, keep the partial frame.
	if start > 0 {
		rest := copy(f.buf, f.buf[start:])
		f.buf = f.buf[:rest]
	}
	return nil
}
