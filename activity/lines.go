package activity

import (
	"bytes"
	"io"
)

// countLines counts newline-terminated lines plus a trailing unterminated one.
// Backlog lines hold whole tasks as JSON, so no line length limit applies.
func countLines(r io.Reader) (int, error) {
	buf := make([]byte, 32*1024)
	lines := 0
	var last byte
	seen := false

	for {
		n, err := r.Read(buf)
		if n > 0 {
			lines += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
			seen = true
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if seen && last != '\n' {
		lines++
	}
	return lines, nil
}
