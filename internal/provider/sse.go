package provider

import (
	"bufio"
	"io"
	"strings"
)

// sseReader extracts data payloads from a server-sent-event byte stream.
// Both vendors deliver their streaming chunks as "data: <json>" lines; other
// SSE fields and blank keep-alive lines are skipped.
type sseReader struct {
	r *bufio.Reader
}

func newSSEReader(r io.Reader) *sseReader {
	return &sseReader{r: bufio.NewReader(r)}
}

// next returns the next data payload. It returns io.EOF when the underlying
// stream ends.
func (s *sseReader) next() (string, error) {
	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			if err == io.EOF && strings.HasPrefix(line, "data:") {
				// Final payload without a trailing newline.
				return strings.TrimSpace(strings.TrimPrefix(line, "data:")), nil
			}
			return "", err
		}

		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		return strings.TrimSpace(strings.TrimPrefix(line, "data:")), nil
	}
}
