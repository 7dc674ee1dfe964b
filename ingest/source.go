package ingest

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// LineSource produces raw input lines. ReadLine returns io.EOF at the end of input.
type LineSource interface {
	ReadLine() (string, error)
}

// ReaderSource reads newline terminated lines from an io.Reader.
// Lines of any length are supported.
type ReaderSource struct {
	r *bufio.Reader
}

// NewReaderSource creates a LineSource over r.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: bufio.NewReaderSize(r, 64*1024)}
}

// ReadLine returns the next line without its terminator.
func (s *ReaderSource) ReadLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// SliceSource serves lines from memory.
type SliceSource struct {
	lines []string
	pos   int
}

// NewSliceSource creates a LineSource over lines.
func NewSliceSource(lines ...string) *SliceSource {
	return &SliceSource{lines: lines}
}

// ReadLine returns the next line.
func (s *SliceSource) ReadLine() (string, error) {
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.pos]
	s.pos++
	return line, nil
}
