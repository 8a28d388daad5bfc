package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Session is one interactive conversation: the lines the user types and the output they see.
type Session struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewSession creates a Session reading from r and writing to w.
func NewSession(r io.Reader, w io.Writer) *Session {
	return &Session{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// ReadLine returns the next input line without its line ending.
// A last line without a trailing newline is returned normally, io.EOF only comes after it.
func (s *Session) ReadLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) || line == "" {
			return "", err
		}
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// Writer returns the output of the Session.
func (s *Session) Writer() io.Writer {
	return s.writer
}

// Println writes one line of output.
func (s *Session) Println(a ...any) {
	_, _ = fmt.Fprintln(s.writer, a...)
}

// Printf writes formatted output.
func (s *Session) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.writer, format, a...)
}
