// Package input abstracts line-oriented reading from stdin so secrets
// can be piped into commands and tests can run without a terminal.
package input

import (
	"bufio"
	"io"
	"os"
)

// Reader reads delimited input, typically a token piped to stdin.
type Reader interface {
	ReadString(delim byte) (string, error)
}

// StdinReader reads from the process's standard input.
type StdinReader struct {
	reader *bufio.Reader
}

// NewStdinReader creates a Reader over os.Stdin.
func NewStdinReader() *StdinReader {
	return &StdinReader{
		reader: bufio.NewReader(os.Stdin),
	}
}

// ReadString reads until delimiter
func (r *StdinReader) ReadString(delim byte) (string, error) {
	return r.reader.ReadString(delim)
}

// StringReader feeds pre-seeded lines to tests. Each input must already
// carry the delimiter ReadString will be called with (e.g. "token\n").
type StringReader struct {
	inputs []string
	index  int
}

// NewStringReader creates a reader that replays the given inputs in order.
func NewStringReader(inputs ...string) *StringReader {
	return &StringReader{inputs: inputs}
}

// ReadString returns the next pre-seeded input, or io.EOF once all
// inputs are consumed. The delim parameter is ignored.
func (r *StringReader) ReadString(delim byte) (string, error) {
	if r.index >= len(r.inputs) {
		return "", io.EOF
	}
	result := r.inputs[r.index]
	r.index++
	return result, nil
}
