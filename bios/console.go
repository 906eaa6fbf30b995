package bios

import (
	"bufio"
	"io"
	"strings"
)

// Console is a line-oriented text console on top of a pair of streams, such as
// a terminal's standard input and output.
//
// Write errors are sticky: after the first one, further output is dropped and
// the error is available from Err().
type Console struct {
	input  *bufio.Reader
	output io.Writer
	err    error
}

// NewConsole creates a console reading lines from `input` and writing text to
// `output`.
func NewConsole(input io.Reader, output io.Writer) *Console {
	return &Console{
		input:  bufio.NewReader(input),
		output: output,
	}
}

// Write implements [tydos.Display].
func (console *Console) Write(text string) {
	if console.err != nil {
		return
	}
	_, console.err = io.WriteString(console.output, text)
}

// WriteLine implements [tydos.Display].
func (console *Console) WriteLine(text string) {
	console.Write(text + "\n")
}

// ReadLine implements [tydos.LineReader]. Both "\n" and "\r\n" terminate a
// line. A final line without a terminator is still returned; [io.EOF] is only
// reported once there's nothing left at all.
func (console *Console) ReadLine() (string, error) {
	line, err := console.input.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Err returns the first error encountered while writing, if any.
func (console *Console) Err() error {
	return console.err
}
