package testing

import (
	"io"
	"strings"
)

// ScriptedConsole is a console whose input is a fixed list of lines. Once the
// lines run out, ReadLine returns [io.EOF].
type ScriptedConsole struct {
	Input  []string
	output strings.Builder
}

// NewScriptedConsole creates a console that will return `lines` in order.
func NewScriptedConsole(lines ...string) *ScriptedConsole {
	return &ScriptedConsole{Input: lines}
}

func (console *ScriptedConsole) Write(text string) {
	console.output.WriteString(text)
}

func (console *ScriptedConsole) WriteLine(text string) {
	console.output.WriteString(text)
	console.output.WriteByte('\n')
}

func (console *ScriptedConsole) ReadLine() (string, error) {
	if len(console.Input) == 0 {
		return "", io.EOF
	}
	line := console.Input[0]
	console.Input = console.Input[1:]
	return line, nil
}

// Output returns everything written to the console so far.
func (console *ScriptedConsole) Output() string {
	return console.output.String()
}

// OutputLines returns the output split into lines. A trailing partial line
// (such as the prompt) is included as the last element.
func (console *ScriptedConsole) OutputLines() []string {
	output := console.Output()
	if output == "" {
		return nil
	}
	lines := strings.Split(output, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ResetOutput discards everything written so far.
func (console *ScriptedConsole) ResetOutput() {
	console.output.Reset()
}
