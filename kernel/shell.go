package kernel

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dargueta/tydos"
	"github.com/dargueta/tydos/errors"
	"github.com/dargueta/tydos/file_systems/tyfs"
)

// Prompt is written before every line of input.
const Prompt = "$ "

// MessageCommandNotFound is shown when the input is neither a built-in nor the
// name of a program.
const MessageCommandNotFound = "Command not found"

// MessageBye is shown by the quit command.
const MessageBye = "Program halted. Bye."

// Shell is the kernel's command interpreter.
type Shell struct {
	console tydos.Console
	walker  *tyfs.Walker
	loader  *Loader
	header  tyfs.Header
	running bool
	trapped bool
	logger  *slog.Logger
}

// NewShell creates a shell that reads commands from `console`. If `logger` is
// nil, [slog.Default] is used.
func NewShell(
	console tydos.Console,
	walker *tyfs.Walker,
	loader *Loader,
	header tyfs.Header,
	logger *slog.Logger,
) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{
		console: console,
		walker:  walker,
		loader:  loader,
		header:  header,
		logger:  logger,
	}
}

// Running reports whether the shell will read another command.
func (s *Shell) Running() bool {
	return s.running
}

// Trapped reports whether a program handed control back to the kernel, which
// halts the machine.
func (s *Shell) Trapped() bool {
	return s.trapped
}

// readCommand prompts until a nonempty line is entered.
func (s *Shell) readCommand() (string, error) {
	for {
		s.console.Write(Prompt)
		line, err := s.console.ReadLine()
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
	}
}

// Run reads and executes commands until told to quit, a program hands control
// back to the kernel, or the input ends. Running out of input isn't an error.
func (s *Shell) Run() error {
	s.running = true
	s.trapped = false
	for s.running {
		line, err := s.readCommand()
		if err == io.EOF {
			s.logger.Debug("end of input")
			s.running = false
			return nil
		}
		if err != nil {
			s.running = false
			return err
		}
		s.Execute(line)
	}
	return nil
}

// Execute runs one line of input.
func (s *Shell) Execute(line string) {
	command := LookupCommand(line)
	s.logger.Debug(
		"dispatching",
		slog.String("input", line),
		slog.String("command", command.String()),
	)

	switch command {
	case CommandHelp:
		for _, text := range helpText {
			s.console.WriteLine(text)
		}
	case CommandQuit:
		s.console.WriteLine(MessageBye)
		s.running = false
	case CommandList:
		s.list()
	case CommandInfo:
		s.info()
	case CommandExec:
		s.execFirst()
	default:
		s.run(line)
	}
}

func (s *Shell) list() {
	listing, err := s.walker.List()
	if err != nil {
		s.console.WriteLine(err.Error())
		return
	}

	for {
		entry, ok := listing.Next()
		if !ok {
			break
		}
		s.console.WriteLine(entry.Name)
	}
	if listing.Err() != nil {
		s.console.WriteLine(listing.Err().Error())
	}
}

func (s *Shell) info() {
	geometry := s.header.Geometry()
	lines := []string{
		fmt.Sprintf("Signature:      %s", s.header.SignatureString()),
		fmt.Sprintf("Total sectors:  %d", geometry.TotalSectors),
		fmt.Sprintf("Boot sectors:   %d", geometry.BootSectors),
		fmt.Sprintf(
			"Directory:      sectors %d-%d, %d entries",
			geometry.DirectoryStart,
			geometry.DirectoryStart+geometry.DirectorySectors-1,
			geometry.FileEntries,
		),
		fmt.Sprintf(
			"Programs:       sectors %d-%d, %d sectors each",
			geometry.ProgramsStart(),
			geometry.LastSector(),
			geometry.MaxFileSize,
		),
	}
	for _, line := range lines {
		s.console.WriteLine(line)
	}
}

func (s *Shell) execFirst() {
	listing, err := s.walker.List()
	if err != nil {
		s.console.WriteLine(err.Error())
		return
	}

	entry, ok := listing.Next()
	if !ok {
		if listing.Err() != nil {
			s.console.WriteLine(listing.Err().Error())
		} else {
			s.console.WriteLine("No programs on disk")
		}
		return
	}
	s.run(entry.Name)
}

// run loads and runs the program named `name`.
func (s *Shell) run(name string) {
	err := s.loader.LoadAndRun(name)
	switch {
	case err == nil:
		return
	case errors.Is(err, errors.ErrNotFound):
		s.console.WriteLine(MessageCommandNotFound)
	case errors.Is(err, errors.ErrProgramReturned):
		// The loader has already reported this and halted the machine.
		s.running = false
		s.trapped = true
	default:
		s.console.WriteLine(err.Error())
	}
}
