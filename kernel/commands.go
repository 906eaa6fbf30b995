package kernel

// Command identifies a shell built-in.
type Command int

const (
	// CommandNone means the input didn't match any built-in.
	CommandNone Command = iota
	CommandHelp
	CommandQuit
	CommandList
	CommandInfo
	CommandExec
)

type commandEntry struct {
	name    string
	command Command
}

// commandTable maps built-in names to commands. It ends with an entry whose
// name is empty.
var commandTable = []commandEntry{
	{"help", CommandHelp},
	{"quit", CommandQuit},
	{"list", CommandList},
	{"info", CommandInfo},
	{"exec", CommandExec},
	{"", CommandNone},
}

// LookupCommand returns the built-in named exactly `input`, or CommandNone.
func LookupCommand(input string) Command {
	for _, entry := range commandTable {
		if entry.name == "" {
			break
		}
		if entry.name == input {
			return entry.command
		}
	}
	return CommandNone
}

func (command Command) String() string {
	for _, entry := range commandTable {
		if entry.name == "" {
			break
		}
		if entry.command == command {
			return entry.name
		}
	}
	return "none"
}

var helpText = []string{
	"Available commands:",
	"   help    show this message",
	"   list    list the programs on the disk",
	"   info    show the layout of the disk",
	"   exec    run the first program on the disk",
	"   quit    halt the system",
	"Anything else runs the program with that name.",
}
