package hotreload

// QueueCapacity bounds the shared command queue. Producers (watchers, the
// stdin reader, the interrupt handler) block when it is full; this is the
// session's only backpressure mechanism.
const QueueCapacity = 32

// CommandKind enumerates the closed set of session commands.
type CommandKind int

const (
	CmdStart CommandKind = iota
	CmdStop
	CmdRebuild
	CmdSendCommand
	CmdWaitUntilExit
	CmdBootstrap
)

// String returns the command kind name for logs.
func (k CommandKind) String() string {
	switch k {
	case CmdStart:
		return "start"
	case CmdStop:
		return "stop"
	case CmdRebuild:
		return "rebuild"
	case CmdSendCommand:
		return "send-command"
	case CmdWaitUntilExit:
		return "wait-until-exit"
	case CmdBootstrap:
		return "bootstrap"
	default:
		return "unknown"
	}
}

// Command is one unit of work for the session controller. Text carries the
// payload for CmdSendCommand; Path carries the config-relative path for
// CmdBootstrap.
type Command struct {
	Kind CommandKind
	Text string
	Path string
}

// SendCommand builds a CmdSendCommand, ensuring the text is newline
// terminated as the child's stdin protocol requires.
func SendCommand(text string) Command {
	if len(text) == 0 || text[len(text)-1] != '\n' {
		text += "\n"
	}
	return Command{Kind: CmdSendCommand, Text: text}
}

// Bootstrap builds a CmdBootstrap for a config-relative path.
func Bootstrap(relPath string) Command {
	return Command{Kind: CmdBootstrap, Path: relPath}
}
