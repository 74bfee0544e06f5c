package logger

// LogEntry is a single event in the log.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionId       string `json:"session_id,omitempty"`

	SessionStart   *SessionStart   `json:"session_start,omitempty"`
	RunCommand     *RunCommand     `json:"run_command,omitempty"`
	Spawn          *Spawn          `json:"spawn,omitempty"`
	Exit           *Exit           `json:"exit,omitempty"`
	Foreground     *Foreground     `json:"foreground,omitempty"`
	UnknownCommand *UnknownCommand `json:"unknown_command,omitempty"`
	CommandError   *CommandError   `json:"command_error,omitempty"`
	Panic          *Panic          `json:"panic,omitempty"`
}

// LogType is implemented by every event that can be stored in a LogEntry.
type LogType interface {
	setOn(le *LogEntry)
}

// GetLogType returns the populated event, or nil if there is none.
func (le *LogEntry) GetLogType() LogType {
	switch {
	case le.SessionStart != nil:
		return le.SessionStart
	case le.RunCommand != nil:
		return le.RunCommand
	case le.Spawn != nil:
		return le.Spawn
	case le.Exit != nil:
		return le.Exit
	case le.Foreground != nil:
		return le.Foreground
	case le.UnknownCommand != nil:
		return le.UnknownCommand
	case le.CommandError != nil:
		return le.CommandError
	case le.Panic != nil:
		return le.Panic
	default:
		return nil
	}
}

// SessionStart is logged when a machine boots for a console.
type SessionStart struct {
	Hostname   string `json:"hostname"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	User       string `json:"user,omitempty"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	TTYLog     string `json:"tty_log,omitempty"`
}

func (e *SessionStart) setOn(le *LogEntry) { le.SessionStart = e }

// RunCommand is logged for every non-empty line the shell executes.
type RunCommand struct {
	Line string `json:"line"`
	// Kind is one of builtin, external, redirect or pipeline.
	Kind string `json:"kind"`
}

func (e *RunCommand) setOn(le *LogEntry) { le.RunCommand = e }

// Spawn is logged when the scheduler starts a process.
type Spawn struct {
	Pid  int      `json:"pid"`
	Pgid int      `json:"pgid"`
	Path string   `json:"path"`
	Argv []string `json:"argv"`
}

func (e *Spawn) setOn(le *LogEntry) { le.Spawn = e }

// Exit is logged when a process terminates.
type Exit struct {
	Pid         int    `json:"pid"`
	Path        string `json:"path"`
	Status      int    `json:"status"`
	Interrupted bool   `json:"interrupted,omitempty"`
}

func (e *Exit) setOn(le *LogEntry) { le.Exit = e }

// Foreground is logged when the terminal's foreground group changes.
type Foreground struct {
	Pgid int `json:"pgid"`
}

func (e *Foreground) setOn(le *LogEntry) { le.Foreground = e }

// UnknownCommand is logged when a verb doesn't resolve to any program.
type UnknownCommand struct {
	Command []string `json:"command"`
	Path    string   `json:"path"`
}

func (e *UnknownCommand) setOn(le *LogEntry) { le.UnknownCommand = e }

// CommandError is logged when the shell or a program rejects its input.
type CommandError struct {
	Command []string `json:"command"`
	Error   string   `json:"error"`
}

func (e *CommandError) setOn(le *LogEntry) { le.CommandError = e }

// Panic is logged when a program panics.
type Panic struct {
	Context    string `json:"context"`
	Stacktrace string `json:"stacktrace"`
}

func (e *Panic) setOn(le *LogEntry) { le.Panic = e }
