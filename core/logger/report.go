package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

func NewBugReport() *BugReport {
	return &BugReport{
		CommandErrors:   NewPathCounter("command", "error"),
		UnknownCommands: NewPathCounter("command", "path"),
	}
}

// BugReport pulls events that are likely bugs in the programs or missing
// programs.
type BugReport struct {
	LogEntries int `json:"log_entries"`

	CommandErrors   *PathCounter `json:"command_errors"`
	UnknownCommands *PathCounter `json:"unknown_commands"`
	Panics          []*Panic     `json:"panics"`
}

func (r *BugReport) Update(le *LogEntry) {
	r.LogEntries++

	switch event := le.GetLogType().(type) {
	case *Panic:
		r.Panics = append(r.Panics, event)
	case *UnknownCommand:
		r.UnknownCommands.Increment(firstOrEmpty(event.Command), event.Path)
	case *CommandError:
		r.CommandErrors.Increment(firstOrEmpty(event.Command), event.Error)
	}
}

type InteractionReport struct {
	// Map of sessionID -> interactions
	interactions map[string]*InteractiveSession
}

type InteractiveSession struct {
	Hostname   string   `json:"hostname"`
	RemoteAddr string   `json:"remote_addr,omitempty"`
	User       string   `json:"user,omitempty"`
	TTYLog     string   `json:"tty_log,omitempty"`
	LogEntries int      `json:"log_entries"`
	Commands   []string `json:"commands"`
	Processes  int      `json:"processes"`
}

func (i *InteractiveSession) Update(le *LogEntry) {
	i.LogEntries++

	switch event := le.GetLogType().(type) {
	case *SessionStart:
		i.Hostname = event.Hostname
		i.RemoteAddr = event.RemoteAddr
		i.User = event.User
		i.TTYLog = event.TTYLog
	case *RunCommand:
		i.Commands = append(i.Commands, event.Line)
	case *Spawn:
		i.Processes++
	}
}

func (i *InteractionReport) init() {
	if i.interactions == nil {
		i.interactions = make(map[string]*InteractiveSession)
	}
}

// MarshalJSON implemnts custom JSON marshaler.
func (i *InteractionReport) MarshalJSON() ([]byte, error) {
	i.init()

	return json.Marshal(i.interactions)
}

func (i *InteractionReport) Update(le *LogEntry) {
	i.init()

	sessionID := le.SessionId
	if sessionID == "" {
		return
	}
	report, ok := i.interactions[sessionID]
	if !ok {
		report = &InteractiveSession{}
		i.interactions[sessionID] = report
	}

	report.Update(le)
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	Sessions       SessionReport        `json:"session_report"`
	RunCommand     RunCommandReport     `json:"run_command_report"`
	Process        ProcessReport        `json:"process_report"`
	UnknownCommand UnknownCommandReport `json:"unknown_command_report"`
	CommandError   CommandErrorReport   `json:"command_error_report"`
	Panic          PanicReport          `json:"panic_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch event := le.GetLogType().(type) {
	case *SessionStart:
		r.Sessions.update(event)
	case *RunCommand:
		r.RunCommand.update(event)
	case *Spawn:
		r.Process.updateSpawn(event)
	case *Exit:
		r.Process.updateExit(event)
	case *UnknownCommand:
		r.UnknownCommand.update(event)
	case *CommandError:
		r.CommandError.update(event)
	case *Panic:
		r.Panic.update(event)
	case *Foreground:
		// Ignore
	default:
		r.InvalidEntries.Increment(fmt.Sprintf("%T", event))
	}
}

type SessionReport struct {
	Count     int        `json:"count"`
	Hostnames StrCounter `json:"hostnames"`
}

func (r *SessionReport) update(ss *SessionStart) {
	r.Count++
	r.Hostnames.Increment(ss.Hostname)
}

type RunCommandReport struct {
	// Verbs holds the first word of each line.
	Verbs StrCounter `json:"verbs"`
	// Kinds holds how each line was dispatched.
	Kinds StrCounter `json:"kinds"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	r.Verbs.Increment(firstWord(rc.Line))
	r.Kinds.Increment(rc.Kind)
}

type ProcessReport struct {
	Spawned     int        `json:"spawned"`
	Paths       StrCounter `json:"paths"`
	Statuses    StrCounter `json:"exit_statuses"`
	Interrupted int        `json:"interrupted"`
}

func (r *ProcessReport) updateSpawn(s *Spawn) {
	r.Spawned++
	r.Paths.Increment(s.Path)
}

func (r *ProcessReport) updateExit(e *Exit) {
	r.Statuses.Increment(fmt.Sprintf("%d", e.Status))
	if e.Interrupted {
		r.Interrupted++
	}
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *UnknownCommandReport) update(logEntry *UnknownCommand) {
	if len(logEntry.Command) > 0 {
		r.CommandNames.Increment(logEntry.Command[0])
	}
}

type CommandErrorReport struct {
	CommandNames StrCounter `json:"command_counts"`
}

func (r *CommandErrorReport) update(logEntry *CommandError) {
	if len(logEntry.Command) > 0 {
		r.CommandNames.Increment(logEntry.Command[0])
	}
}

type PanicReport struct {
	Contexts []string `json:"contexts"`
}

func (r *PanicReport) update(p *Panic) {
	r.Contexts = append(r.Contexts, p.Context)
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func firstWord(line string) string {
	if fields := strings.Fields(line); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// StrCounter tallies how often each string was seen.
type StrCounter struct {
	counts map[string]int
}

// Increment adds one to key.
func (s *StrCounter) Increment(key string) {
	if s.counts == nil {
		s.counts = make(map[string]int)
	}
	s.counts[key]++
}

// Get returns the tally for key.
func (s *StrCounter) Get(key string) int {
	return s.counts[key]
}

func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.counts)
}

// PathCounter tallies tuples of named fields. It marshals to a list with the
// most common tuples first.
type PathCounter struct {
	fields []string
	counts map[string]*tupleCount
}

type tupleCount struct {
	Count  int               `json:"count"`
	Fields map[string]string `json:"event"`

	key string
}

// NewPathCounter creates a counter for tuples with the given field names.
func NewPathCounter(fields ...string) *PathCounter {
	return &PathCounter{
		fields: fields,
		counts: make(map[string]*tupleCount),
	}
}

// Increment adds one to the tuple, it must have a value for every field.
func (c *PathCounter) Increment(values ...string) {
	if len(values) != len(c.fields) {
		panic(fmt.Sprintf("got %d values for %d fields", len(values), len(c.fields)))
	}

	key := strings.Join(values, "\x00")
	tc, ok := c.counts[key]
	if !ok {
		tc = &tupleCount{key: key, Fields: make(map[string]string)}
		for i, field := range c.fields {
			tc.Fields[field] = values[i]
		}
		c.counts[key] = tc
	}
	tc.Count++
}

func (c *PathCounter) MarshalJSON() ([]byte, error) {
	out := make([]*tupleCount, 0, len(c.counts))
	for _, tc := range c.counts {
		out = append(out, tc)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].key < out[j].key
	})
	return json.Marshal(out)
}
