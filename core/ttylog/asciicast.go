package ttylog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// AsciicastFileExt holds the suggested file extension for asciicast files.
const AsciicastFileExt = "cast"

// asciicastHeader is the first line of an asciicast v2 file.
type asciicastHeader struct {
	Version   int               `json:"version"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Timestamp int64             `json:"timestamp"`
	Title     string            `json:"title,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

// asciicastEvent is every line after the header, encoded as the array
// [time, code, data].
type asciicastEvent struct {
	Time float64
	Code string
	Data string
}

// Event codes.
const (
	asciicastOutput = "o"
	asciicastInput  = "i"
)

func (e *asciicastEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]interface{}{e.Time, e.Code, e.Data})
}

func (e *asciicastEvent) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if len(fields) != 3 {
		return fmt.Errorf("malformed event, expected 3 fields got %d", len(fields))
	}

	for i, dest := range []interface{}{&e.Time, &e.Code, &e.Data} {
		if err := json.Unmarshal(fields[i], dest); err != nil {
			return fmt.Errorf("malformed event field %d: %w", i, err)
		}
	}
	return nil
}

// NewAsciicastLogSink creates a LogSink compatible with the asciicast v2
// format for a console of the given size. The header is written with the
// first entry.
//
// See: https://github.com/asciinema/asciinema/blob/develop/doc/asciicast-v2.md
func NewAsciicastLogSink(w io.Writer, width, height int) LogSink {
	encoder := json.NewEncoder(w)

	var (
		start     int64
		once      sync.Once
		headerErr error
	)

	return func(entry *Entry) error {
		once.Do(func() {
			start = entry.TimestampMicros
			headerErr = encoder.Encode(&asciicastHeader{
				Version:   2,
				Width:     width,
				Height:    height,
				Timestamp: start / int64(time.Second/time.Microsecond),
				Title:     "kshell session",
				Env: map[string]string{
					"TERM":  "xterm-256color",
					"SHELL": "/bin/kshell",
				},
			})
		})
		if headerErr != nil {
			return headerErr
		}

		switch {
		case entry.IO != nil:
			code := asciicastOutput
			if entry.IO.FD == FDStdin {
				code = asciicastInput
			}
			return encoder.Encode(&asciicastEvent{
				Time: microsecondsToSeconds(entry.TimestampMicros - start),
				Code: code,
				Data: string(entry.IO.Data),
			})
		case entry.Close != nil:
			// The format has no close event, the file just ends.
			return nil
		default:
			return fmt.Errorf("empty log entry at %d", entry.TimestampMicros)
		}
	}
}

// AsciicastLogSource reads entries from an asciicast v2 file.
type AsciicastLogSource struct {
	r          *bufio.Reader
	headerOnce sync.Once
	header     asciicastHeader
	headerErr  error
}

var _ LogSource = (*AsciicastLogSource)(nil)

// NewAsciicastLogSource reads log events from an Asciicast formatted file.
func NewAsciicastLogSource(r io.Reader) *AsciicastLogSource {
	return &AsciicastLogSource{r: bufio.NewReader(r)}
}

func (log *AsciicastLogSource) readHeader() error {
	log.headerOnce.Do(func() {
		line, err := log.r.ReadBytes('\n')
		if err != nil {
			log.headerErr = err
			return
		}
		if err := json.Unmarshal(line, &log.header); err != nil {
			log.headerErr = fmt.Errorf("malformed header: %w", err)
		}
	})
	return log.headerErr
}

// Size returns the console size the recording was made with.
func (log *AsciicastLogSource) Size() (width, height int, err error) {
	err = log.readHeader()
	return log.header.Width, log.header.Height, err
}

// Next gets the next log entry, it returns io.EOF if there are no more.
// Events other than input and output are skipped.
func (log *AsciicastLogSource) Next() (*Entry, error) {
	if err := log.readHeader(); err != nil {
		return nil, err
	}

	for {
		line, err := log.r.ReadBytes('\n')
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var event asciicastEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, err
		}

		var fd FD
		switch event.Code {
		case asciicastOutput:
			fd = FDStdout
		case asciicastInput:
			fd = FDStdin
		default:
			continue
		}

		return &Entry{
			TimestampMicros: secondsToMicroseconds(event.Time),
			IO:              &IO{FD: fd, Data: []byte(event.Data)},
		}, nil
	}
}

func microsecondsToSeconds(microseconds int64) float64 {
	return float64(microseconds) / float64(time.Second/time.Microsecond)
}

func secondsToMicroseconds(seconds float64) int64 {
	return int64(seconds*float64(time.Second)) / int64(time.Microsecond)
}
