// Package ttylog records and replays console sessions.
package ttylog

import (
	"io"
	"log"
	"sync"
	"time"
)

// FD identifies the stream an IO event travelled on.
type FD int

const (
	FDStdin FD = iota
	FDStdout
	FDStderr
)

// Entry is a single event in a recording, exactly one of IO and Close is
// set.
type Entry struct {
	TimestampMicros int64
	IO              *IO
	Close           *Close
}

// IO holds bytes read from the keyboard or written to the console.
type IO struct {
	FD   FD
	Data []byte
}

// Close marks the end of a session.
type Close struct{}

// LogSink receives log events.
type LogSink func(e *Entry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF if the
	// source has no more log entries.
	Next() (*Entry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(entry *Entry) error {
		once.Do(func() {
			prevTimeMicros = entry.TimestampMicros
		})

		delta := entry.TimestampMicros - prevTimeMicros
		prevTimeMicros = entry.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(entry)
	}
}

// NewClientOutput writes what the client saw, stdout and stderr, to w.
func NewClientOutput(w io.Writer) LogSink {
	return func(entry *Entry) error {
		if entry.IO == nil || entry.IO.FD == FDStdin {
			return nil
		}
		_, err := w.Write(entry.IO.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) error {
	for {
		entry, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(entry); err != nil {
			return err
		}
	}
}

// Recorder timestamps the traffic of a console and forwards it to a sink.
// Sink failures are logged, not returned.
type Recorder struct {
	mutex  sync.Mutex
	output LogSink
	now    func() time.Time
}

// NewRecorder creates a recorder that forwards all events to output.
func NewRecorder(output LogSink) *Recorder {
	return &Recorder{
		output: output,
		now:    time.Now,
	}
}

func (r *Recorder) record(entry *Entry) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry.TimestampMicros = r.now().UnixNano() / int64(time.Microsecond)
	if err := r.output(entry); err != nil {
		log.Print(err)
	}
}

func (r *Recorder) recordIO(fd FD, data []byte) {
	if len(data) == 0 {
		return
	}

	r.record(&Entry{
		IO: &IO{
			FD:   fd,
			Data: append([]byte(nil), data...),
		},
	})
}

// Input wraps the keyboard stream.
func (r *Recorder) Input(rd io.Reader) io.Reader {
	return &recordingReader{r: r, wrapped: rd}
}

// Output wraps the console stream.
func (r *Recorder) Output(w io.Writer) io.Writer {
	return &recordingWriter{r: r, wrapped: w}
}

// Close records the end of the session.
func (r *Recorder) Close() error {
	r.record(&Entry{Close: &Close{}})
	return nil
}

type recordingReader struct {
	r       *Recorder
	wrapped io.Reader
}

var _ io.Reader = (*recordingReader)(nil)

func (rr *recordingReader) Read(p []byte) (int, error) {
	n, err := rr.wrapped.Read(p)
	rr.r.recordIO(FDStdin, p[:n])
	return n, err
}

type recordingWriter struct {
	r       *Recorder
	wrapped io.Writer
}

var _ io.Writer = (*recordingWriter)(nil)

func (rw *recordingWriter) Write(p []byte) (int, error) {
	n, err := rw.wrapped.Write(p)
	rw.r.recordIO(FDStdout, p[:n])
	return n, err
}
