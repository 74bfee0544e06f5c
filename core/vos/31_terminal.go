package vos

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/josephlewis42/kshell/core/logger"
)

// Terminal is the machine's keyboard and its controlling terminal state: a
// bounded queue of key events and the foreground process group.
type Terminal struct {
	events    chan KeyEvent
	wake      chan struct{}
	closed    chan struct{}
	closeOnce sync.Once

	foreground  int32
	controlling int32

	mu          sync.Mutex
	onInterrupt func(group int)

	recorder EventRecorder
}

// NewTerminal creates a terminal that buffers up to queue key events.
func NewTerminal(queue int, recorder EventRecorder) *Terminal {
	if recorder == nil {
		recorder = NopEventRecorder{}
	}
	return &Terminal{
		events:   make(chan KeyEvent, queue),
		wake:     make(chan struct{}, 1),
		closed:   make(chan struct{}),
		recorder: recorder,
	}
}

// SetInterruptHandler sets the function called with the foreground group
// when Ctrl+C is pressed while a group other than the controlling one is in
// the foreground.
func (t *Terminal) SetInterruptHandler(fn func(group int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onInterrupt = fn
}

// SetControllingGroup sets the group that owns the terminal, normally the
// shell's. Its members receive Ctrl+C as an ordinary key event.
func (t *Terminal) SetControllingGroup(group int) {
	atomic.StoreInt32(&t.controlling, int32(group))
	t.SetForeground(group)
}

// SetForeground sets the process group that receives keyboard input.
func (t *Terminal) SetForeground(group int) {
	if int32(group) == atomic.SwapInt32(&t.foreground, int32(group)) {
		return
	}
	t.recorder.Record(&logger.Foreground{Pgid: group})
}

// Foreground gets the process group that receives keyboard input.
func (t *Terminal) Foreground() int {
	return int(atomic.LoadInt32(&t.foreground))
}

// Deliver queues a key event. It returns false if the event was dropped
// because the queue is full or the terminal is closed.
func (t *Terminal) Deliver(ev KeyEvent) bool {
	if t.interrupt(ev) {
		return true
	}
	return t.enqueue(ev, false)
}

// interrupt hands Ctrl+C to the interrupt handler when a group other than
// the controlling one is in the foreground. It reports whether it did.
func (t *Terminal) interrupt(ev KeyEvent) bool {
	if !ev.IsInterrupt() {
		return false
	}

	fg := atomic.LoadInt32(&t.foreground)
	if fg == atomic.LoadInt32(&t.controlling) {
		return false
	}

	t.mu.Lock()
	handler := t.onInterrupt
	t.mu.Unlock()

	if handler == nil {
		return false
	}
	handler(int(fg))
	return true
}

// enqueue adds ev to the queue. If wait is set it blocks until there's room
// or the terminal closes, otherwise a full queue drops the event.
func (t *Terminal) enqueue(ev KeyEvent, wait bool) bool {
	if t.isClosed() {
		return false
	}

	if wait {
		select {
		case t.events <- ev:
		case <-t.closed:
			return false
		}
	} else {
		select {
		case t.events <- ev:
		default:
			return false
		}
	}

	select {
	case t.wake <- struct{}{}:
	default:
		// A wakeup is already pending.
	}
	return true
}

func (t *Terminal) isClosed() bool {
	select {
	case <-t.closed:
		return true
	default:
		return false
	}
}

// PollEvent removes the oldest key event from the queue without blocking.
func (t *Terminal) PollEvent() (KeyEvent, bool) {
	select {
	case ev := <-t.events:
		return ev, true
	default:
		return KeyEvent{}, false
	}
}

// WaitInterrupt suspends the caller until an event may be available. It
// returns io.EOF once the terminal is closed and ctx.Err() if ctx ends.
func (t *Terminal) WaitInterrupt(ctx context.Context) error {
	select {
	case <-t.wake:
		// The wakeup may be left over from before the hangup.
		if len(t.events) == 0 && t.isClosed() {
			return io.EOF
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.closed:
		// Let readers drain what was typed before the hangup.
		if len(t.events) > 0 {
			return nil
		}
		return io.EOF
	}
}

// Close hangs up the terminal.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() {
		close(t.closed)
	})
	return nil
}

// inputBacklog is how many decoded key events ReadFrom holds while the
// queue is full. Keys past it are dropped, like a full tty input buffer.
const inputBacklog = 4096

// ReadFrom decodes keystrokes from r until it fails, then closes the
// terminal once everything read has been queued. Keys wait for room in the
// queue rather than being dropped, but Ctrl+C for a foreground job is handled
// as soon as it is read. It implements io.ReaderFrom.
func (t *Terminal) ReadFrom(r io.Reader) (int64, error) {
	defer t.Close()

	backlog := make(chan KeyEvent, inputBacklog)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range backlog {
			t.enqueue(ev, true)
		}
	}()
	defer func() {
		close(backlog)
		<-done
	}()

	var decoder KeyDecoder
	var total int64
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		total += int64(n)
		for _, ev := range decoder.Feed(buf[:n]) {
			if t.interrupt(ev) {
				continue
			}
			select {
			case backlog <- ev:
			default:
			}
		}

		switch {
		case err == io.EOF:
			return total, nil
		case err != nil:
			return total, err
		}
	}
}

// consoleReader gives programs line-buffered, echoed keyboard input.
type consoleReader struct {
	term    *Terminal
	console Console
	ctx     context.Context

	pending []byte
	eof     bool
}

var _ io.Reader = (*consoleReader)(nil)

func (r *consoleReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if r.eof {
			return 0, io.EOF
		}

		line, err := r.readLine()
		if err != nil {
			return 0, err
		}
		r.pending = line
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *consoleReader) readLine() ([]byte, error) {
	var line []byte
	for {
		ev, ok := r.term.PollEvent()
		if !ok {
			if err := r.term.WaitInterrupt(r.ctx); err != nil {
				if r.ctx.Err() != nil {
					return nil, ErrInterrupted
				}
				return nil, err
			}
			continue
		}

		if !ev.Pressed {
			continue
		}

		switch {
		case ev.IsInterrupt():
			return nil, ErrInterrupted
		case ev.IsEOF():
			r.eof = true
			if len(line) == 0 {
				return nil, io.EOF
			}
			return line, nil
		case ev.Key == KeyEnter:
			r.console.PutChar('\n')
			return append(line, '\n'), nil
		case ev.Key == KeyBackspace:
			if len(line) > 0 {
				line = line[:len(line)-1]
				for _, c := range []byte("\b \b") {
					r.console.PutChar(c)
				}
			}
		default:
			if c, ok := ev.Printable(); ok {
				line = append(line, c)
				r.console.PutChar(c)
			}
		}
	}
}
