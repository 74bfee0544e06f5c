package vos

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Pipe is a fixed capacity byte queue connecting a writer to a reader.
//
// Reads block until data is available or the write end is closed, after
// which the remaining bytes are drained and io.EOF is returned. Writes block
// while the buffer is full and fail with io.ErrClosedPipe once the read end
// is closed. The two ends are closed independently.
type Pipe struct {
	mu   sync.Mutex
	cond *sync.Cond

	buf  []byte
	head int
	size int

	readClosed  bool
	writeClosed bool

	onRelease func()
	released  bool
}

// NewPipe creates an unmanaged pipe with the given capacity.
func NewPipe(capacity int) *Pipe {
	p := &Pipe{buf: make([]byte, capacity)}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Read implements io.Reader.
func (p *Pipe) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.size == 0 {
		switch {
		case p.readClosed:
			return 0, io.ErrClosedPipe
		case p.writeClosed:
			return 0, io.EOF
		}
		p.cond.Wait()
	}

	n := 0
	for n < len(b) && p.size > 0 {
		chunk := copy(b[n:], p.buf[p.head:min(p.head+p.size, len(p.buf))])
		p.head = (p.head + chunk) % len(p.buf)
		p.size -= chunk
		n += chunk
	}
	if p.size == 0 {
		p.head = 0
	}

	p.cond.Broadcast()
	return n, nil
}

// Write implements io.Writer.
func (p *Pipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	written := 0
	for written < len(b) {
		if p.readClosed || p.writeClosed {
			return written, io.ErrClosedPipe
		}

		if p.size == len(p.buf) {
			p.cond.Wait()
			continue
		}

		tail := (p.head + p.size) % len(p.buf)
		end := len(p.buf)
		if tail < p.head {
			end = p.head
		}
		chunk := copy(p.buf[tail:end], b[written:])
		p.size += chunk
		written += chunk

		p.cond.Broadcast()
	}

	return written, nil
}

// CloseRead closes the read end.
func (p *Pipe) CloseRead() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.readClosed = true
	p.closed()
	return nil
}

// CloseWrite closes the write end.
func (p *Pipe) CloseWrite() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.writeClosed = true
	p.closed()
	return nil
}

func (p *Pipe) closed() {
	p.cond.Broadcast()
	if p.readClosed && p.writeClosed && !p.released {
		p.released = true
		if p.onRelease != nil {
			p.onRelease()
		}
	}
}

// Len returns the number of buffered bytes.
func (p *Pipe) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// Cap returns the capacity of the buffer.
func (p *Pipe) Cap() int {
	return len(p.buf)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// PipeAllocator hands out pipes while limiting how many are live. A pipe
// stops counting against the limit once both of its ends are closed.
type PipeAllocator struct {
	capacity int
	limit    int32
	live     int32
}

// NewPipeAllocator creates an allocator of pipes holding capacity bytes,
// at most limit of which may be live at once.
func NewPipeAllocator(capacity, limit int) *PipeAllocator {
	return &PipeAllocator{
		capacity: capacity,
		limit:    int32(limit),
	}
}

// Allocate creates a pipe or returns ErrResourceExhausted.
func (a *PipeAllocator) Allocate() (*Pipe, error) {
	if atomic.AddInt32(&a.live, 1) > a.limit {
		atomic.AddInt32(&a.live, -1)
		return nil, fmt.Errorf("pipe: %w", ErrResourceExhausted)
	}

	p := NewPipe(a.capacity)
	p.onRelease = func() {
		atomic.AddInt32(&a.live, -1)
	}
	return p, nil
}

// Live returns the number of pipes with at least one open end.
func (a *PipeAllocator) Live() int {
	return int(atomic.LoadInt32(&a.live))
}
