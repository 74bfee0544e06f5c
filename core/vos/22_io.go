package vos

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/afero"
)

type VIOAdapter struct {
	IStdin  io.ReadCloser
	IStdout io.WriteCloser
	IStderr io.WriteCloser
}

func NewVIOAdapter(stdin io.Reader, stdout, stderr io.Writer) *VIOAdapter {
	return &VIOAdapter{
		IStdin:  toReadCloserOrDiscard(stdin),
		IStdout: toWriteCloserOrDiscard(stdout),
		IStderr: toWriteCloserOrDiscard(stderr),
	}
}

// NewNullIO creates a valid /dev/null style I/O, reads won't work and
// writes will be discarded.
func NewNullIO() VIO {
	return NewVIOAdapter(nil, nil, nil)
}

var _ VIO = (*VIOAdapter)(nil)

func (pr *VIOAdapter) Stdin() io.ReadCloser {
	return pr.IStdin
}

func (pr *VIOAdapter) Stdout() io.WriteCloser {
	return pr.IStdout
}

func (pr *VIOAdapter) Stderr() io.WriteCloser {
	return pr.IStderr
}

func toWriteCloserOrDiscard(w io.Writer) io.WriteCloser {
	if w == nil {
		return &devNull{}
	}
	if wc, ok := w.(io.WriteCloser); ok {
		return wc
	}

	return nopWriteCloser{w}
}

func toReadCloserOrDiscard(r io.Reader) io.ReadCloser {
	if r == nil {
		return &devNull{}
	}
	if rc, ok := r.(io.ReadCloser); ok {
		return rc
	}

	return io.NopCloser(r)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// devNull implemnets io.Reader and io.Writer, always closing for reads and
// discarding writes.
type devNull struct{}

var _ io.ReadCloser = (*devNull)(nil)
var _ io.WriteCloser = (*devNull)(nil)

func (*devNull) Read([]byte) (int, error) {
	return 0, os.ErrClosed
}

func (*devNull) Close() error {
	return nil
}

func (*devNull) Write(b []byte) (int, error) {
	return len(b), nil
}

// pipeReader is the read end of a pipe as seen by a process.
type pipeReader struct {
	*Pipe
}

func (r pipeReader) Write([]byte) (int, error) {
	return 0, errBadDescriptor
}

func (r pipeReader) Close() error {
	return r.Pipe.CloseRead()
}

// pipeWriter is the write end of a pipe as seen by a process.
type pipeWriter struct {
	*Pipe
}

func (w pipeWriter) Read([]byte) (int, error) {
	return 0, errBadDescriptor
}

func (w pipeWriter) Close() error {
	return w.Pipe.CloseWrite()
}

// fileStream reads or writes a file node from a private offset so several
// descriptors may share a node.
type fileStream struct {
	node   afero.File
	offset int64
	flags  OpenFlag
}

func (f *fileStream) Read(p []byte) (int, error) {
	if f.flags != ORdOnly {
		return 0, errBadDescriptor
	}
	n, err := f.node.ReadAt(p, f.offset)
	f.offset += int64(n)
	if n > 0 && err == io.EOF {
		err = nil
	}
	return n, err
}

func (f *fileStream) Write(p []byte) (int, error) {
	if f.flags != OWrOnly {
		return 0, errBadDescriptor
	}
	n, err := f.node.WriteAt(p, f.offset)
	f.offset += int64(n)
	return n, err
}

func (f *fileStream) Close() error {
	// The node belongs to whoever opened it.
	return nil
}

var errBadDescriptor = errors.New("bad file descriptor")

// streams builds a process' standard streams from its descriptor table.
func (s *Scheduler) streams(ctx context.Context, table *DescriptorTable) VIO {
	return NewVIOAdapter(
		s.inputStream(ctx, table.Get(0)),
		s.outputStream(table.Get(1)),
		s.outputStream(table.Get(2)))
}

func (s *Scheduler) inputStream(ctx context.Context, d Descriptor) io.Reader {
	switch d.Kind {
	case KindConsole:
		return &consoleReader{term: s.terminal, console: s.console, ctx: ctx}
	case KindFile:
		return &fileStream{node: d.Node, offset: d.Offset, flags: d.Flags}
	case KindPipe:
		if d.Flags == OWrOnly {
			return pipeWriter{d.Pipe}
		}
		return pipeReader{d.Pipe}
	default:
		return nil
	}
}

func (s *Scheduler) outputStream(d Descriptor) io.Writer {
	switch d.Kind {
	case KindConsole:
		return NewConsoleWriter(s.console)
	case KindFile:
		return &fileStream{node: d.Node, offset: d.Offset, flags: d.Flags}
	case KindPipe:
		if d.Flags == OWrOnly {
			return pipeWriter{d.Pipe}
		}
		return pipeReader{d.Pipe}
	default:
		return nil
	}
}
