package shell

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/josephlewis42/kshell/core/vos"
	"github.com/spf13/afero"
)

// Redirection is a command whose stdout goes to a file.
type Redirection struct {
	Command Command
	Path    string
	Mode    RedirectMode
}

// ParseRedirection splits line around the operator at pos. The file name is
// the first word after the operator, anything after it is ignored.
func ParseRedirection(line string, pos int, mode RedirectMode) (Redirection, error) {
	rest := line[pos+1:]
	if mode == RedirectAppend {
		rest = rest[1:]
	}

	name := strings.TrimLeft(rest, blanks)
	if end := strings.IndexAny(name, blanks); end >= 0 {
		name = name[:end]
	}

	cmd := ParseCommand(line[:pos])
	if cmd.Verb == "" || name == "" {
		return Redirection{}, fmt.Errorf("%w near '>'", ErrSyntax)
	}

	return Redirection{Command: cmd, Path: name, Mode: mode}, nil
}

func (s *Shell) runRedirect(line string) error {
	if HasPipe(line) {
		return fmt.Errorf("%w: can't combine '|' and '>'", ErrSyntax)
	}

	pos, mode := FindRedirect(line)
	r, err := ParseRedirection(line, pos, mode)
	if err != nil {
		return err
	}
	return s.execRedirect(r)
}

func (s *Shell) execRedirect(r Redirection) error {
	node, offset, err := s.openRedirect(r)
	if err != nil {
		return err
	}
	defer node.Close()

	table, err := s.stdioTable(
		vos.ConsoleDescriptor(),
		vos.FileDescriptor(node, offset, vos.OWrOnly),
		vos.ConsoleDescriptor(),
	)
	if err != nil {
		return err
	}

	status, err := s.jobs.RunForeground(Stage{
		Command: r.Command,
		Path:    ProgramPath(r.Command.Verb, s.opts.ProgramDir),
		Table:   table,
	})
	if err != nil {
		return err
	}
	s.LastStatus = status

	// Flush the new size.
	return node.Sync()
}

// stdioTable builds a descriptor table holding stdin, stdout and stderr in
// that order.
func (s *Shell) stdioTable(stdio ...vos.Descriptor) (*vos.DescriptorTable, error) {
	table := vos.NewDescriptorTable(s.opts.DescriptorSlots)
	for fd, d := range stdio {
		if err := table.Set(fd, d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResourceExhausted, err)
		}
	}
	return table, nil
}

// openRedirect creates the target if needed, truncates it for overwrites and
// returns where writing starts.
func (s *Shell) openRedirect(r Redirection) (afero.File, int64, error) {
	full := vos.ResolvePath(s.proc.Getwd(), r.Path)

	parent, err := s.proc.Stat(path.Dir(full))
	switch {
	case err != nil:
		return nil, 0, pathError(r.Path, err)
	case !parent.IsDir():
		return nil, 0, fmt.Errorf("%w: %s", ErrNotADirectory, path.Dir(r.Path))
	}

	if info, err := s.proc.Stat(full); err == nil && info.IsDir() {
		return nil, 0, fmt.Errorf("%w: %s is a directory", ErrPathNotFound, r.Path)
	}

	node, err := s.proc.OpenFile(full, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, 0, pathError(r.Path, err)
	}

	if r.Mode == RedirectOverwrite {
		if err := node.Truncate(0); err != nil {
			node.Close()
			return nil, 0, pathError(r.Path, err)
		}
	}

	info, err := node.Stat()
	if err != nil {
		node.Close()
		return nil, 0, pathError(r.Path, err)
	}

	var offset int64
	if r.Mode == RedirectAppend {
		offset = info.Size()
	}
	return node, offset, nil
}
