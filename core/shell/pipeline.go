package shell

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/kshell/core/vos"
)

// Pipeline is a sequence of commands, each one's stdout feeding the next
// one's stdin.
type Pipeline struct {
	Stages []Command
}

// ParsePipeline splits line on '|'. Every stage must name a command.
func ParsePipeline(line string) (Pipeline, error) {
	var p Pipeline
	for _, segment := range strings.Split(line, "|") {
		cmd := ParseCommand(segment)
		if cmd.Verb == "" {
			return Pipeline{}, fmt.Errorf("%w near '|'", ErrSyntax)
		}
		p.Stages = append(p.Stages, cmd)
	}
	return p, nil
}

func (s *Shell) runPipeline(line string) error {
	p, err := ParsePipeline(line)
	if err != nil {
		return err
	}
	return s.execPipeline(p)
}

func (s *Shell) execPipeline(p Pipeline) error {
	n := len(p.Stages)
	if n > s.opts.MaxPipelineStages {
		return fmt.Errorf("%w: pipeline has %d stages, the limit is %d", ErrResourceExhausted, n, s.opts.MaxPipelineStages)
	}

	pipes := make([]*vos.Pipe, 0, n-1)
	for i := 0; i < n-1; i++ {
		pipe, err := s.proc.NewPipe()
		if err != nil {
			closePipes(pipes)
			return fmt.Errorf("%w: pipe: allocation failed", ErrResourceExhausted)
		}
		pipes = append(pipes, pipe)
	}

	stages := make([]Stage, n)
	for i, cmd := range p.Stages {
		stdin, stdout := vos.ConsoleDescriptor(), vos.ConsoleDescriptor()
		if i > 0 {
			stdin = vos.PipeReadDescriptor(pipes[i-1])
		}
		if i < n-1 {
			stdout = vos.PipeWriteDescriptor(pipes[i])
		}

		table, err := s.stdioTable(stdin, stdout, vos.ConsoleDescriptor())
		if err != nil {
			closePipes(pipes)
			return err
		}

		stages[i] = Stage{
			Command: cmd,
			Path:    ProgramPath(cmd.Verb, s.opts.ProgramDir),
			Table:   table,
		}
	}

	job := s.jobs.RunGroup(stages)
	s.LastStatus = job.Status()
	return nil
}

// closePipes releases pipes no stage will ever hold.
func closePipes(pipes []*vos.Pipe) {
	for _, p := range pipes {
		p.CloseRead()
		p.CloseWrite()
	}
}
