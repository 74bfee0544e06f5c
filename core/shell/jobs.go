package shell

import (
	"errors"

	"github.com/josephlewis42/kshell/core/vos"
)

const (
	// StatusCannotRun is the status of a stage that failed to start or
	// couldn't be waited for.
	StatusCannotRun = 126
	// StatusNotFound is the status of a stage whose program doesn't exist.
	StatusNotFound = 127
)

// Scheduler is the process control the shell needs. *vos.Process implements
// it on behalf of the shell's own process.
type Scheduler interface {
	// Spawn starts the program at path and returns its pid.
	Spawn(path string, argv []string, table *vos.DescriptorTable) (int, error)
	// Wait blocks until pid terminates and returns its exit status.
	Wait(pid int) (int, error)
	// AssignGroup moves pid into group, 0 meaning the caller and a new
	// group led by pid respectively.
	AssignGroup(pid, group int) error
	Getpid() int
}

// Foreground tracks the process group that owns the keyboard. *vos.Terminal
// implements it.
type Foreground interface {
	SetForeground(group int)
	Foreground() int
}

// Stage is one program of a job along with its descriptors.
type Stage struct {
	Command Command
	Path    string
	Table   *vos.DescriptorTable
}

// Job is a set of stages sharing a process group.
type Job struct {
	// Group is the pid of the first stage that started, 0 if none did.
	Group int
	// PIDs holds the pid of every stage, 0 where it failed to start.
	PIDs []int
	// Errs holds spawn and wait failures per stage.
	Errs []error
	// Statuses holds exit statuses per stage, StatusNotFound or
	// StatusCannotRun where it didn't run.
	Statuses []int
}

// Status returns the last stage's exit status.
func (j *Job) Status() int {
	return j.Statuses[len(j.Statuses)-1]
}

// JobController runs jobs in the foreground: spawn, group, hand the terminal
// to the group, wait for every member, then hand it back to the shell.
type JobController struct {
	sched      Scheduler
	term       Foreground
	shellGroup int

	// OnSpawnError is called as soon as a stage fails to start.
	OnSpawnError func(err error)
}

// NewJobController creates a controller for the shell process sched acts
// for. The shell's group is its pid.
func NewJobController(sched Scheduler, term Foreground) *JobController {
	return &JobController{
		sched:      sched,
		term:       term,
		shellGroup: sched.Getpid(),
	}
}

// ShellGroup returns the group the terminal is returned to.
func (jc *JobController) ShellGroup() int {
	return jc.shellGroup
}

// AssignGroup asks the scheduler to move pid into group.
func (jc *JobController) AssignGroup(pid, group int) error {
	return jc.sched.AssignGroup(pid, group)
}

// SetForeground hands the terminal to group.
func (jc *JobController) SetForeground(group int) {
	jc.term.SetForeground(group)
}

// Launch spawns every stage in order. The first stage that starts leads the
// job's group and every later one joins it. A stage that fails to start is
// reported, its descriptor table released, and the rest still launch.
func (jc *JobController) Launch(stages []Stage) *Job {
	return jc.launch(stages, jc.OnSpawnError)
}

func (jc *JobController) launch(stages []Stage, report func(error)) *Job {
	job := &Job{
		PIDs:     make([]int, len(stages)),
		Errs:     make([]error, len(stages)),
		Statuses: make([]int, len(stages)),
	}

	for i, stage := range stages {
		pid, err := jc.sched.Spawn(stage.Path, stage.Command.Argv(), stage.Table)
		if err != nil {
			job.Errs[i] = spawnError(stage.Command.Verb, err)
			job.Statuses[i] = StatusCannotRun
			if errors.Is(job.Errs[i], ErrNotFound) {
				job.Statuses[i] = StatusNotFound
			}
			if stage.Table != nil {
				stage.Table.Release()
			}
			if report != nil {
				report(job.Errs[i])
			}
			continue
		}

		job.PIDs[i] = pid
		if job.Group == 0 {
			job.Group = pid
		}
		if err := jc.AssignGroup(pid, job.Group); err != nil {
			job.Errs[i] = err
		}
	}

	return job
}

// Finish gives the terminal to the job's group, waits for every stage that
// started in stage order and gives the terminal back to the shell.
func (jc *JobController) Finish(job *Job) {
	if job.Group != 0 {
		jc.SetForeground(job.Group)
	}

	for i, pid := range job.PIDs {
		if pid == 0 {
			continue
		}

		status, err := jc.sched.Wait(pid)
		if err != nil {
			job.Errs[i] = err
			job.Statuses[i] = StatusCannotRun
			continue
		}
		job.Statuses[i] = status
	}

	jc.SetForeground(jc.shellGroup)
}

// RunGroup launches and finishes stages as one job.
func (jc *JobController) RunGroup(stages []Stage) *Job {
	job := jc.Launch(stages)
	jc.Finish(job)
	return job
}

// RunForeground runs a single program as its own job and returns its exit
// status. Spawn failures are returned rather than reported.
func (jc *JobController) RunForeground(stage Stage) (int, error) {
	job := jc.launch([]Stage{stage}, nil)
	jc.Finish(job)

	return job.Status(), job.Errs[0]
}
