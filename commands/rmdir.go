package commands

import (
	"fmt"
	"path"

	"github.com/josephlewis42/kshell/core/vos"
)

// Rmdir removes empty directories.
func Rmdir(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "rmdir [OPTION...] DIRECTORY...",
		Short: "Remove empty directories.",
	}

	parents := cmd.Flags().BoolLong("parents", 'p', "remove DIRECTORY and its ancestors")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "print line for every deleted directory")

	return cmd.Run(virtOS, func() int {
		return cmd.RunEachOperand(virtOS, cmd.Flags().Args(), func(dir string) error {
			for _, step := range removalOrder(dir, *parents) {
				if err := removeEmptyDir(virtOS, step); err != nil {
					return err
				}
				if *verbose {
					fmt.Fprintf(virtOS.Stdout(), "rmdir: removed directory: %s\n", step)
				}
			}
			return nil
		})
	})
}

// removalOrder lists dir and, with parents, each of its ancestors deepest
// first: a/b/c, a/b, a.
func removalOrder(dir string, parents bool) []string {
	steps := []string{dir}
	if !parents {
		return steps
	}
	for parent := path.Dir(path.Clean(dir)); parent != "." && parent != "/"; parent = path.Dir(parent) {
		steps = append(steps, parent)
	}
	return steps
}

func removeEmptyDir(virtOS vos.VOS, dir string) error {
	info, err := virtOS.Stat(dir)
	switch {
	case err != nil:
		return fmt.Errorf("failed to remove %q: no such file or directory", dir)
	case !info.IsDir():
		return fmt.Errorf("failed to remove %q: not a directory", dir)
	}

	file, err := virtOS.Open(dir)
	if err != nil {
		return fmt.Errorf("cannot read directory %q: %s", dir, err)
	}
	contents, err := file.Readdir(-1)
	file.Close()
	if err != nil {
		return fmt.Errorf("cannot read directory %q: %s", dir, err)
	}

	if len(contents) > 0 {
		return fmt.Errorf("failed to remove %q: directory not empty", dir)
	}

	if err := virtOS.Remove(dir); err != nil {
		return fmt.Errorf("cannot remove directory %q: %s", dir, err)
	}
	return nil
}

func init() {
	mustAddCmd("rmdir", Rmdir)
}
