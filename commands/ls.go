package commands

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	fcolor "github.com/fatih/color"
	"github.com/josephlewis42/kshell/core/vos"
)

const lsDefaultWidth = 80

// Ls lists directory contents.
func Ls(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "ls [OPTION]... [FILE]...",
		Short: "List information about the FILEs (the current directory by default).",
	}

	opts := cmd.Flags()
	listAll := opts.Bool('a', "don't ignore entries starting with .")
	longListing := opts.Bool('l', "use a long listing format")
	humanSize := opts.Bool('H', "print human readable sizes")
	lineWidth := opts.IntLong("width", 'w', lsDefaultWidth, "set the column width, 0 is infinite")

	var color ColorPrinter
	color.Init(opts)

	return cmd.Run(virtOS, func() int {
		// Initialize arguments
		targets := opts.Args()
		if len(targets) == 0 {
			targets = append(targets, ".")
		}
		sort.Strings(targets)

		sizeFmt := func(bytes int64) string {
			return fmt.Sprintf("%d", bytes)
		}
		if *humanSize {
			sizeFmt = BytesToHuman
		}

		if *lineWidth == 0 {
			*lineWidth = math.MaxInt32
		}

		showDirectoryNames := len(targets) > 1
		exitCode := 0

		for i, target := range targets {
			paths, err := lsEntries(virtOS, target, *listAll)
			if err != nil {
				fmt.Fprintf(virtOS.Stderr(), "ls: %s: %v\n", target, err)
				exitCode = 1
				continue
			}

			if showDirectoryNames {
				if i > 0 {
					fmt.Fprintln(virtOS.Stdout())
				}
				fmt.Fprintf(virtOS.Stdout(), "%s:\n", target)
			}

			if *longListing {
				lsLong(virtOS, paths, sizeFmt, &color)
			} else {
				lsColumns(virtOS, paths, *lineWidth, &color)
			}
		}

		return exitCode
	})
}

// lsEntries lists a directory's visible entries sorted by name, or the
// target itself if it's a file.
func lsEntries(virtOS vos.VOS, target string, listAll bool) ([]os.FileInfo, error) {
	info, err := virtOS.Stat(target)
	if err != nil {
		return nil, fs.ErrNotExist
	}
	if !info.IsDir() {
		return []os.FileInfo{info}, nil
	}

	file, err := virtOS.Open(target)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	allPaths, err := file.Readdir(-1)
	if err != nil {
		return nil, err
	}

	var paths []os.FileInfo
	for _, entry := range allPaths {
		if !listAll && strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, entry)
	}

	sort.Slice(paths, func(i int, j int) bool {
		return paths[i].Name() < paths[j].Name()
	})
	return paths, nil
}

func lsLong(virtOS vos.VOS, paths []os.FileInfo, sizeFmt func(int64) string, color *ColorPrinter) {
	var total int64
	for _, f := range paths {
		total += f.Size()
	}
	fmt.Fprintf(virtOS.Stdout(), "total %s\n", sizeFmt(total))

	tw := tabwriter.NewWriter(virtOS.Stdout(), 0, 0, 1, ' ', 0)
	defer tw.Flush()

	thisYear := time.Now().Year()
	for _, f := range paths {
		links := 1
		if f.IsDir() {
			links = 2
		}

		stamp := "Jan _2 15:04"
		if f.ModTime().Year() < thisYear {
			stamp = "Jan _2 2006"
		}

		fields := []string{
			f.Mode().String(),
			strconv.Itoa(links),
			"root",
			"root",
			sizeFmt(f.Size()),
			f.ModTime().Format(stamp),
			color.Sprintf(Dircolor(f), "%s", f.Name()),
		}
		fmt.Fprintln(tw, strings.Join(fields, "\t"))
	}
}

func lsColumns(virtOS vos.VOS, paths []os.FileInfo, lineWidth int, color *ColorPrinter) {
	if len(paths) == 0 {
		return
	}

	colWidths := columnize(paths, lineWidth)
	cols := len(colWidths)
	rows := len(paths) / cols
	if len(paths)%cols > 0 {
		rows++
	}

	w := virtOS.Stdout()
	for row := 0; row < rows; row++ {
		var line strings.Builder
		for col, width := range colWidths {
			index := (col * rows) + row
			if index >= len(paths) {
				break
			}

			// Add padding if there was a column before this.
			if col > 0 {
				line.WriteString("  ")
			}

			entry := paths[index]
			name := entry.Name()
			line.WriteString(color.Sprintf(Dircolor(entry), "%s", name))

			// Pad for alignment unless this is the last entry on the row.
			if next := ((col + 1) * rows) + row; col+1 < cols && next < len(paths) {
				line.WriteString(strings.Repeat(" ", width-len(name)))
			}
		}
		fmt.Fprintln(w, line.String())
	}
}

var (
	archiveExts = map[string]bool{".tar": true, ".tgz": true, ".zip": true, ".gz": true, ".bz2": true}
	colorPlain  = forcedColor(fcolor.FgHiWhite)
)

// Dircolor picks the color ls shows a file in, following the common
// dircolors defaults.
func Dircolor(fileInfo os.FileInfo) *fcolor.Color {
	mode := fileInfo.Mode()
	switch {
	case mode.IsDir():
		return ColorBoldBlue
	case mode&fs.ModeSymlink != 0:
		return ColorBoldCyan
	case mode.Perm()&0111 != 0:
		return ColorBoldGreen
	case archiveExts[path.Ext(fileInfo.Name())]:
		return ColorBoldRed
	default:
		return colorPlain
	}
}

// columnize picks the widest layout that fits screenWidth and returns the
// width of each column.
func columnize(paths []fs.FileInfo, screenWidth int) []int {
	numFiles := len(paths)
	if numFiles == 0 {
		return []int{0}
	}

	const colPadding = 2

	// Start with maximum number of columns and work down until all the data fits.
	// 3 is the minimum column width, 1 char filename + 2 padding.
	columns := screenWidth / (1 + colPadding)
	if columns > numFiles {
		columns = numFiles
	}
	if columns < 1 {
		columns = 1
	}

	var maximums []int // Holds maximum size of a name in the column.
	for ; columns >= 1; columns-- {
		rows := numFiles / columns
		if numFiles%columns > 0 {
			rows++
		}
		if (columns-1)*rows >= numFiles {
			// The last column would be empty.
			continue
		}

		maximums = make([]int, columns)
		for i, p := range paths {
			if l := len(p.Name()); l > maximums[i/rows] {
				maximums[i/rows] = l
			}
		}

		total := (columns - 1) * colPadding
		for _, m := range maximums {
			total += m
		}
		if total <= screenWidth {
			return maximums
		}
	}

	return maximums
}

func init() {
	mustAddCmd("ls", Ls)
}
