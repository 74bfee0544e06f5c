package vos

import (
	"fmt"

	"github.com/spf13/afero"
)

// DescriptorKind says what a descriptor slot refers to.
type DescriptorKind int

const (
	KindUnused DescriptorKind = iota
	KindConsole
	KindFile
	KindPipe
)

func (k DescriptorKind) String() string {
	switch k {
	case KindUnused:
		return "unused"
	case KindConsole:
		return "console"
	case KindFile:
		return "file"
	case KindPipe:
		return "pipe"
	default:
		return fmt.Sprintf("DescriptorKind(%d)", int(k))
	}
}

// OpenFlag is the access mode of a descriptor. For pipes it also selects
// which end the descriptor holds.
type OpenFlag int

const (
	ORdOnly OpenFlag = 0
	OWrOnly OpenFlag = 1
)

// Descriptor is a single slot of a DescriptorTable.
type Descriptor struct {
	Kind DescriptorKind
	// Node is set for KindFile.
	Node afero.File
	// Pipe is set for KindPipe.
	Pipe *Pipe
	// Offset is where file reads or writes start.
	Offset int64
	Flags  OpenFlag
}

// ConsoleDescriptor refers to the machine's console.
func ConsoleDescriptor() Descriptor {
	return Descriptor{Kind: KindConsole}
}

// PipeReadDescriptor holds the read end of p.
func PipeReadDescriptor(p *Pipe) Descriptor {
	return Descriptor{Kind: KindPipe, Pipe: p, Flags: ORdOnly}
}

// PipeWriteDescriptor holds the write end of p.
func PipeWriteDescriptor(p *Pipe) Descriptor {
	return Descriptor{Kind: KindPipe, Pipe: p, Flags: OWrOnly}
}

// FileDescriptor refers to an open file starting at offset.
func FileDescriptor(node afero.File, offset int64, flags OpenFlag) Descriptor {
	return Descriptor{Kind: KindFile, Node: node, Offset: offset, Flags: flags}
}

// DescriptorTable is a fixed size table of descriptors handed to a new
// process. Slots 0, 1 and 2 are the process' stdin, stdout and stderr.
type DescriptorTable struct {
	slots []Descriptor
}

// NewDescriptorTable creates a table with every slot unused.
func NewDescriptorTable(slots int) *DescriptorTable {
	return &DescriptorTable{slots: make([]Descriptor, slots)}
}

// NewConsoleTable creates a table with stdin, stdout and stderr on the
// console.
func NewConsoleTable(slots int) *DescriptorTable {
	t := NewDescriptorTable(slots)
	for fd := 0; fd < 3 && fd < slots; fd++ {
		t.slots[fd] = ConsoleDescriptor()
	}
	return t
}

// Set stores d in slot fd.
func (t *DescriptorTable) Set(fd int, d Descriptor) error {
	if fd < 0 || fd >= len(t.slots) {
		return fmt.Errorf("descriptor %d of %d: %w", fd, len(t.slots), ErrResourceExhausted)
	}
	t.slots[fd] = d
	return nil
}

// Get returns slot fd, slots outside the table are unused.
func (t *DescriptorTable) Get(fd int) Descriptor {
	if fd < 0 || fd >= len(t.slots) {
		return Descriptor{}
	}
	return t.slots[fd]
}

// Len returns the number of slots.
func (t *DescriptorTable) Len() int {
	return len(t.slots)
}

// Release closes every pipe end held by the table. File nodes stay open,
// they belong to whoever opened them.
func (t *DescriptorTable) Release() {
	for _, d := range t.slots {
		if d.Kind != KindPipe || d.Pipe == nil {
			continue
		}
		if d.Flags == OWrOnly {
			d.Pipe.CloseWrite()
		} else {
			d.Pipe.CloseRead()
		}
	}
}
