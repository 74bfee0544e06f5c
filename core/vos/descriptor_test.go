package vos

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptorTable_bounds(t *testing.T) {
	table := NewDescriptorTable(3)

	assert.NoError(t, table.Set(2, ConsoleDescriptor()))
	assert.True(t, errors.Is(table.Set(3, ConsoleDescriptor()), ErrResourceExhausted))
	assert.True(t, errors.Is(table.Set(-1, ConsoleDescriptor()), ErrResourceExhausted))

	assert.Equal(t, KindConsole, table.Get(2).Kind)
	assert.Equal(t, KindUnused, table.Get(0).Kind)
	assert.Equal(t, KindUnused, table.Get(100).Kind)
	assert.Equal(t, 3, table.Len())
}

func TestNewConsoleTable(t *testing.T) {
	table := NewConsoleTable(64)

	for fd := 0; fd < 3; fd++ {
		assert.Equal(t, KindConsole, table.Get(fd).Kind, "fd %d", fd)
	}
	assert.Equal(t, KindUnused, table.Get(3).Kind)
}

func TestDescriptorTable_Release(t *testing.T) {
	in := NewPipe(4)
	out := NewPipe(4)

	table := NewConsoleTable(8)
	table.Set(0, PipeReadDescriptor(in))
	table.Set(1, PipeWriteDescriptor(out))
	table.Release()

	_, err := in.Read(make([]byte, 1))
	assert.Equal(t, io.ErrClosedPipe, err, "read end closed")

	_, err = out.Read(make([]byte, 1))
	assert.Equal(t, io.EOF, err, "write end closed")
}

func ExampleDescriptorKind_String() {
	table := NewConsoleTable(4)
	table.Set(1, PipeWriteDescriptor(NewPipe(1)))

	for fd := 0; fd < table.Len(); fd++ {
		fmt.Println(table.Get(fd).Kind)
	}

	// Output: console
	// pipe
	// console
	// unused
}
