//go:build windows

package process_windows

import (
	"fmt"

	"golang.org/x/sys/windows"

	"goproc/process"
)

// Memory reads and writes target process memory through the core's handle.
type Memory struct {
	core *Core
}

func newMemory(core *Core) *Memory {
	return &Memory{core: core}
}

// Read copies size bytes starting at addr out of the target. Short reads are
// errors; the returned slice always holds exactly size bytes on success.
func (m *Memory) Read(addr process.Address, size uint) ([]byte, error) {
	handle := m.core.Handle()
	if handle == 0 {
		return nil, process.ErrNotAttached
	}
	if size == 0 {
		return nil, nil
	}

	buf := make([]byte, size)
	var read uintptr
	err := windows.ReadProcessMemory(handle, uintptr(addr), &buf[0], uintptr(size), &read)
	if err != nil {
		return nil, fmt.Errorf("ReadProcessMemory %s: %w", addr.ToString(), err)
	}
	if read != uintptr(size) {
		return nil, fmt.Errorf("ReadProcessMemory %s: short read %d of %d", addr.ToString(), read, size)
	}
	return buf, nil
}

// Write copies data into the target starting at addr.
func (m *Memory) Write(addr process.Address, data []byte) error {
	handle := m.core.Handle()
	if handle == 0 {
		return process.ErrNotAttached
	}
	if len(data) == 0 {
		return nil
	}

	var written uintptr
	err := windows.WriteProcessMemory(handle, uintptr(addr), &data[0], uintptr(len(data)), &written)
	if err != nil {
		return fmt.Errorf("WriteProcessMemory %s: %w", addr.ToString(), err)
	}
	if written != uintptr(len(data)) {
		return fmt.Errorf("WriteProcessMemory %s: short write %d of %d", addr.ToString(), written, len(data))
	}
	return nil
}

// Reset discards per-target state. Memory keeps none beyond the shared core.
func (m *Memory) Reset() {}
