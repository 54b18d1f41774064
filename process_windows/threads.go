//go:build windows

package process_windows

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"goproc/process"
)

// Threads lists the live threads of the target via a toolhelp snapshot.
type Threads struct {
	core *Core
}

func newThreads(core *Core) *Threads {
	return &Threads{core: core}
}

// ThreadIDs returns the IDs of all threads currently owned by the target.
func (t *Threads) ThreadIDs() ([]process.ThreadID, error) {
	pid := t.core.Pid()
	if pid == 0 {
		return nil, process.ErrNotAttached
	}

	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPTHREAD, 0)
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ThreadEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	var tids []process.ThreadID
	for err = windows.Thread32First(snap, &entry); err == nil; err = windows.Thread32Next(snap, &entry) {
		if entry.OwnerProcessID == uint32(pid) {
			tids = append(tids, process.ThreadID(entry.ThreadID))
		}
	}
	if err != windows.ERROR_NO_MORE_FILES {
		return nil, fmt.Errorf("Thread32Next: %w", err)
	}
	return tids, nil
}

// Reset discards per-target state. Threads keeps none beyond the shared core.
func (t *Threads) Reset() {}
