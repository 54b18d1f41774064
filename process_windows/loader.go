//go:build windows

package process_windows

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"goproc/process"
)

// LoaderProbe locates the target's PEB so callers can tell whether the native
// loader has run yet, which matters for processes created suspended.
type LoaderProbe struct {
	mu      sync.Mutex
	core    *Core
	pebBase process.Address
}

func newLoaderProbe(core *Core) *LoaderProbe {
	return &LoaderProbe{core: core}
}

// Init queries the target's basic information block and caches the PEB base.
func (l *LoaderProbe) Init() error {
	handle := l.core.Handle()
	if handle == 0 {
		return process.ErrNotAttached
	}

	var pbi windows.PROCESS_BASIC_INFORMATION
	var retLen uint32
	err := windows.NtQueryInformationProcess(handle, windows.ProcessBasicInformation,
		unsafe.Pointer(&pbi), uint32(unsafe.Sizeof(pbi)), &retLen)
	if err != nil {
		return fmt.Errorf("NtQueryInformationProcess: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pebBase = process.Address(uintptr(unsafe.Pointer(pbi.PebBaseAddress)))
	return nil
}

// PEB returns the cached PEB base, 0 before Init or after Reset.
func (l *LoaderProbe) PEB() process.Address {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pebBase
}

// Reset drops the cached PEB base.
func (l *LoaderProbe) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pebBase = 0
}
