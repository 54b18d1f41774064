//go:build windows

package process_windows

import (
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"goproc/process"
)

// Modules resolves module base addresses in the target and export addresses
// within those modules. Bases come from a toolhelp module snapshot; exports
// are computed by loading the same image locally without running it and
// rebasing the local export RVA onto the target's base.
type Modules struct {
	mu    sync.Mutex
	core  *Core
	bases map[string]process.Address // lower-cased module name -> remote base
	paths map[process.Address]string // remote base -> full image path
}

func newModules(core *Core) *Modules {
	return &Modules{
		core:  core,
		bases: make(map[string]process.Address),
		paths: make(map[process.Address]string),
	}
}

// Resolve returns the base address of the named module in the target, or 0
// when the module cannot be found. Results are cached until Reset.
// SearchDefault walks the target's loader list only; SearchSections also
// falls back to the session-wide base of system images, which covers targets
// whose loader has not run yet.
func (m *Modules) Resolve(name string, policy process.SearchPolicy) process.Address {
	key := strings.ToLower(name)

	m.mu.Lock()
	if base, ok := m.bases[key]; ok {
		m.mu.Unlock()
		return base
	}
	m.mu.Unlock()

	if err := m.refresh(); err == nil {
		m.mu.Lock()
		base, ok := m.bases[key]
		m.mu.Unlock()
		if ok {
			return base
		}
	}

	if policy == process.SearchSections {
		return m.resolveLocal(key)
	}
	return 0
}

// resolveLocal falls back to the local mapping of a system image. A process
// created suspended has no loader list for the toolhelp snapshot to walk, but
// system DLLs keep one base across the whole session, so the local base is
// the remote base too.
func (m *Modules) resolveLocal(key string) process.Address {
	namePtr, err := windows.UTF16PtrFromString(key)
	if err != nil {
		return 0
	}
	local, err := windows.GetModuleHandle(namePtr)
	if err != nil {
		return 0
	}

	var pathBuf [windows.MAX_PATH]uint16
	n, err := windows.GetModuleFileName(local, &pathBuf[0], uint32(len(pathBuf)))
	if err != nil || n == 0 {
		return 0
	}

	base := process.Address(local)
	m.mu.Lock()
	m.bases[key] = base
	m.paths[base] = windows.UTF16ToString(pathBuf[:n])
	m.mu.Unlock()
	return base
}

// GetExport returns the address of the named export inside the module at
// base, or 0 when either the module or the export cannot be found.
func (m *Modules) GetExport(base process.Address, name string) process.Address {
	m.mu.Lock()
	path, ok := m.paths[base]
	m.mu.Unlock()
	if !ok {
		return 0
	}

	// Map the image locally without resolving imports or running DllMain so
	// GetProcAddress can walk its export table.
	local, err := windows.LoadLibraryEx(path, 0, windows.DONT_RESOLVE_DLL_REFERENCES)
	if err != nil {
		return 0
	}
	defer windows.FreeLibrary(local)

	addr, err := windows.GetProcAddress(local, name)
	if err != nil {
		return 0
	}
	rva := addr - uintptr(local)
	return base + process.Address(rva)
}

func (m *Modules) refresh() error {
	pid := m.core.Pid()
	if pid == 0 {
		return process.ErrNotAttached
	}

	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(pid))
	if err != nil {
		return err
	}
	defer windows.CloseHandle(snap)

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	m.mu.Lock()
	defer m.mu.Unlock()
	for err = windows.Module32First(snap, &entry); err == nil; err = windows.Module32Next(snap, &entry) {
		base := process.Address(entry.ModBaseAddr)
		m.bases[strings.ToLower(windows.UTF16ToString(entry.Module[:]))] = base
		m.paths[base] = windows.UTF16ToString(entry.ExePath[:])
	}
	if err != windows.ERROR_NO_MORE_FILES {
		return err
	}
	return nil
}

// Reset drops the cached module table.
func (m *Modules) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bases = make(map[string]process.Address)
	m.paths = make(map[process.Address]string)
}
