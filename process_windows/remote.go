//go:build windows

package process_windows

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"goproc/coloransi"
	"goproc/process"

	"github.com/Moonlight-Companies/gologger/logger"
)

// RemoteCall runs code in the target by spawning a thread at a chosen
// address. CreateEnvironment must succeed before ExecuteDirect is usable.
type RemoteCall struct {
	mu            sync.Mutex
	core          *Core
	ready         bool
	useHooks      bool
	contextSwitch bool
	log           *logger.Logger
}

func newRemoteCall(core *Core) *RemoteCall {
	return &RemoteCall{
		core: core,
		log:  logger.NewLogger(coloransi.Color(coloransi.Cyan, coloransi.ColorSlate, "remote")),
	}
}

// CreateEnvironment prepares the execution environment. The direct-thread
// vector needs no remote setup, so this only validates the attachment and
// records the requested mode. Hook-based and context-switch vectors are
// accepted but execution still goes through the direct thread.
func (r *RemoteCall) CreateEnvironment(useHooks, contextSwitch bool) error {
	if r.core.Handle() == 0 {
		return process.ErrNotAttached
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = true
	r.useHooks = useHooks
	r.contextSwitch = contextSwitch
	return nil
}

// ExecuteDirect spawns a thread in the target at addr with a single pointer
// sized argument, waits for it to finish and returns its exit code.
func (r *RemoteCall) ExecuteDirect(addr process.Address, arg uintptr) (uint64, error) {
	r.mu.Lock()
	ready := r.ready
	r.mu.Unlock()
	if !ready {
		return 0, process.ErrEnvironmentNotReady
	}

	handle := r.core.Handle()
	if handle == 0 {
		return 0, process.ErrNotAttached
	}

	var tid uint32
	thread, _, callErr := procCreateRemoteThread.Call(
		uintptr(handle),
		0, // default security
		0, // default stack size
		uintptr(addr),
		arg,
		0, // run immediately
		uintptr(unsafe.Pointer(&tid)),
	)
	if thread == 0 {
		return 0, fmt.Errorf("CreateRemoteThread %s: %w", addr.ToString(), callErr)
	}
	defer windows.CloseHandle(windows.Handle(thread))

	r.log.Infoln("Remote thread", tid, "started at", addr.ToString())

	if _, err := windows.WaitForSingleObject(windows.Handle(thread), windows.INFINITE); err != nil {
		return 0, fmt.Errorf("WaitForSingleObject: %w", err)
	}

	var exitCode uint32
	ret, _, callErr := procGetExitCodeThread.Call(thread, uintptr(unsafe.Pointer(&exitCode)))
	if ret == 0 {
		return 0, fmt.Errorf("GetExitCodeThread: %w", callErr)
	}
	return uint64(exitCode), nil
}

// Reset tears the environment down; ExecuteDirect refuses to run until the
// next CreateEnvironment.
func (r *RemoteCall) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = false
	r.useHooks = false
	r.contextSwitch = false
}
