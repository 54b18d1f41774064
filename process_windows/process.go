//go:build windows

// Package process_windows implements process attach, create, enumeration and
// teardown on top of the Windows native and toolhelp APIs.
package process_windows

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"goproc/coloransi"
	"goproc/process"

	"github.com/Moonlight-Companies/gologger/logger"
)

// State describes where the orchestrator is in its attach lifecycle.
type State int

const (
	StateDetached State = iota
	StateAttaching
	StateAttached
)

func (s State) String() string {
	switch s {
	case StateDetached:
		return "detached"
	case StateAttaching:
		return "attaching"
	case StateAttached:
		return "attached"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// noopSubsystem stands in for optional collaborators that were not injected
// so the teardown chain never has to nil-check.
type noopSubsystem struct{}

func (noopSubsystem) Reset() {}

// Process ties a handle core to the subsystems that operate through it and
// owns their lifecycle. Detach resets the subsystems in a fixed order before
// the core handle is released, so no subsystem ever outlives the handle it
// depends on.
type Process struct {
	core    *Core
	state   State
	memory  process.MemoryAccess
	modules process.ModuleStore
	threads process.ThreadTable
	remote  process.RemoteExecutor
	loader  process.NativeLoader
	mapper  process.Resettable
	hooks   process.Resettable

	// Reset order on detach. Built once in New.
	teardown []process.Resettable

	privileges []string
	log        *logger.Logger
}

// Option adjusts Process construction.
type Option func(*Process)

// WithManualMapper injects a manual-map engine whose state is torn down as
// part of Detach.
func WithManualMapper(m process.Resettable) Option {
	return func(p *Process) { p.mapper = m }
}

// WithHookEngine injects a hook engine whose state is torn down as part of
// Detach.
func WithHookEngine(h process.Resettable) Option {
	return func(p *Process) { p.hooks = h }
}

// WithRemoteExecutor replaces the default direct-thread executor.
func WithRemoteExecutor(r process.RemoteExecutor) Option {
	return func(p *Process) { p.remote = r }
}

// WithModuleStore replaces the default toolhelp-backed module table.
func WithModuleStore(m process.ModuleStore) Option {
	return func(p *Process) { p.modules = m }
}

// WithPrivileges replaces the set of token privileges requested during New.
func WithPrivileges(names ...string) Option {
	return func(p *Process) { p.privileges = names }
}

// New builds a detached Process and requests the debug and driver-load
// privileges on the current token. Privilege failures are logged, not fatal;
// plenty of targets are attachable without them.
func New(opts ...Option) *Process {
	core := newCore()
	p := &Process{
		core:       core,
		state:      StateDetached,
		memory:     newMemory(core),
		modules:    newModules(core),
		threads:    newThreads(core),
		remote:     newRemoteCall(core),
		loader:     newLoaderProbe(core),
		mapper:     noopSubsystem{},
		hooks:      noopSubsystem{},
		privileges: []string{SeDebugPrivilege, SeLoadDriverPrivilege},
		log:        logger.NewLogger(coloransi.Color(coloransi.Green, coloransi.ColorSlate, "process")),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.teardown = []process.Resettable{
		p.memory,
		p.modules,
		p.remote,
		p.mapper,
		p.threads,
		p.hooks,
	}

	for _, priv := range p.privileges {
		if err := GrantPrivilege(priv); err != nil {
			p.log.Warn("GrantPrivilege: ", err)
		}
	}
	return p
}

// Attach opens the process identified by pid and brings the subsystems up.
// Any prior attachment is torn down first. On failure the orchestrator is
// left detached.
func (p *Process) Attach(pid process.ProcessID, access uint32) error {
	p.Detach()
	p.state = StateAttaching

	if err := p.core.Open(pid, access); err != nil {
		p.state = StateDetached
		return err
	}
	return p.finishAttach()
}

// AttachHandle adopts a handle the caller already owns, for example one
// duplicated from another process.
func (p *Process) AttachHandle(handle windows.Handle) error {
	p.Detach()
	p.state = StateAttaching

	if err := p.core.OpenHandle(handle); err != nil {
		p.state = StateDetached
		return err
	}
	return p.finishAttach()
}

func (p *Process) finishAttach() error {
	if err := p.loader.Init(); err != nil {
		p.Detach()
		return err
	}
	if err := p.remote.CreateEnvironment(false, false); err != nil {
		p.Detach()
		return err
	}
	p.state = StateAttached
	p.log.Infoln("Attached to pid", p.core.Pid())
	return nil
}

// CreateOptions controls CreateAndAttach.
type CreateOptions struct {
	// Leave the primary thread suspended instead of resuming it.
	Suspended bool
	// With Suspended, run EnsureInit so loader structures exist before the
	// primary thread has executed anything.
	ForceInit bool
	CmdLine   string
	Dir       string
	Startup   *windows.StartupInfo
}

// CreateAndAttach starts the executable at path suspended, attaches to it,
// then either resumes the primary thread or leaves it parked per opts. The
// primary thread handle is closed before returning in every path.
func (p *Process) CreateAndAttach(path string, opts CreateOptions) error {
	p.Detach()
	p.state = StateAttaching

	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		p.state = StateDetached
		return err
	}

	var cmdPtr *uint16
	if opts.CmdLine != "" {
		if cmdPtr, err = windows.UTF16PtrFromString(opts.CmdLine); err != nil {
			p.state = StateDetached
			return err
		}
	}
	var dirPtr *uint16
	if opts.Dir != "" {
		if dirPtr, err = windows.UTF16PtrFromString(opts.Dir); err != nil {
			p.state = StateDetached
			return err
		}
	}

	si := opts.Startup
	if si == nil {
		si = &windows.StartupInfo{}
	}
	si.Cb = uint32(unsafe.Sizeof(*si))

	var pi windows.ProcessInformation
	err = windows.CreateProcess(pathPtr, cmdPtr, nil, nil, false,
		windows.CREATE_SUSPENDED, nil, dirPtr, si, &pi)
	if err != nil {
		p.state = StateDetached
		return fmt.Errorf("CreateProcess %s: %w", path, err)
	}
	defer windows.CloseHandle(pi.Thread)

	if err := p.core.OpenHandle(pi.Process); err != nil {
		windows.CloseHandle(pi.Process)
		p.state = StateDetached
		return err
	}
	if err := p.finishAttach(); err != nil {
		return err
	}

	if opts.Suspended {
		if opts.ForceInit {
			if err := p.EnsureInit(); err != nil {
				p.Detach()
				return err
			}
		}
		return nil
	}

	if _, err := windows.ResumeThread(pi.Thread); err != nil {
		p.Detach()
		return fmt.Errorf("ResumeThread: %w", err)
	}
	return nil
}

// EnsureInit forces the target's native loader to run by invoking a benign
// ntdll export remotely. Needed for processes created suspended, whose loader
// structures do not exist until something executes in them.
func (p *Process) EnsureInit() error {
	if p.core.Handle() == 0 {
		return process.ErrNotAttached
	}
	base := p.modules.Resolve("ntdll.dll", process.SearchSections)
	if base == 0 {
		return fmt.Errorf("ntdll.dll: %w", process.ErrExportNotFound)
	}
	addr := p.modules.GetExport(base, "NtYieldExecution")
	if addr == 0 {
		return fmt.Errorf("ntdll.dll!NtYieldExecution: %w", process.ErrExportNotFound)
	}
	_, err := p.remote.ExecuteDirect(addr, 0)
	return err
}

// Detach resets every subsystem in order, then releases the core handle.
// Always succeeds; detaching while already detached is a no-op.
func (p *Process) Detach() {
	for _, sub := range p.teardown {
		sub.Reset()
	}
	p.loader.Reset()
	p.core.Close()
	p.state = StateDetached
}

// Valid reports whether the attached process is still running.
func (p *Process) Valid() bool {
	return p.core.Valid()
}

// Terminate forcefully ends the attached process.
func (p *Process) Terminate(exitCode uint32) error {
	return p.core.Terminate(exitCode)
}

// Pid returns the attached PID, 0 when detached.
func (p *Process) Pid() process.ProcessID {
	return p.core.Pid()
}

// State returns the current lifecycle state.
func (p *Process) State() State {
	return p.state
}

// Core exposes the handle owner for callers that need the raw handle.
func (p *Process) Core() *Core { return p.core }

// Memory exposes the memory subsystem.
func (p *Process) Memory() process.MemoryAccess { return p.memory }

// Modules exposes the module table.
func (p *Process) Modules() process.ModuleStore { return p.modules }

// Threads exposes the thread table.
func (p *Process) Threads() process.ThreadTable { return p.threads }

// Remote exposes the remote execution subsystem.
func (p *Process) Remote() process.RemoteExecutor { return p.remote }

// Loader exposes the native loader probe.
func (p *Process) Loader() process.NativeLoader { return p.loader }
