//go:build windows

package process_windows

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"

	"goproc/coloransi"
	"goproc/process"

	"github.com/Moonlight-Companies/gologger/logger"
)

// Core is the exclusive owner of one OS process handle and the PID it refers
// to. A non-zero handle implies the PID was successfully resolved or supplied;
// Close resets the handle to zero and is safe to call repeatedly.
type Core struct {
	mu     sync.Mutex
	pid    process.ProcessID
	handle windows.Handle
	log    *logger.Logger
}

func newCore() *Core {
	return &Core{
		log: logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "core-not-attached")),
	}
}

// Open opens the process identified by pid with the given access mask and
// takes ownership of the resulting handle.
func (c *Core) Open(pid process.ProcessID, access uint32) error {
	handle, err := windows.OpenProcess(access, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("OpenProcess %d: %w", pid, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pid = pid
	c.handle = handle
	c.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("core-%d", pid)))
	c.log.Infoln("Process handle opened")
	return nil
}

// OpenHandle takes ownership of a handle the caller already obtained, for
// example from process creation. The PID is resolved from the handle.
func (c *Core) OpenHandle(handle windows.Handle) error {
	pid, err := windows.GetProcessId(handle)
	if err != nil {
		return fmt.Errorf("GetProcessId: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pid = process.ProcessID(pid)
	c.handle = handle
	c.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("core-%d", pid)))
	c.log.Infoln("Adopted existing process handle")
	return nil
}

// Close releases the owned handle. Idempotent; closing a never-opened or
// already-closed core is a no-op.
func (c *Core) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != 0 {
		if err := windows.CloseHandle(c.handle); err != nil {
			c.log.Warn("CloseHandle: ", err)
		}
		c.handle = 0
		c.log.Infoln("Process handle closed")
	}

	c.pid = 0
	c.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "core-not-attached"))
}

// Pid returns the PID of the owned process, 0 when closed.
func (c *Core) Pid() process.ProcessID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pid
}

// Handle returns the raw owned handle, 0 when closed.
func (c *Core) Handle() windows.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// Valid reports whether the core owns a handle to a process that is still
// running. A process that exited while the handle stayed open is invalid.
func (c *Core) Valid() bool {
	c.mu.Lock()
	handle := c.handle
	c.mu.Unlock()

	if handle == 0 {
		return false
	}

	var exitCode uint32
	if err := windows.GetExitCodeProcess(handle, &exitCode); err != nil {
		return false
	}
	return exitCode == uint32(windows.STILL_ACTIVE)
}

// Terminate forcefully ends the owned process with the given exit code.
func (c *Core) Terminate(exitCode uint32) error {
	c.mu.Lock()
	handle := c.handle
	c.mu.Unlock()

	if handle == 0 {
		return process.ErrNotAttached
	}
	if err := windows.TerminateProcess(handle, exitCode); err != nil {
		return fmt.Errorf("TerminateProcess: %w", err)
	}
	return nil
}
