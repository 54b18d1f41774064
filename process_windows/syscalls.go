//go:build windows

package process_windows

import "golang.org/x/sys/windows"

var (
	modkernel32            = windows.NewLazySystemDLL("kernel32.dll")
	procCreateRemoteThread = modkernel32.NewProc("CreateRemoteThread")
	procGetExitCodeThread  = modkernel32.NewProc("GetExitCodeThread")

	modadvapi32               = windows.NewLazySystemDLL("advapi32.dll")
	procAdjustTokenPrivileges = modadvapi32.NewProc("AdjustTokenPrivileges")
)

const (
	PROCESS_TERMINATE         = 0x0001
	PROCESS_CREATE_THREAD     = 0x0002
	PROCESS_VM_OPERATION      = 0x0008
	PROCESS_VM_READ           = 0x0010
	PROCESS_VM_WRITE          = 0x0020
	PROCESS_DUP_HANDLE        = 0x0040
	PROCESS_QUERY_INFORMATION = 0x0400
	PROCESS_SUSPEND_RESUME    = 0x0800
	PROCESS_ALL_ACCESS        = 0x1F0FFF

	THREAD_SUSPEND_RESUME = 0x0002

	// DefaultAccess covers everything the toolkit itself needs on a target.
	DefaultAccess = PROCESS_QUERY_INFORMATION |
		PROCESS_VM_READ | PROCESS_VM_WRITE | PROCESS_VM_OPERATION |
		PROCESS_CREATE_THREAD | PROCESS_TERMINATE |
		PROCESS_SUSPEND_RESUME | PROCESS_DUP_HANDLE
)
