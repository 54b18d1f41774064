//go:build windows

package process_windows

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"goproc/process"
)

const (
	SeDebugPrivilege      = "SeDebugPrivilege"
	SeLoadDriverPrivilege = "SeLoadDriverPrivilege"
)

// GrantPrivilege enables the named privilege on the calling thread's token,
// falling back to the process token when the thread is not impersonating.
// Returns process.ErrPrivilegeNotAssigned when the privilege is not held by
// the token at all, which AdjustTokenPrivileges reports as a success with
// ERROR_NOT_ALL_ASSIGNED.
func GrantPrivilege(name string) error {
	const access = windows.TOKEN_QUERY | windows.TOKEN_ADJUST_PRIVILEGES

	var token windows.Token
	err := windows.OpenThreadToken(windows.CurrentThread(), access, false, &token)
	if err != nil {
		if err != windows.ERROR_NO_TOKEN {
			return fmt.Errorf("OpenThreadToken: %w", err)
		}
		if err = windows.OpenProcessToken(windows.CurrentProcess(), access, &token); err != nil {
			return fmt.Errorf("OpenProcessToken: %w", err)
		}
	}
	defer token.Close()

	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}

	var priv windows.Tokenprivileges
	priv.PrivilegeCount = 1
	priv.Privileges[0].Attributes = windows.SE_PRIVILEGE_ENABLED
	if err := windows.LookupPrivilegeValue(nil, namePtr, &priv.Privileges[0].Luid); err != nil {
		return fmt.Errorf("LookupPrivilegeValue %s: %w", name, err)
	}

	// Call the raw proc instead of the wrapper because ERROR_NOT_ALL_ASSIGNED
	// arrives via GetLastError alongside a TRUE return.
	ret, _, callErr := procAdjustTokenPrivileges.Call(
		uintptr(token),
		0,
		uintptr(unsafe.Pointer(&priv)),
		uintptr(unsafe.Sizeof(priv)),
		0,
		0,
	)
	if ret == 0 {
		return fmt.Errorf("AdjustTokenPrivileges %s: %w", name, callErr)
	}
	if callErr == windows.ERROR_NOT_ALL_ASSIGNED {
		return fmt.Errorf("%s: %w", name, process.ErrPrivilegeNotAssigned)
	}
	return nil
}
