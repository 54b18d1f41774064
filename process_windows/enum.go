//go:build windows

package process_windows

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"

	"goproc/process"
	"goproc/snapshot"
)

// Deliberately undersized so the first query nearly always reports the real
// length, which the retry then allocates exactly.
const initialSnapshotSize = 0x100

// snapshotQuery fills buf with up to length bytes of snapshot data and
// reports the required length through retLen.
type snapshotQuery func(buf unsafe.Pointer, length uint32, retLen *uint32) error

// querySnapshot runs query with a small buffer, reallocates at the exact
// reported size when the buffer was too small, and retries once. Any other
// failure, or a too-small report without a usable size, is fatal.
func querySnapshot(query snapshotQuery) ([]byte, error) {
	buf := make([]byte, initialSnapshotSize)

	var retLen uint32
	err := query(unsafe.Pointer(&buf[0]), uint32(len(buf)), &retLen)
	if err != nil {
		if err != windows.STATUS_INFO_LENGTH_MISMATCH && err != windows.STATUS_BUFFER_TOO_SMALL {
			return nil, fmt.Errorf("snapshot query: %w", err)
		}
		if retLen == 0 {
			return nil, fmt.Errorf("snapshot query reported no required length: %w", err)
		}
		buf = make([]byte, retLen)
		if err = query(unsafe.Pointer(&buf[0]), uint32(len(buf)), &retLen); err != nil {
			return nil, fmt.Errorf("snapshot query: %w", err)
		}
	}

	if retLen > 0 && int(retLen) <= len(buf) {
		buf = buf[:retLen]
	}
	return buf, nil
}

func queryProcessInformation(buf unsafe.Pointer, length uint32, retLen *uint32) error {
	return windows.NtQuerySystemInformation(
		snapshot.SystemExtendedProcessInformation, buf, length, retLen)
}

// EnumProcesses captures a system process snapshot via
// NtQuerySystemInformation and returns the entries matching pid or name,
// sorted ascending by PID. A zero pid and empty name match everything; a zero
// pid combined with a non-empty name matches on the name only. Thread records
// are collected only when includeThreads is set.
func EnumProcesses(pid process.ProcessID, name string, includeThreads bool) ([]process.ProcessInfo, error) {
	buf, err := querySnapshot(queryProcessInformation)
	if err != nil {
		return nil, err
	}

	return snapshot.Parse(buf, snapshot.Filter{
		PID:            pid,
		Name:           name,
		IncludeThreads: includeThreads,
	})
}

// EnumPIDsByName returns the PIDs of all processes whose image name matches
// name case-insensitively, using the toolhelp snapshot API. An empty name
// matches every process. Cheaper than EnumProcesses when only PIDs are
// needed.
func EnumPIDsByName(name string) ([]process.ProcessID, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	var pids []process.ProcessID
	for err = windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		exe := windows.UTF16ToString(entry.ExeFile[:])
		if name == "" || strings.EqualFold(exe, name) {
			pids = append(pids, process.ProcessID(entry.ProcessID))
		}
	}
	if err != windows.ERROR_NO_MORE_FILES {
		return nil, fmt.Errorf("Process32Next: %w", err)
	}
	return pids, nil
}
