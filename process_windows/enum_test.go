//go:build windows

package process_windows

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"

	"goproc/process"
)

func TestEnumProcessesAll(t *testing.T) {
	found, err := EnumProcesses(0, "", false)
	require.NoError(t, err)
	require.NotEmpty(t, found)

	assert.True(t, sort.SliceIsSorted(found, func(i, j int) bool {
		return found[i].PID < found[j].PID
	}))

	seen := make(map[process.ProcessID]bool)
	self := false
	for _, p := range found {
		assert.NotZero(t, p.PID, "idle process must be excluded")
		assert.False(t, seen[p.PID], "duplicate pid %d", p.PID)
		seen[p.PID] = true
		if p.PID == process.ProcessID(os.Getpid()) {
			self = true
		}
	}
	assert.True(t, self, "snapshot should include this test process")
}

func TestEnumProcessesSelfThreads(t *testing.T) {
	found, err := EnumProcesses(process.ProcessID(os.Getpid()), "", true)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.NotEmpty(t, found[0].Threads)

	mains := 0
	for _, thd := range found[0].Threads {
		if thd.MainThread {
			mains++
		}
	}
	assert.Equal(t, 1, mains)
}

func TestEnumProcessesByName(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)
	name := filepath.Base(exe)

	found, err := EnumProcesses(0, name, false)
	require.NoError(t, err)

	pids := make([]process.ProcessID, 0, len(found))
	for _, p := range found {
		pids = append(pids, p.PID)
	}
	assert.Contains(t, pids, process.ProcessID(os.Getpid()))
}

func TestQuerySnapshotFirstCall(t *testing.T) {
	payload := make([]byte, 0x40)
	for i := range payload {
		payload[i] = byte(i)
	}

	calls := 0
	buf, err := querySnapshot(func(buf unsafe.Pointer, length uint32, retLen *uint32) error {
		calls++
		*retLen = uint32(len(payload))
		copy(unsafe.Slice((*byte)(buf), length), payload)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, payload, buf)
}

func TestQuerySnapshotRetryExactSize(t *testing.T) {
	payload := make([]byte, 0x300) // larger than the initial buffer
	for i := range payload {
		payload[i] = byte(i)
	}

	calls := 0
	buf, err := querySnapshot(func(buf unsafe.Pointer, length uint32, retLen *uint32) error {
		calls++
		*retLen = uint32(len(payload))
		if length < uint32(len(payload)) {
			return windows.STATUS_INFO_LENGTH_MISMATCH
		}
		copy(unsafe.Slice((*byte)(buf), length), payload)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, payload, buf)
}

// A too-small report without a required length must fail instead of
// reallocating an empty buffer.
func TestQuerySnapshotZeroRequiredLength(t *testing.T) {
	buf, err := querySnapshot(func(buf unsafe.Pointer, length uint32, retLen *uint32) error {
		*retLen = 0
		return windows.STATUS_INFO_LENGTH_MISMATCH
	})
	assert.ErrorIs(t, err, windows.STATUS_INFO_LENGTH_MISMATCH)
	assert.Nil(t, buf)
}

func TestQuerySnapshotHardFailure(t *testing.T) {
	calls := 0
	_, err := querySnapshot(func(buf unsafe.Pointer, length uint32, retLen *uint32) error {
		calls++
		return windows.STATUS_ACCESS_DENIED
	})
	assert.ErrorIs(t, err, windows.STATUS_ACCESS_DENIED)
	assert.Equal(t, 1, calls, "only the buffer-too-small condition is retried")
}

func TestEnumPIDsByName(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	pids, err := EnumPIDsByName(filepath.Base(exe))
	require.NoError(t, err)
	assert.Contains(t, pids, process.ProcessID(os.Getpid()))
}

func TestEnumPIDsByNameEmptyMatchesAll(t *testing.T) {
	pids, err := EnumPIDsByName("")
	require.NoError(t, err)
	assert.Greater(t, len(pids), 1)
	assert.Contains(t, pids, process.ProcessID(os.Getpid()))
}

func TestGrantPrivilege(t *testing.T) {
	// Held by every token, so granting must succeed and be repeatable.
	require.NoError(t, GrantPrivilege("SeChangeNotifyPrivilege"))
	require.NoError(t, GrantPrivilege("SeChangeNotifyPrivilege"))
}

func TestGrantPrivilegeNotHeld(t *testing.T) {
	// Debug privilege is only present on elevated tokens. Either outcome is
	// fine, but a failure must surface as the sentinel.
	if err := GrantPrivilege(SeDebugPrivilege); err != nil {
		assert.ErrorIs(t, err, process.ErrPrivilegeNotAssigned)
	}
}

func TestGrantPrivilegeUnknownName(t *testing.T) {
	assert.Error(t, GrantPrivilege("SeNoSuchPrivilege"))
}
